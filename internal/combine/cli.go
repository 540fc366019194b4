package combine

import (
	"fmt"
	"io"

	"github.com/okian/tipoff/pkg/logger"
)

// SetupLogging installs the global logger on w.
func SetupLogging(w io.Writer, format, level string) error {
	if err := logger.InitWithWriter(w, format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the combine tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Tipoff Feature Combiner
=======================

Joins box scores with betting lines, derives pre-game Elo ratings and
rolling averages for every game, and writes the combined feature table.

Usage:
  go run ./cmd/combine [options]

Options:
  -stats string
        Box-score CSV (default from TIPOFF_STATS_PATH or stats_out.csv)
  -lines string
        Betting-line CSV; empty skips the join
  -out string
        Combined feature CSV
  -sqlite string
        Also store rows in this SQLite database
  -w string
        Rolling weights, most recent game first, e.g. "0.4 0.3 0.2 0.1"
  -sweep
        Evaluate -w and every TIPOFF_SWEEP_WEIGHTS vector in parallel
  -top int
        Standings rows to print (default all)
  -strict
        Reject team codes outside the current 30 franchises
  -help
        Show this help message

Examples:
  # Combine with the configured defaults
  go run ./cmd/combine

  # Weight the last game only
  go run ./cmd/combine -w 1 -out last_game.csv

  # Compare weightings
  TIPOFF_SWEEP_WEIGHTS="1,0.5 0.5,0.25 0.25 0.25 0.25" go run ./cmd/combine -sweep
`)
}
