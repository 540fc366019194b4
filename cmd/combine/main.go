package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/tipoff/internal/combine"
	"github.com/okian/tipoff/internal/config"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var (
		statsPath  = flag.String("stats", cfg.StatsPath, "Box-score CSV")
		linesPath  = flag.String("lines", cfg.LinesPath, "Betting-line CSV; empty skips the join")
		outPath    = flag.String("out", cfg.OutputPath, "Combined feature CSV")
		sqlitePath = flag.String("sqlite", cfg.SQLitePath, "Also store rows in this SQLite database")
		weights    = flag.String("w", "", "Rolling weights, most recent game first")
		sweep      = flag.Bool("sweep", false, "Evaluate -w and the configured sweep vectors in parallel")
		top        = flag.Int("top", 0, "Standings rows to print (0 prints all)")
		strict     = flag.Bool("strict", false, "Reject team codes outside the current franchises")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		combine.ShowHelp(os.Stdout)
		return
	}

	if err := combine.SetupLogging(os.Stderr, cfg.LogFormat, cfg.LogLevel); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	run, err := combine.FromConfig(cfg)
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *weights != "" {
		if run.Weights, err = config.ParseWeights(*weights); err != nil {
			os.Stderr.WriteString("invalid -w: " + err.Error() + "\n")
			os.Exit(2)
		}
	}
	run.StatsPath, run.LinesPath, run.OutputPath, run.SQLitePath = *statsPath, *linesPath, *outPath, *sqlitePath
	run.Sweep, run.Top, run.StrictTeams = *sweep, *top, *strict

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := combine.Run(ctx, run, os.Stdout); err != nil {
		os.Stderr.WriteString("combine failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
