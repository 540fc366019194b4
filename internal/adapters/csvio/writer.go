package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/okian/tipoff/internal/domain/model"
)

// Writer emits the combined feature table. Absent values are empty cells and
// the direction label is written as 0/1. Raw per-game statistics other than
// points are not written; their rolling averages replace them.
type Writer struct {
	mu          sync.Mutex
	w           *csv.Writer
	stats       model.StatSet
	wroteHeader bool
	rows        int
}

// NewWriter wraps w.
func NewWriter(w io.Writer, stats model.StatSet) *Writer {
	return &Writer{w: csv.NewWriter(w), stats: stats}
}

// Header returns the column names in output order.
func (w *Writer) Header() []string {
	cols := []string{
		ColDate, ColHomeTeam, ColAwayTeam, ColWLHome, ColWLAway,
		ColHomeSpread,
		model.HomeColumn(model.PointsStat), model.AwayColumn(model.PointsStat),
		model.ColEloHome, model.ColEloAway,
		model.ColHomeSpreadActual,
	}
	for _, name := range w.stats.Names() {
		cols = append(cols, model.AwayRAColumn(name), model.HomeRAColumn(name))
	}
	return append(cols, model.ColHomeSpreadCorrectDirection)
}

// Write appends one row, writing the header first if needed.
func (w *Writer) Write(_ context.Context, row model.EnrichedGameRecord) error { //nolint:gocritic // hugeParam: sink contract passes rows by value
	n := w.stats.Len()
	if len(row.HomeRA) != n || len(row.AwayRA) != n {
		return fmt.Errorf("%w: row %d has %d/%d RA values for %d statistics",
			ErrBadRow, row.Index, len(row.HomeRA), len(row.AwayRA), n)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.wroteHeader {
		if err := w.w.Write(w.Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.wroteHeader = true
	}

	record := make([]string, 0, 12+2*n)
	record = append(record,
		row.Date.Format(model.DateLayout),
		row.HomeTeam,
		row.AwayTeam,
		string(row.HomeResult),
		string(row.AwayResult),
		optFloat(row.HomeSpread),
		formatFloat(row.HomeScore),
		formatFloat(row.AwayScore),
		formatFloat(row.EloHome),
		formatFloat(row.EloAway),
		formatFloat(row.HomeSpreadActual),
	)
	for i := 0; i < n; i++ {
		record = append(record, optFloat(row.AwayRA[i]), optFloat(row.HomeRA[i]))
	}
	record = append(record, optBool(row.HomeSpreadCorrectDirection))

	if err := w.w.Write(record); err != nil {
		return fmt.Errorf("write row %d: %w", row.Index, err)
	}
	w.rows++
	return nil
}

// Flush writes buffered data, emitting the header for an empty table.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.wroteHeader {
		if err := w.w.Write(w.Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.wroteHeader = true
	}
	w.w.Flush()
	return w.w.Error()
}

// Rows returns the number of rows written.
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func optBool(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "1"
	default:
		return "0"
	}
}
