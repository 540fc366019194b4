// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used on every boundary (CSV, JSON, join codes).
const DateLayout = "2006-01-02"

// Result is a team's win/loss flag for one game.
type Result string

const (
	Win  Result = "W"
	Loss Result = "L"
)

// ParseResult accepts "W"/"L" in any case; anything else is returned as-is
// so the assembler can reject it with context.
func ParseResult(s string) Result {
	return Result(strings.ToUpper(strings.TrimSpace(s)))
}

// Won reports whether r is a win.
func (r Result) Won() bool { return r == Win }

// Valid reports whether r is W or L.
func (r Result) Valid() bool { return r == Win || r == Loss }

// GameRecord is one finished game as read from the stream. Stat slices are
// aligned with the StatSet of the pass; a missing measurement is NaN.
type GameRecord struct {
	Seq        int
	Date       time.Time
	HomeTeam   string
	AwayTeam   string
	HomeResult Result
	AwayResult Result
	HomeScore  float64
	AwayScore  float64
	HomeStats  []float64
	AwayStats  []float64
	HomeSpread *float64
	JoinCode   string
}

// Decisive reports whether exactly one side won and the other lost.
func (g *GameRecord) Decisive() bool {
	return g.HomeResult.Valid() && g.AwayResult.Valid() && g.HomeResult.Won() != g.AwayResult.Won()
}

// Describe renders the identifying fields for diagnostics.
func (g *GameRecord) Describe() string {
	return fmt.Sprintf("%s %s@%s", g.Date.Format(DateLayout), g.AwayTeam, g.HomeTeam)
}

// EnrichedGameRecord is a GameRecord plus everything known before tip-off.
// HomeRA/AwayRA are aligned with the StatSet; nil entries are absent.
type EnrichedGameRecord struct {
	RunID      string
	Index      int
	Date       time.Time
	HomeTeam   string
	AwayTeam   string
	HomeResult Result
	AwayResult Result
	HomeScore  float64
	AwayScore  float64
	HomeSpread *float64
	JoinCode   string

	EloHome float64
	EloAway float64
	HomeRA  []*float64
	AwayRA  []*float64

	HomeSpreadActual           float64
	HomeSpreadCorrectDirection *bool
}

// SpreadDirectionAgrees reports whether the realized margin and the market
// line have the same sign. It returns nil when the line is absent.
func SpreadDirectionAgrees(actual float64, line *float64) *bool {
	if line == nil || math.IsNaN(*line) {
		return nil
	}
	agree := sign(actual) == sign(*line)
	return &agree
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// JoinCode builds the market-line join key: AWAY + HOME + YYYYMMDD.
func JoinCode(away, home string, date time.Time) string {
	return away + home + date.Format("20060102")
}

// ErrBadDate is returned by ParseDate for malformed input.
var ErrBadDate = errors.New("bad date")

// ParseDate parses YYYY-MM-DD into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return d, nil
}

// SortChronological orders games by date. Same-day games keep their
// arrival order (Seq, then slice position). The input slice is not modified.
func SortChronological(games []GameRecord) []GameRecord {
	out := make([]GameRecord, len(games))
	copy(out, games)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// Float returns a pointer to v; handy for optional fields.
func Float(v float64) *float64 { return &v }
