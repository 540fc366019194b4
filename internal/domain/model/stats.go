package model

import (
	"errors"
	"fmt"
	"strings"
)

// Column labels added by the feature pass.
const (
	ColEloHome                    = "ELO_HOME"
	ColEloAway                    = "ELO_AWAY"
	ColHomeSpreadActual           = "HomeSpreadActual"
	ColHomeSpreadCorrectDirection = "HomeSpreadCorrectDirection"
	PointsStat                    = "PTS"
)

// DefaultStatNames is the box-score statistic set tracked per team.
var DefaultStatNames = []string{ //nolint:gochecknoglobals // fixed schema
	"MIN",
	"PTS",
	"FGM",
	"FGA",
	"FG_PCT",
	"FG3M",
	"FG3A",
	"FG3_PCT",
	"FTM",
	"FTA",
	"FT_PCT",
	"OREB",
	"DREB",
	"REB",
	"AST",
	"STL",
	"BLK",
	"TOV",
	"PF",
	"PLUS_MINUS",
}

// ErrInvalidStatSet is returned for empty, blank or duplicate stat names.
var ErrInvalidStatSet = errors.New("invalid stat set")

// StatSet is an ordered, duplicate-free list of statistic names.
type StatSet struct {
	names []string
	index map[string]int
}

// NewStatSet validates and indexes names.
func NewStatSet(names []string) (StatSet, error) {
	if len(names) == 0 {
		return StatSet{}, fmt.Errorf("%w: no statistics", ErrInvalidStatSet)
	}
	s := StatSet{names: make([]string, len(names)), index: make(map[string]int, len(names))}
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return StatSet{}, fmt.Errorf("%w: blank name at %d", ErrInvalidStatSet, i)
		}
		if _, dup := s.index[n]; dup {
			return StatSet{}, fmt.Errorf("%w: duplicate %q", ErrInvalidStatSet, n)
		}
		s.names[i] = n
		s.index[n] = i
	}
	return s, nil
}

// DefaultStatSet returns the StatSet built from DefaultStatNames.
func DefaultStatSet() StatSet {
	s, err := NewStatSet(DefaultStatNames)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns N.
func (s StatSet) Len() int { return len(s.names) }

// Names returns a copy of the ordered names.
func (s StatSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Name returns the i-th statistic name.
func (s StatSet) Name(i int) string { return s.names[i] }

// Index resolves a name.
func (s StatSet) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// HomeColumn is the raw per-game input column, e.g. PTS_HOME.
func HomeColumn(stat string) string { return stat + "_HOME" }

// AwayColumn is the raw per-game input column, e.g. PTS_AWAY.
func AwayColumn(stat string) string { return stat + "_AWAY" }

// HomeRAColumn is the pre-game rolling-average column, e.g. PTS_HOME_RA.
func HomeRAColumn(stat string) string { return stat + "_HOME_RA" }

// AwayRAColumn is the pre-game rolling-average column, e.g. PTS_AWAY_RA.
func AwayRAColumn(stat string) string { return stat + "_AWAY_RA" }
