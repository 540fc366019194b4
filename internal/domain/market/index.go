// Package market joins pre-game betting lines onto game records.
package market

import (
	"sort"

	"github.com/okian/tipoff/internal/domain/model"
)

// Line is one market spread keyed by the game's join code.
type Line struct {
	JoinCode   string
	HomeSpread float64
}

// Index is a read-only lookup of lines by join code.
type Index struct {
	lines map[string]float64
	dups  map[string]int
}

// NewIndex builds an index. When a join code repeats, the first line wins
// and the code is reported by Duplicates.
func NewIndex(lines []Line) *Index {
	idx := &Index{
		lines: make(map[string]float64, len(lines)),
		dups:  make(map[string]int),
	}
	for _, l := range lines {
		if _, seen := idx.lines[l.JoinCode]; seen {
			idx.dups[l.JoinCode]++
			continue
		}
		idx.lines[l.JoinCode] = l.HomeSpread
	}
	return idx
}

// Len returns the number of distinct join codes.
func (i *Index) Len() int { return len(i.lines) }

// Lookup returns the spread for code.
func (i *Index) Lookup(code string) (float64, bool) {
	v, ok := i.lines[code]
	return v, ok
}

// Duplicates returns the sorted join codes that appeared more than once.
func (i *Index) Duplicates() []string {
	out := make([]string, 0, len(i.dups))
	for code := range i.dups {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Attach left-joins lines onto games and returns copies. A matched line
// overrides any spread the game already carries; unmatched games keep their
// own. The second value counts matches.
func (i *Index) Attach(games []model.GameRecord) ([]model.GameRecord, int) {
	out := make([]model.GameRecord, len(games))
	matched := 0
	for n, g := range games {
		if g.JoinCode == "" {
			g.JoinCode = model.JoinCode(g.AwayTeam, g.HomeTeam, g.Date)
		}
		if g.HomeSpread != nil {
			g.HomeSpread = model.Float(*g.HomeSpread)
		}
		if v, ok := i.lines[g.JoinCode]; ok {
			g.HomeSpread = model.Float(v)
			matched++
		}
		out[n] = g
	}
	return out, matched
}
