package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/okian/tipoff/internal/domain/types"
)

// Standings is an in-memory Store. Ordering: rating DESC, then team ASC.
type Standings struct {
	mu      sync.RWMutex
	entries []types.Entry
	rank    map[string]int
}

// NewStandings returns an empty table.
func NewStandings() *Standings {
	return &Standings{rank: make(map[string]int)}
}

// Rank sorts ratings into standings entries without keeping them.
func Rank(ratings map[string]float64) []types.Entry {
	out := make([]types.Entry, 0, len(ratings))
	for team, r := range ratings {
		out = append(out, types.Entry{Team: team, Rating: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Replace implements Store.
func (s *Standings) Replace(_ context.Context, ratings map[string]float64) error {
	for team, r := range ratings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: rating for %s is not finite", ErrInvalidRow, team)
		}
	}
	entries := Rank(ratings)
	idx := make(map[string]int, len(entries))
	for i, e := range entries {
		idx[e.Team] = i
	}

	s.mu.Lock()
	s.entries = entries
	s.rank = idx
	s.mu.Unlock()
	return nil
}

// Rank implements Store.
func (s *Standings) Rank(_ context.Context, team string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.rank[team]
	if !ok {
		return types.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, team)
	}
	return s.entries[i], nil
}

// TopN implements Store.
func (s *Standings) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n == 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]types.Entry, n)
	copy(out, s.entries[:n])
	return out, nil
}

// Count implements Store.
func (s *Standings) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
