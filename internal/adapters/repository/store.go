// Package repository holds the Elo standings store and the feature row store.
package repository

import (
	"context"

	"github.com/okian/tipoff/internal/domain/types"
)

// Store provides read/write access to the standings table.
type Store interface {
	// Replace swaps the whole table for the given final ratings.
	Replace(ctx context.Context, ratings map[string]float64) error

	// Rank returns the current rank and rating for a team.
	// Returns ErrNotFound if the team is unknown.
	Rank(ctx context.Context, team string) (types.Entry, error)

	// TopN returns the top-N entries ordered by rating desc, team asc.
	// n == 0 returns every entry; negative n is ErrInvalidLimit.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of teams in the table.
	Count(ctx context.Context) int
}
