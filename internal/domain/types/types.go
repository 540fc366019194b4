// Package types contains common types used across the application
package types

// Entry is one row of the Elo standings table.
type Entry struct {
	Rank   int     `json:"rank"`
	Team   string  `json:"team"`
	Rating float64 `json:"rating"`
}
