package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("team not found")
	ErrInvalidLimit = errors.New("invalid standings limit")
	ErrInvalidRow   = errors.New("invalid feature row")
	ErrClosed       = errors.New("store closed")
)
