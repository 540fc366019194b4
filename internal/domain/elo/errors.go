package elo

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrInvalidConfig  = errors.New("invalid elo config")
	ErrUnknownOutcome = errors.New("game is not exactly one win and one loss")
)
