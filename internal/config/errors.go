package config

import (
	"errors"
)

// ErrLoadConfig marks a config source that could not be read or decoded: a
// missing or malformed TIPOFF_CONFIG file, or an env value of the wrong type.
// ErrInvalidConfig marks settings that decoded but were rejected, such as
// rolling weights that do not sum to one, Elo constants refused by the
// engine, or an impossible season cutoff. The engine's own sentinel stays
// reachable through errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid tipoff settings")
	ErrLoadConfig    = errors.New("tipoff settings could not be loaded")
)
