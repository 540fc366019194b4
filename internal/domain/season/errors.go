package season

import "errors"

// Sentinel kinds for season errors.
var (
	ErrInvalidCutoff = errors.New("invalid season cutoff")
)
