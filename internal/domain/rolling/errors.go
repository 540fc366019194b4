package rolling

import "errors"

// Sentinel kinds for rolling-average errors.
var (
	ErrInvalidWeights = errors.New("invalid rolling weights")
	ErrUnknownStat    = errors.New("unknown statistic")
	ErrStatCount      = errors.New("statistic count mismatch")
)
