package csvio

import "errors"

// Sentinel kinds for CSV errors.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrBadRow        = errors.New("bad row")
	ErrUnknownTeam   = errors.New("team outside the known universe")
)
