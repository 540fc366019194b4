package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/tipoff/internal/domain/elo"
	"github.com/okian/tipoff/internal/domain/model"
)

// Sentinel kinds for assembler errors.
var (
	ErrOrderingViolation = errors.New("games out of chronological order")
	ErrUnknownOutcome    = elo.ErrUnknownOutcome
	ErrStatCount         = errors.New("stat vector does not match the statistic set")
	ErrSkipped           = errors.New("record skipped")
)

// OrderingViolation reports a game dated before the previously accepted one.
type OrderingViolation struct {
	Index    int
	Date     time.Time
	Previous time.Time
	HomeTeam string
	AwayTeam string
}

func (e *OrderingViolation) Error() string {
	return fmt.Sprintf("record %d (%s %s@%s) is dated before previous record (%s): %v",
		e.Index, e.Date.Format(model.DateLayout), e.AwayTeam, e.HomeTeam,
		e.Previous.Format(model.DateLayout), ErrOrderingViolation)
}

func (e *OrderingViolation) Unwrap() error { return ErrOrderingViolation }

// RecordError reports a malformed record with enough context to find it.
type RecordError struct {
	Index    int
	Date     time.Time
	HomeTeam string
	AwayTeam string
	Err      error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s %s@%s): %v",
		e.Index, e.Date.Format(model.DateLayout), e.AwayTeam, e.HomeTeam, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func recordError(index int, g *model.GameRecord, err error) *RecordError {
	return &RecordError{Index: index, Date: g.Date, HomeTeam: g.HomeTeam, AwayTeam: g.AwayTeam, Err: err}
}
