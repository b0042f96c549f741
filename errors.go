package altvote

import (
	"errors"
	"fmt"
)

// Ballot submission errors; the election is unchanged when one is returned.
var (
	ErrTooManyPreferences      = errors.New("too many preferences selected")
	ErrNoPreferences           = errors.New("no preferences selected")
	ErrUnknownCandidate        = errors.New("candidate could not be found")
	ErrDuplicateCandidate      = errors.New("candidate cannot be selected twice")
	ErrGapAfterBlankPreference = errors.New("cannot select preferences after a blank preference")
	ErrMalformedPreference     = errors.New("preference is not a candidate id")
)

// Counting state errors, returned when an operation is called out of order.
var (
	ErrAlreadyEliminated = errors.New("candidate has already been eliminated")
	ErrCountInProgress   = errors.New("counting is already in progress")
	ErrNotCounting       = errors.New("counting has not started or is complete")
	ErrNoWinner          = errors.New("all ballots are exhausted")
	ErrCallback          = errors.New("event listener failed")
	ErrEventSourceError  = errors.New("event source is not an election")
	ErrEventTypeError    = errors.New("captured event with wrong value type")
)

// LineError describes a ballot file line that could not be added.
type LineError struct {
	Path string // file the line was read from, empty for readers
	Line int    // one-based line number
	Err  error  // underlying submission or parse error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying error so errors.Is can inspect it.
func (e *LineError) Unwrap() error {
	return e.Err
}
