package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReps   = errors.New("invalid reps")
	ErrInvalidWeight = errors.New("invalid weight")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptySession  = errors.New("session has no sets")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRecordNotFound   = errors.New("record not found")
	ErrRecordExists     = errors.New("record already exists")
	ErrWriteInFlight    = errors.New("write already in flight")
	ErrInvalidExercise  = errors.New("invalid exercise reference")

	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionCancelled  = errors.New("session cancelled")
)

// ValidationError ties a rejected input to the field it came from.
// It unwraps to one of ErrInvalidReps, ErrInvalidWeight, ErrInvalidDate
// or ErrEmptySession.
type ValidationError struct {
	Field string
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Field, e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MalformedSeriesError is returned when persisted set text cannot be decoded.
type MalformedSeriesError struct {
	Text string
	Err  error
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed set series: %s", e.Err)
}

func (e *MalformedSeriesError) Unwrap() error {
	return e.Err
}

// RemoteWriteError wraps a failed create, update or delete against the record store.
type RemoteWriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote %s [%s]: %s", e.Op, e.ID, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// RemoteReadError wraps a failed list against the record store.
type RemoteReadError struct {
	Op  string
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("remote %s: %s", e.Op, e.Err)
}

func (e *RemoteReadError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a locally recoverable input failure.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsRemoteError reports whether err came from the record store (read or write).
func IsRemoteError(err error) bool {
	var wErr *RemoteWriteError
	var rErr *RemoteReadError
	return errors.As(err, &wErr) || errors.As(err, &rErr)
}
