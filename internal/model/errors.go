package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every engine and the service layer.
// Use errors.Is to classify; the concrete types below carry the context.
var (
	// ErrIllegalMove is an expected, non-fatal rejection. State is unchanged.
	ErrIllegalMove = errors.New("illegal move")

	// ErrOutOfBounds is a coordinate outside the board. It is reported as an
	// illegal move, never a crash.
	ErrOutOfBounds = errors.New("square out of bounds")

	// ErrTerminalState means a move was submitted after the game ended.
	ErrTerminalState = errors.New("game is already over")

	// ErrPersistence means the in-memory state advanced but the history write
	// failed. The move must not be replayed; retry the write instead.
	ErrPersistence = errors.New("history persistence failed")

	// ErrCorruptState is fatal: a snapshot could not be decoded or a replay
	// diverged from the persisted log.
	ErrCorruptState = errors.New("corrupt game state")

	ErrMalformedMove   = errors.New("malformed move descriptor")
	ErrUnknownGameType = errors.New("unknown game type")
	ErrGameNotFound    = errors.New("game not found")
)

// LegalityError is returned for every rejected move. It unwraps to
// ErrIllegalMove, and additionally to ErrOutOfBounds or ErrMalformedMove when
// that is the cause.
type LegalityError struct {
	Reason string
	Cause  error
}

func Illegal(format string, args ...interface{}) *LegalityError {
	return &LegalityError{Reason: fmt.Sprintf(format, args...)}
}

func OutOfBounds(format string, args ...interface{}) *LegalityError {
	return &LegalityError{Reason: fmt.Sprintf(format, args...), Cause: ErrOutOfBounds}
}

func Malformed(err error) *LegalityError {
	return &LegalityError{Reason: err.Error(), Cause: ErrMalformedMove}
}

func (e *LegalityError) Error() string {
	if e.Reason == "" {
		return ErrIllegalMove.Error()
	}
	return fmt.Sprintf("%s: %s", ErrIllegalMove, e.Reason)
}

func (e *LegalityError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrIllegalMove, e.Cause}
	}
	return []error{ErrIllegalMove}
}

// PersistenceError reports a history write that failed after the move was
// committed in memory. Pending is the number of entries still waiting to be
// written for the game.
type PersistenceError struct {
	GameID  string
	Pending int
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("game %s: %s (%d pending): %v", e.GameID, ErrPersistence, e.Pending, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Corrupt wraps err as a fatal ErrCorruptState.
func Corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}
