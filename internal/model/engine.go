package model

import "encoding/json"

// Engine is the uniform turn-state-machine contract. Implementations own a
// single game's state and are not safe for concurrent use; callers serialize
// access per game.
type Engine interface {
	Type() GameType

	// Validate reports why move would be rejected, or nil if it is legal.
	// It never mutates state.
	Validate(move json.RawMessage) error

	// Apply validates and executes move. On success it returns the normalized
	// move together with the resulting snapshot, both ready for history.
	Apply(move json.RawMessage) (Record, error)

	// Snapshot returns the current state as a JSON-encodable value.
	Snapshot() any

	Terminal() Terminal
	SideToMove() Color

	// Restore replaces the current state with a previously produced snapshot.
	Restore(snapshot json.RawMessage) error
}

// Record is one accepted move and the state it produced.
type Record struct {
	Move     json.RawMessage `json:"move"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Factory builds a fresh engine in its initial position.
type Factory func() Engine

// NewRecord marshals the normalized move and snapshot of an accepted move.
func NewRecord(move any, snapshot any) (Record, error) {
	m, err := json.Marshal(move)
	if err != nil {
		return Record{}, err
	}
	s, err := json.Marshal(snapshot)
	if err != nil {
		return Record{}, err
	}
	return Record{Move: m, Snapshot: s}, nil
}
