// Package history persists the ordered move log of every game. A log holds
// the game's metadata and, per accepted move, the normalized move and the
// snapshot it produced.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

var (
	ErrNotFound   = errors.New("history not found")
	ErrExists     = errors.New("history already exists")
	ErrOutOfOrder = errors.New("history entry out of order")
	ErrInvalidID  = errors.New("invalid game id")
)

// Meta identifies a game. Position is the starting snapshot for games that
// did not begin from the engine's initial position.
type Meta struct {
	GameID    string          `json:"gameId"`
	GameType  model.GameType  `json:"gameType"`
	CreatedAt time.Time       `json:"createdAt"`
	Position  json.RawMessage `json:"position,omitempty"`
}

// Entry is one accepted move. Seq starts at 1 and has no gaps.
type Entry struct {
	Seq        int             `json:"seq"`
	Move       json.RawMessage `json:"move"`
	Snapshot   json.RawMessage `json:"snapshot"`
	RecordedAt time.Time       `json:"recordedAt"`
}

type Log struct {
	Meta
	Entries []Entry `json:"moves"`
}

// Latest returns the most recent snapshot, or nil for a game with no moves.
func (l Log) Latest() json.RawMessage {
	if len(l.Entries) == 0 {
		return nil
	}
	return l.Entries[len(l.Entries)-1].Snapshot
}

// Store is implemented by FileStore and MemoryStore. Implementations are safe
// for concurrent use.
type Store interface {
	Create(meta Meta) error
	Append(gameID string, entry Entry) error
	LoadAll(gameID string) (Log, error)
	Delete(gameID string) error
	List() ([]Meta, error)
}

func nextSeqCheck(log *Log, e Entry) error {
	if want := len(log.Entries) + 1; e.Seq != want {
		return fmt.Errorf("%w: game %s got seq %d, want %d", ErrOutOfOrder, log.GameID, e.Seq, want)
	}
	return nil
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		e.Move = append(json.RawMessage(nil), e.Move...)
		e.Snapshot = append(json.RawMessage(nil), e.Snapshot...)
		out[i] = e
	}
	return out
}
