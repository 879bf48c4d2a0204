// service/game_manager.go
package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benbeisheim/arcade-backend/internal/history"
	"github.com/benbeisheim/arcade-backend/internal/model"
)

// ErrInvalidPosition rejects a starting position supplied by a caller.
var ErrInvalidPosition = errors.New("invalid starting position")

// GameView is what callers see of a game after every operation.
type GameView struct {
	GameID        string         `json:"game_id"`
	GameType      model.GameType `json:"game_type"`
	State         any            `json:"state"`
	SideToMove    model.Color    `json:"side_to_move"`
	Terminal      model.Terminal `json:"terminal"`
	Moves         int            `json:"moves"`
	PendingWrites int            `json:"pending_writes,omitempty"`
}

// Notifier is told about every accepted move while the session lock is held,
// so calls for one game arrive in move order. It must not call back into the
// manager.
type Notifier interface {
	GameUpdated(view GameView)
}

// session owns one engine. mu is held across Apply and the history append so
// the log never reorders relative to the engine.
type session struct {
	mu      sync.Mutex
	meta    history.Meta
	engine  model.Engine
	seq     int
	pending []history.Entry
}

func (s *session) view() GameView {
	return GameView{
		GameID:        s.meta.GameID,
		GameType:      s.meta.GameType,
		State:         s.engine.Snapshot(),
		SideToMove:    s.engine.SideToMove(),
		Terminal:      s.engine.Terminal(),
		Moves:         s.seq,
		PendingWrites: len(s.pending),
	}
}

type GameManager struct {
	games    map[string]*session
	registry *Registry
	store    history.Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

func NewGameManager(registry *Registry, store history.Store, logger *zap.Logger) *GameManager {
	return &GameManager{
		games:    make(map[string]*session),
		registry: registry,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNotifier installs the receiver of game updates. Call before serving.
func (gm *GameManager) SetNotifier(n Notifier) {
	gm.notifier = n
}

// CreateGame starts a game of type t under gameID. A non-nil position seeds
// the engine through Restore and is stored with the metadata so the game can
// be rebuilt later.
func (gm *GameManager) CreateGame(gameID string, t model.GameType, position json.RawMessage) (GameView, error) {
	engine, err := gm.registry.New(t)
	if err != nil {
		return GameView{}, err
	}
	if len(position) > 0 {
		if err := engine.Restore(position); err != nil {
			return GameView{}, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return GameView{}, errors.New("game already exists")
	}
	meta := history.Meta{GameID: gameID, GameType: t, CreatedAt: gm.now().UTC(), Position: position}
	if err := gm.store.Create(meta); err != nil {
		return GameView{}, fmt.Errorf("create history: %w", err)
	}
	s := &session{meta: meta, engine: engine}
	gm.games[gameID] = s

	gm.logger.Info("game created", zap.String("game_id", gameID), zap.String("game_type", string(t)))
	return s.view(), nil
}

// session returns the live session for gameID, rebuilding it from history
// on first access after a restart.
func (gm *GameManager) session(gameID string) (*session, error) {
	gm.mu.RLock()
	s, ok := gm.games[gameID]
	gm.mu.RUnlock()
	if ok {
		return s, nil
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if s, ok := gm.games[gameID]; ok {
		return s, nil
	}
	log, err := gm.store.LoadAll(gameID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) || errors.Is(err, history.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", model.ErrGameNotFound, gameID)
		}
		return nil, err
	}
	s, err = gm.replay(log)
	if err != nil {
		gm.logger.Error("replay failed", zap.String("game_id", gameID), zap.Error(err))
		return nil, err
	}
	gm.games[gameID] = s
	gm.logger.Info("game loaded", zap.String("game_id", gameID), zap.Int("moves", s.seq))
	return s, nil
}

// replay rebuilds a session by applying every logged move to a fresh engine
// and checking each resulting snapshot against the logged one.
func (gm *GameManager) replay(log history.Log) (*session, error) {
	engine, err := gm.registry.New(log.GameType)
	if err != nil {
		return nil, model.Corrupt("game %s: %v", log.GameID, err)
	}
	if len(log.Position) > 0 {
		if err := engine.Restore(log.Position); err != nil {
			return nil, fmt.Errorf("game %s starting position: %w", log.GameID, err)
		}
	}
	for _, e := range log.Entries {
		rec, err := engine.Apply(e.Move)
		if err != nil {
			return nil, model.Corrupt("game %s move %d: %v", log.GameID, e.Seq, err)
		}
		same, err := sameJSON(rec.Snapshot, e.Snapshot)
		if err != nil || !same {
			return nil, model.Corrupt("game %s move %d: replayed state differs from the log", log.GameID, e.Seq)
		}
	}
	return &session{meta: log.Meta, engine: engine, seq: len(log.Entries)}, nil
}

func sameJSON(a, b json.RawMessage) (bool, error) {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return false, err
	}
	if err := json.Compact(&cb, b); err != nil {
		return false, err
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes()), nil
}

// MakeMove applies a move descriptor. Rule violations leave the game
// untouched. If the engine accepted the move but the history write failed,
// the new state is returned together with a *model.PersistenceError.
func (gm *GameManager) MakeMove(gameID string, move json.RawMessage) (GameView, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameView{}, err
	}

	s.mu.Lock()
	rec, err := s.engine.Apply(move)
	if err != nil {
		s.mu.Unlock()
		gm.logger.Debug("move rejected", zap.String("game_id", gameID), zap.ByteString("move", move), zap.Error(err))
		return GameView{}, err
	}
	s.seq++
	s.pending = append(s.pending, history.Entry{
		Seq:        s.seq,
		Move:       rec.Move,
		Snapshot:   rec.Snapshot,
		RecordedAt: gm.now().UTC(),
	})
	perr := gm.flush(s)
	view := s.view()
	// Notify before unlocking so updates leave in move order.
	if gm.notifier != nil {
		gm.notifier.GameUpdated(view)
	}
	s.mu.Unlock()

	fields := []zap.Field{zap.String("game_id", gameID), zap.Int("seq", view.Moves), zap.ByteString("move", rec.Move)}
	if view.Terminal.Over {
		fields = append(fields, zap.String("status", string(view.Terminal.Status)), zap.String("winner", string(view.Terminal.Winner)))
	}
	gm.logger.Info("move applied", fields...)

	if perr != nil {
		gm.logger.Warn("history write failed", zap.String("game_id", gameID), zap.Int("pending", view.PendingWrites), zap.Error(perr))
		return view, &model.PersistenceError{GameID: gameID, Pending: view.PendingWrites, Err: perr}
	}
	return view, nil
}

// flush appends pending entries in order and stops at the first failure.
// The caller holds s.mu.
func (gm *GameManager) flush(s *session) error {
	for len(s.pending) > 0 {
		if err := gm.store.Append(s.meta.GameID, s.pending[0]); err != nil {
			return err
		}
		s.pending = s.pending[1:]
	}
	s.pending = nil
	return nil
}

// RetryPersistence writes entries left behind by failed appends. It never
// re-applies moves.
func (gm *GameManager) RetryPersistence(gameID string) (GameView, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := gm.flush(s); err != nil {
		return s.view(), &model.PersistenceError{GameID: gameID, Pending: len(s.pending), Err: err}
	}
	return s.view(), nil
}

func (gm *GameManager) GetGameState(gameID string) (GameView, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return GameView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// ValidateMove reports why move would be rejected without applying it.
func (gm *GameManager) ValidateMove(gameID string, move json.RawMessage) error {
	s, err := gm.session(gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Validate(move)
}

// History returns the persisted log followed by any entries still waiting
// to be written.
func (gm *GameManager) History(gameID string) (history.Log, error) {
	s, err := gm.session(gameID)
	if err != nil {
		return history.Log{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	log, err := gm.store.LoadAll(gameID)
	if err != nil {
		return history.Log{}, err
	}
	log.Entries = append(log.Entries, s.pending...)
	return log, nil
}

func (gm *GameManager) DeleteGame(gameID string) error {
	if _, err := gm.session(gameID); err != nil {
		return err
	}
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.games, gameID)
	if err := gm.store.Delete(gameID); err != nil && !errors.Is(err, history.ErrNotFound) {
		return err
	}
	gm.logger.Info("game deleted", zap.String("game_id", gameID))
	return nil
}

// SavedGames lists the metadata of every persisted game.
func (gm *GameManager) SavedGames() ([]history.Meta, error) {
	return gm.store.List()
}
