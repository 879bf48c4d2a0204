package shogi

import (
	"encoding/json"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// Engine exposes Game through model.Engine.
type Engine struct {
	game *Game
}

var _ model.Engine = (*Engine)(nil)

func NewEngine() model.Engine {
	return &Engine{game: NewGame()}
}

func (e *Engine) Game() *Game {
	return e.game
}

func (e *Engine) Type() model.GameType {
	return model.GameTypeShogi
}

func (e *Engine) Validate(raw json.RawMessage) error {
	m, err := DecodeMove(raw)
	if err != nil {
		return model.Malformed(err)
	}
	return e.game.Check(m)
}

func (e *Engine) Apply(raw json.RawMessage) (model.Record, error) {
	m, err := DecodeMove(raw)
	if err != nil {
		return model.Record{}, model.Malformed(err)
	}
	act, err := e.game.play(m)
	if err != nil {
		return model.Record{}, err
	}
	return model.NewRecord(act, e.game.state)
}

func (e *Engine) Snapshot() any {
	return e.game.State()
}

func (e *Engine) Terminal() model.Terminal {
	return e.game.state.Terminal
}

func (e *Engine) SideToMove() model.Color {
	return e.game.state.SideToMove
}

func (e *Engine) Restore(raw json.RawMessage) error {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Corrupt("shogi snapshot: %v", err)
	}
	g, err := FromState(s)
	if err != nil {
		return err
	}
	e.game = g
	return nil
}
