package service

import (
	"fmt"
	"sort"

	"github.com/benbeisheim/arcade-backend/internal/model"
	"github.com/benbeisheim/arcade-backend/internal/model/checkers"
	"github.com/benbeisheim/arcade-backend/internal/model/chess"
	"github.com/benbeisheim/arcade-backend/internal/model/gogame"
	"github.com/benbeisheim/arcade-backend/internal/model/shogi"
)

// Registry maps a game type to the factory of its engine. It is built once at
// startup and read-only afterwards.
type Registry struct {
	factories map[model.GameType]model.Factory
}

func NewRegistry(goOpts gogame.Options) *Registry {
	return &Registry{factories: map[model.GameType]model.Factory{
		model.GameTypeChess:    chess.NewEngine,
		model.GameTypeCheckers: checkers.NewEngine,
		model.GameTypeGo:       gogame.NewEngine(goOpts),
		model.GameTypeShogi:    shogi.NewEngine,
	}}
}

func (r *Registry) New(t model.GameType) (model.Engine, error) {
	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownGameType, t)
	}
	return f(), nil
}

func (r *Registry) Has(t model.GameType) bool {
	_, ok := r.factories[t]
	return ok
}

// Types returns the registered game types in name order.
func (r *Registry) Types() []model.GameType {
	out := make([]model.GameType, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
