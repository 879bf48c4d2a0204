package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/benbeisheim/arcade-backend/internal/history"
	"github.com/benbeisheim/arcade-backend/internal/model"
)

type GameService struct {
	gameManager *GameManager
	registry    *Registry
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
		registry:    gameManager.registry,
	}
}

func (gs *GameService) ListGameTypes() []model.GameType {
	return gs.registry.Types()
}

func (gs *GameService) HasGameType(t model.GameType) bool {
	return gs.registry.Has(t)
}

func (gs *GameService) CreateGame(t model.GameType, position json.RawMessage) (GameView, error) {
	gameID := uuid.New().String()

	view, err := gs.gameManager.CreateGame(gameID, t, position)
	if err != nil {
		return GameView{}, fmt.Errorf("failed to create game: %w", err)
	}
	return view, nil
}

func (gs *GameService) GetState(gameID string) (GameView, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) MakeMove(gameID string, move json.RawMessage) (GameView, error) {
	return gs.gameManager.MakeMove(gameID, move)
}

func (gs *GameService) ValidateMove(gameID string, move json.RawMessage) error {
	return gs.gameManager.ValidateMove(gameID, move)
}

func (gs *GameService) History(gameID string) (history.Log, error) {
	return gs.gameManager.History(gameID)
}

func (gs *GameService) RetryPersistence(gameID string) (GameView, error) {
	return gs.gameManager.RetryPersistence(gameID)
}

func (gs *GameService) DeleteGame(gameID string) error {
	return gs.gameManager.DeleteGame(gameID)
}

func (gs *GameService) SavedGames() ([]history.Meta, error) {
	return gs.gameManager.SavedGames()
}
