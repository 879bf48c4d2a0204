package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/benbeisheim/arcade-backend/internal/middleware"
	"github.com/benbeisheim/arcade-backend/internal/model"
	"github.com/benbeisheim/arcade-backend/internal/service"
)

type GameController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewGameController(gameService *service.GameService, logger *zap.Logger) *GameController {
	return &GameController{gameService: gameService, logger: logger}
}

// createRequest is the optional body of a create call.
type createRequest struct {
	Position json.RawMessage `json:"position"`
}

func (gc *GameController) ListGameTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGameTypes(),
	})
}

func (gc *GameController) SavedGames(c *fiber.Ctx) error {
	metas, err := gc.gameService.SavedGames()
	if err != nil {
		gc.logger.Error("list saved games", zap.Error(err))
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"games": metas,
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
				"kind":  "malformed",
			})
		}
	}

	view, err := gc.gameService.CreateGame(middleware.GameType(c), req.Position)
	if err != nil {
		return sendError(c, err)
	}
	gc.logger.Info("game created", zap.String("game_id", view.GameID), zap.String("game_type", string(view.GameType)))
	return c.Status(fiber.StatusCreated).JSON(view)
}

// lookup loads the game named by :gameId and checks it belongs to :gameType.
func (gc *GameController) lookup(c *fiber.Ctx) (service.GameView, error) {
	gameID := c.Params("gameId")
	view, err := gc.gameService.GetState(gameID)
	if err != nil {
		return service.GameView{}, err
	}
	if t := middleware.GameType(c); view.GameType != t {
		return service.GameView{}, fmt.Errorf("%w: %s is not a %s game", model.ErrGameNotFound, gameID, t)
	}
	return view, nil
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	view, err := gc.lookup(c)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	view, err := gc.lookup(c)
	if err != nil {
		return sendError(c, err)
	}

	view, err = gc.gameService.MakeMove(view.GameID, json.RawMessage(c.Body()))
	if err != nil {
		status, kind := statusFor(err)
		if status == fiber.StatusAccepted {
			// The move stands; only the history write is behind.
			return c.Status(status).JSON(fiber.Map{
				"error": err.Error(),
				"kind":  kind,
				"state": view,
			})
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  kind,
		})
	}
	return c.JSON(view)
}

func (gc *GameController) ValidateMove(c *fiber.Ctx) error {
	view, err := gc.lookup(c)
	if err != nil {
		return sendError(c, err)
	}
	if err := gc.gameService.ValidateMove(view.GameID, json.RawMessage(c.Body())); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"valid": true,
	})
}

func (gc *GameController) History(c *fiber.Ctx) error {
	view, err := gc.lookup(c)
	if err != nil {
		return sendError(c, err)
	}
	log, err := gc.gameService.History(view.GameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(log)
}

func (gc *GameController) RetryPersistence(c *fiber.Ctx) error {
	view, err := gc.lookup(c)
	if err != nil {
		return sendError(c, err)
	}
	view, err = gc.gameService.RetryPersistence(view.GameID)
	if err != nil {
		status, kind := statusFor(err)
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
			"kind":  kind,
			"state": view,
		})
	}
	return c.JSON(view)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	view, err := gc.lookup(c)
	if err != nil {
		return sendError(c, err)
	}
	if err := gc.gameService.DeleteGame(view.GameID); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game deleted",
		"game_id": view.GameID,
	})
}
