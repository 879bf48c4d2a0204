package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// GameTypeKey is the Locals key holding the resolved model.GameType.
const GameTypeKey = "gameType"

// GameTypes reports which engines are registered.
type GameTypes interface {
	HasGameType(t model.GameType) bool
}

// ResolveGameType reads the :gameType route parameter, rejects unregistered
// types with 404 and stores the type in Locals for the handlers.
func ResolveGameType(types GameTypes) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := model.GameType(c.Params("gameType"))
		if !types.HasGameType(t) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": model.ErrUnknownGameType.Error() + ": " + string(t),
			})
		}
		c.Locals(GameTypeKey, t)
		return c.Next()
	}
}

// GameType returns the type stored by ResolveGameType.
func GameType(c *fiber.Ctx) model.GameType {
	t, _ := c.Locals(GameTypeKey).(model.GameType)
	return t
}
