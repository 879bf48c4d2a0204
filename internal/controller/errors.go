package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/arcade-backend/internal/model"
	"github.com/benbeisheim/arcade-backend/internal/service"
)

// statusFor maps service errors onto HTTP status codes and a short kind
// string clients can switch on.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrPersistence):
		return fiber.StatusAccepted, "persistence"
	case errors.Is(err, model.ErrOutOfBounds):
		return fiber.StatusBadRequest, "out_of_bounds"
	case errors.Is(err, model.ErrMalformedMove):
		return fiber.StatusBadRequest, "malformed"
	case errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusBadRequest, "illegal"
	case errors.Is(err, service.ErrInvalidPosition):
		return fiber.StatusBadRequest, "invalid_position"
	case errors.Is(err, model.ErrGameNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrUnknownGameType):
		return fiber.StatusNotFound, "unknown_game_type"
	case errors.Is(err, model.ErrTerminalState):
		return fiber.StatusConflict, "terminal"
	case errors.Is(err, model.ErrCorruptState):
		return fiber.StatusInternalServerError, "corrupt"
	}
	return fiber.StatusInternalServerError, "internal"
}

func sendError(c *fiber.Ctx, err error) error {
	status, kind := statusFor(err)
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  kind,
	})
}
