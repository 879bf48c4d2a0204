package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/arcade-backend/internal/middleware"
	"github.com/benbeisheim/arcade-backend/internal/service"
)

// Register mounts the REST API and the game socket on app.
func Register(app *fiber.App, gameService *service.GameService, gc *GameController, wsc *WebSocketController, origins []string) {
	resolve := middleware.ResolveGameType(gameService)

	app.Get("/ws/games/:gameType/:gameId", resolve, middleware.WebSocketUpgrade(), websocket.New(wsc.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}))

	api := app.Group("/api")

	api.Get("/games", gc.ListGameTypes)
	api.Get("/games/saved", gc.SavedGames)

	// resolve runs per route so /games/saved never reaches it.
	gameRoutes := api.Group("/games/:gameType")
	gameRoutes.Post("/new", resolve, gc.CreateGame)
	gameRoutes.Get("/:gameId/state", resolve, gc.GetGameState)
	gameRoutes.Post("/:gameId/move", resolve, gc.MakeMove)
	gameRoutes.Post("/:gameId/validate", resolve, gc.ValidateMove)
	gameRoutes.Get("/:gameId/history", resolve, gc.History)
	gameRoutes.Post("/:gameId/persist", resolve, gc.RetryPersistence)
	gameRoutes.Delete("/:gameId", resolve, gc.DeleteGame)
}
