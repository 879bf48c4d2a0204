package main

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/benbeisheim/arcade-backend/internal/config"
	"github.com/benbeisheim/arcade-backend/internal/controller"
	"github.com/benbeisheim/arcade-backend/internal/history"
	"github.com/benbeisheim/arcade-backend/internal/logging"
	"github.com/benbeisheim/arcade-backend/internal/middleware"
	"github.com/benbeisheim/arcade-backend/internal/model/gogame"
	"github.com/benbeisheim/arcade-backend/internal/service"
	"github.com/benbeisheim/arcade-backend/internal/ws"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := newStore(cfg.Storage)
	if err != nil {
		logger.Fatal("open history store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	// Initialize services
	registry := service.NewRegistry(gogame.Options{Size: cfg.Go.BoardSize, Komi: cfg.Go.Komi})
	gameManager := service.NewGameManager(registry, store, logger)
	hub := ws.NewHub(logger)
	gameManager.SetNotifier(hub)
	gameService := service.NewGameService(gameManager)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	controller.Register(app, gameService,
		controller.NewGameController(gameService, logger),
		controller.NewWebSocketController(gameService, hub, logger),
		origins(cfg.Server.AllowOrigins))

	logger.Info("listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("storage", cfg.Storage.Backend),
		zap.Strings("games", gameTypes(gameService)))
	if err := app.Listen(cfg.Server.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newStore(cfg config.Storage) (history.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return history.NewMemoryStore(), nil
	}
	return history.NewFileStore(cfg.Dir)
}

func origins(list string) []string {
	var out []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func gameTypes(gs *service.GameService) []string {
	var out []string
	for _, t := range gs.ListGameTypes() {
		out = append(out, string(t))
	}
	return out
}
