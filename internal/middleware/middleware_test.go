package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

type knownTypes map[model.GameType]bool

func (k knownTypes) HasGameType(t model.GameType) bool { return k[t] }

func TestResolveGameType(t *testing.T) {
	app := fiber.New()
	app.Get("/:gameType", ResolveGameType(knownTypes{model.GameTypeChess: true}), func(c *fiber.Ctx) error {
		return c.SendString(string(GameType(c)))
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/chess", fiber.StatusOK},
		{"/go", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}
}

func TestWebSocketUpgradeRejectsPlainRequests(t *testing.T) {
	app := fiber.New()
	app.Get("/ws/:gameId", WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/abc", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/bad", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadRequest) })

	for _, p := range []string{"/ok", "/bad"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, p, nil), -1); err != nil {
			t.Fatal(err)
		}
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[1].Level != zapcore.InfoLevel {
		t.Errorf("levels = %v, %v", entries[0].Level, entries[1].Level)
	}
	if got := entries[1].ContextMap()["status"]; got != int64(fiber.StatusBadRequest) {
		t.Errorf("status field = %v", got)
	}
}
