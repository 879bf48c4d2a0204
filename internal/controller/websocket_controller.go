package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/benbeisheim/arcade-backend/internal/model"
	"github.com/benbeisheim/arcade-backend/internal/service"
	"github.com/benbeisheim/arcade-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
	hub         *ws.Hub
	logger      *zap.Logger
}

func NewWebSocketController(gameService *service.GameService, hub *ws.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		hub:         hub,
		logger:      logger,
	}
}

// HandleConnection is called when a new WebSocket connection is established.
// The socket receives the current state, then every update of the game.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	gameType := model.GameType(c.Params("gameType"))

	view, err := wsc.gameService.GetState(gameID)
	if err == nil && view.GameType != gameType {
		err = fmt.Errorf("%w: %s is not a %s game", model.ErrGameNotFound, gameID, gameType)
	}
	if err != nil {
		wsc.logger.Info("socket rejected", zap.String("game_id", gameID), zap.Error(err))
		if msg, merr := errorMessage(err); merr == nil {
			c.WriteJSON(msg)
		}
		c.Close()
		return
	}

	connID := wsc.hub.Register(gameID, c)
	defer wsc.hub.Unregister(gameID, connID)

	if msg, err := ws.NewMessage(ws.MessageTypeGameState, view); err == nil {
		wsc.hub.Send(gameID, connID, msg)
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			wsc.logger.Debug("socket closed", zap.String("game_id", gameID), zap.String("conn_id", connID), zap.Error(err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(gameID, connID, model.Malformed(err))
			continue
		}
		if err := wsc.handleMessage(gameID, connID, msg); err != nil {
			wsc.reply(gameID, connID, err)
		}
	}
}

// handleMessage dispatches one client frame. Accepted moves reach every
// socket through the hub, so only failures are answered directly.
func (wsc *WebSocketController) handleMessage(gameID, connID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		_, err := wsc.gameService.MakeMove(gameID, msg.Payload)
		return err

	case ws.MessageTypeValidate:
		if err := wsc.gameService.ValidateMove(gameID, msg.Payload); err != nil {
			return err
		}
		reply, err := ws.NewMessage(ws.MessageTypeValid, msg.Payload)
		if err != nil {
			return err
		}
		return wsc.hub.Send(gameID, connID, reply)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) reply(gameID, connID string, cause error) {
	msg, err := errorMessage(cause)
	if err != nil {
		wsc.logger.Error("marshal error reply", zap.Error(err))
		return
	}
	if err := wsc.hub.Send(gameID, connID, msg); err != nil {
		wsc.logger.Warn("error reply failed", zap.String("game_id", gameID), zap.String("conn_id", connID), zap.Error(err))
	}
}

func errorMessage(cause error) (ws.Message, error) {
	_, kind := statusFor(cause)
	return ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: cause.Error(), Kind: kind})
}
