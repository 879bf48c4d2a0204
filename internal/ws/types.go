package ws

import (
	"encoding/json"
)

// MessageType names the kind of payload carried by a Message.
type MessageType string

const (
	// Client to server.
	MessageTypeMove     MessageType = "move"
	MessageTypeValidate MessageType = "validate"

	// Server to client.
	MessageTypeGameState MessageType = "gameState"
	MessageTypeValid     MessageType = "valid"
	MessageTypeError     MessageType = "error"
)

// Message is the envelope for every frame on the game socket.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is sent with MessageTypeError.
type ErrorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewMessage marshals payload into a Message of type t.
func NewMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
