package game

import (
	"encoding/json"
	"fmt"
)

// Message type for WebSocket communication between client and server.
type MessageType string

const (
	MsgTypeJoin  MessageType = "join"  // Client wants to join a hosted session
	MsgTypeClick MessageType = "click" // Client clicks a card slot
	MsgTypeReset MessageType = "reset" // Client asks for a new deal
	MsgTypeState MessageType = "state" // Server sends the board
	MsgTypeError MessageType = "error" // Server sends an error message
)

// WsMessage represents a WebSocket message.
type WsMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewWsMessage creates a new WsMessage with a marshaled payload.
func NewWsMessage(msgType MessageType, payload any) (WsMessage, error) {
	if payload == nil {
		return WsMessage{Type: msgType}, nil
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return WsMessage{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return WsMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

// Parse unmarshals the message payload into one of the message types (JoinMessage, ClickMessage, etc.)
func (m *WsMessage) Parse() (any, error) {
	var target any
	switch m.Type {
	case MsgTypeJoin:
		target = &JoinMessage{}
	case MsgTypeClick:
		target = &ClickMessage{}
	case MsgTypeReset:
		target = &ResetMessage{}
	case MsgTypeState:
		target = &StateMessage{}
	case MsgTypeError:
		target = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", m.Type)
	}

	if len(m.Payload) == 0 {
		return target, nil
	}

	err := json.Unmarshal(m.Payload, target)
	return target, err
}

// JoinMessage is the payload for MsgTypeJoin
type JoinMessage struct {
	SessionID string `json:"session_id"`
}

// ClickMessage is the payload for MsgTypeClick
type ClickMessage struct {
	Slot int `json:"slot"`
}

// ResetMessage: empty.
type ResetMessage struct{}

// StateMessage is the payload for MsgTypeState
type StateMessage struct {
	SessionID string    `json:"session_id"`
	Board     BoardView `json:"board"`
	Delays    Delays    `json:"delays"`
}

// ErrorMessage is the payload for MsgTypeError
type ErrorMessage struct {
	Message string `json:"message"`
}
