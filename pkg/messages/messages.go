package messages

import (
	"encoding/json"
	"fmt"
)

const (
	// MessageBufferSize represents the maximum size of an incoming message
	MessageBufferSize = 64 * 1024
	// MaxDecompressedSize bounds a message after decompression
	MaxDecompressedSize = 64 * MessageBufferSize
)

// Message types
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeCommand  = "command"
	MessageTypeError    = "error"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ErrorPayload is the payload of an error message
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage encodes payload as JSON and wraps it in a message of the given type.
func NewMessage(messageType string, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", messageType, err)
	}
	return &Message{
		Type:    messageType,
		Payload: b,
	}, nil
}

// NewErrorMessage never fails.
func NewErrorMessage(clientID uint32, err error) *Message {
	b, _ := json.Marshal(ErrorPayload{Message: err.Error()})
	return &Message{
		ClientID: clientID,
		Type:     MessageTypeError,
		Payload:  b,
	}
}

// DecodePayload unmarshals the payload of m into v after checking its type.
func DecodePayload(m *Message, messageType string, v interface{}) error {
	if m.Type != messageType {
		return fmt.Errorf("expected %s message, got %s", messageType, m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", messageType, err)
	}
	return nil
}
