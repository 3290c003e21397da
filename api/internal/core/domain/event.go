package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransformEvent records that a transform happened. It carries
// lengths only, never the text or the key.
type TransformEvent struct {
	ID           uuid.UUID `json:"id"`
	Kind         Kind      `json:"cipher"`
	Operation    Operation `json:"operation"`
	InputLength  int       `json:"input_length"`
	OutputLength int       `json:"output_length"`
	ErrorCode    string    `json:"error_code,omitempty"`
	At           time.Time `json:"at"`
}

// EventPublisher receives transform events. Implementations must not block.
type EventPublisher interface {
	Publish(event TransformEvent)
}
