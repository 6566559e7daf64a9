package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// LogoutTopic is where logout events are published.
const LogoutTopic = "taskhive.auth.logout"

// LogoutEvent is the payload announcing an explicit revocation.
type LogoutEvent struct {
	Subject   string    `json:"subject"`
	TokenKind string    `json:"token_kind"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher port on a Watermill
// publisher, so other instances can react to logouts (cache invalidation,
// audit trails) regardless of the broker behind it.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher wraps an existing Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     LogoutTopic,
	}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, subject string, kind core.TokenKind) error {
	event := LogoutEvent{
		Subject:   subject,
		TokenKind: string(kind),
		At:        time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
