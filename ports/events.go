package ports

import (
	"context"

	"github.com/taskhive/taskhive/core"
)

// EventPublisher notifies other components about credential lifecycle events.
type EventPublisher interface {
	// PublishLogout announces that a subject's token of the given kind was
	// explicitly revoked.
	PublishLogout(ctx context.Context, subject string, kind core.TokenKind) error
}
