package confirmation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmailConfirmed is published after a confirmation commits
type EmailConfirmed struct {
	RecordID    uuid.UUID
	UserID      uuid.UUID
	Email       string
	ConfirmedAt time.Time
}

// Observer receives EmailConfirmed events synchronously, in registration order
type Observer interface {
	EmailConfirmed(ctx context.Context, event EmailConfirmed)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, event EmailConfirmed)

// EmailConfirmed calls f
func (f ObserverFunc) EmailConfirmed(ctx context.Context, event EmailConfirmed) {
	f(ctx, event)
}
