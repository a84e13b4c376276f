package ports

import (
	"context"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// Notifier delivers push messages on a best-effort basis.
type Notifier interface {
	// Broadcast sends msg to every subscriber of topic.
	Broadcast(ctx context.Context, topic string, msg domain.Notification) error
	// SendToPrincipal sends msg to the direct queue of one principal.
	SendToPrincipal(ctx context.Context, principalID string, msg domain.Notification) error
}

// DeliveryMarker records that a notification keyed by key was already sent,
// so a re-processed token does not notify twice.
type DeliveryMarker interface {
	// MarkOnce returns true the first time key is seen.
	MarkOnce(ctx context.Context, key string) (bool, error)
}
