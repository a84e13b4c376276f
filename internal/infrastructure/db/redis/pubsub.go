package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

// NotificationChannel is the Redis Pub/Sub channel carrying push messages
// between instances.
const NotificationChannel = "eventsync:notifications"

type envelope struct {
	Destination  string              `json:"destination"`
	Notification domain.Notification `json:"notification"`
}

// LocalDeliverer hands a message to subscribers connected to this instance.
type LocalDeliverer interface {
	Deliver(destination string, n domain.Notification) int
}

// Broadcaster implements ports.Notifier by publishing to Redis, so every
// instance running Relay delivers the message to its own subscribers.
type Broadcaster struct {
	client *redis.Client
}

func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{client: client}
}

func (b *Broadcaster) Broadcast(ctx context.Context, topic string, msg domain.Notification) error {
	return b.publish(ctx, topic, msg)
}

func (b *Broadcaster) SendToPrincipal(ctx context.Context, principalID string, msg domain.Notification) error {
	return b.publish(ctx, domain.PrincipalQueue(principalID), msg)
}

func (b *Broadcaster) publish(ctx context.Context, destination string, msg domain.Notification) error {
	data, err := json.Marshal(envelope{Destination: destination, Notification: msg})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := b.client.Publish(ctx, NotificationChannel, data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Relay subscribes to NotificationChannel and forwards every message to
// local until ctx is cancelled. ready is closed once the subscription is
// confirmed; it may be nil.
func Relay(ctx context.Context, client *redis.Client, local LocalDeliverer, ready chan<- struct{}, log zerolog.Logger) error {
	log = log.With().Str("component", "relay").Logger()

	sub := client.Subscribe(ctx, NotificationChannel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", NotificationChannel, err)
	}
	if ready != nil {
		close(ready)
	}
	log.Info().Str("channel", NotificationChannel).Msg("notification relay started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("notification relay stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Msg("malformed notification payload")
				continue
			}
			local.Deliver(env.Destination, env.Notification)
		}
	}
}
