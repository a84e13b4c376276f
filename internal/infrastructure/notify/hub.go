// Package notify fans push messages out to live subscribers. The Hub keeps
// in-process subscriptions keyed by destination; the Gateway exposes them to
// browsers over websockets.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
)

const defaultBuffer = 32

// Message is one push frame addressed to a destination.
type Message struct {
	Destination string                  `json:"destination"`
	Type        domain.NotificationType `json:"type"`
	Data        any                     `json:"data"`
}

// Hub delivers messages to local subscribers. Delivery never blocks: a
// subscriber whose buffer is full misses the message.
type Hub struct {
	log    zerolog.Logger
	buffer int

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:    log.With().Str("component", "hub").Logger(),
		buffer: defaultBuffer,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Subscription receives messages for a fixed set of destinations until closed.
type Subscription struct {
	C <-chan Message

	ch    chan Message
	hub   *Hub
	dests []string
	once  sync.Once
}

// Subscribe registers a subscription for every destination given.
func (h *Hub) Subscribe(destinations ...string) *Subscription {
	ch := make(chan Message, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h, dests: destinations}

	h.mu.Lock()
	for _, d := range destinations {
		set, ok := h.subs[d]
		if !ok {
			set = make(map[*Subscription]struct{})
			h.subs[d] = set
		}
		set[s] = struct{}{}
	}
	h.mu.Unlock()
	return s
}

// Close unregisters the subscription and closes C. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		for _, d := range s.dests {
			if set, ok := h.subs[d]; ok {
				delete(set, s)
				if len(set) == 0 {
					delete(h.subs, d)
				}
			}
		}
		h.mu.Unlock()
		close(s.ch)
	})
}

// Deliver hands n to every local subscriber of destination and returns how
// many received it.
func (h *Hub) Deliver(destination string, n domain.Notification) int {
	msg := Message{Destination: destination, Type: n.Type, Data: n.Data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs[destination] {
		select {
		case s.ch <- msg:
			delivered++
		default:
			metrics.NotificationsDroppedTotal.Inc()
			h.log.Warn().Str("destination", destination).Msg("subscriber buffer full, message dropped")
		}
	}
	if delivered > 0 {
		metrics.NotificationsTotal.WithLabelValues(string(n.Type)).Add(float64(delivered))
	}
	return delivered
}

// Subscribers returns the number of subscriptions for destination.
func (h *Hub) Subscribers(destination string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[destination])
}

// Broadcast implements ports.Notifier for a single process.
func (h *Hub) Broadcast(_ context.Context, topic string, msg domain.Notification) error {
	h.Deliver(topic, msg)
	return nil
}

// SendToPrincipal implements ports.Notifier for a single process.
func (h *Hub) SendToPrincipal(_ context.Context, principalID string, msg domain.Notification) error {
	h.Deliver(domain.PrincipalQueue(principalID), msg)
	return nil
}
