package notify

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

func TestHub_BroadcastReachesTopicSubscribersOnly(t *testing.T) {
	h := NewHub(zerolog.Nop())
	a := h.Subscribe(domain.FeedbackTopic("e1"))
	b := h.Subscribe(domain.FeedbackTopic("e1"))
	other := h.Subscribe(domain.FeedbackTopic("e2"))
	defer a.Close()
	defer b.Close()
	defer other.Close()

	msg := domain.Notification{Type: domain.NotificationClassificationUpdated, Data: "x"}
	require.NoError(t, h.Broadcast(context.Background(), domain.FeedbackTopic("e1"), msg))

	for _, s := range []*Subscription{a, b} {
		got := <-s.C
		assert.Equal(t, domain.FeedbackTopic("e1"), got.Destination)
		assert.Equal(t, domain.NotificationClassificationUpdated, got.Type)
	}
	assert.Empty(t, other.C)
}

func TestHub_SendToPrincipal(t *testing.T) {
	h := NewHub(zerolog.Nop())
	s := h.Subscribe(domain.PrincipalQueue("p1"))
	defer s.Close()

	msg := domain.Notification{Type: domain.NotificationSessionExpired, Data: domain.SessionExpiredText}
	require.NoError(t, h.SendToPrincipal(context.Background(), "p1", msg))
	require.NoError(t, h.SendToPrincipal(context.Background(), "p2", msg))

	got := <-s.C
	assert.Equal(t, domain.SessionExpiredText, got.Data)
	assert.Empty(t, s.C)
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	h := NewHub(zerolog.Nop())
	s := h.Subscribe("topic")
	defer s.Close()

	for i := 0; i < defaultBuffer; i++ {
		assert.Equal(t, 1, h.Deliver("topic", domain.Notification{Type: "T"}))
	}
	assert.Equal(t, 0, h.Deliver("topic", domain.Notification{Type: "T"}))
}

func TestHub_CloseUnsubscribes(t *testing.T) {
	h := NewHub(zerolog.Nop())
	s := h.Subscribe("a", "b")
	assert.Equal(t, 1, h.Subscribers("a"))

	s.Close()
	s.Close()

	assert.Equal(t, 0, h.Subscribers("a"))
	assert.Equal(t, 0, h.Deliver("b", domain.Notification{Type: "T"}))
	_, open := <-s.C
	assert.False(t, open)
}
