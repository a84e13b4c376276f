package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/memory"
	"github.com/Ovii2/EventSync/internal/pkg/token"
)

var (
	testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	nopLog  = zerolog.Nop()
)

func newTestCodec(clock clockwork.Clock) *token.Codec {
	return token.NewCodec("test-secret", time.Hour, clock)
}

type sentMessage struct {
	destination string
	msg         domain.Notification
}

// recordingNotifier captures every push message.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Broadcast(_ context.Context, topic string, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{destination: topic, msg: msg})
	return nil
}

func (n *recordingNotifier) SendToPrincipal(ctx context.Context, principalID string, msg domain.Notification) error {
	return n.Broadcast(ctx, domain.PrincipalQueue(principalID), msg)
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

// flakySessionRepo fails MarkExpired for selected ids.
type flakySessionRepo struct {
	*memory.SessionRepository
	failMark map[string]bool
}

func (r *flakySessionRepo) MarkExpired(ctx context.Context, id string) error {
	if r.failMark[id] {
		return errors.New("write conflict")
	}
	return r.SessionRepository.MarkExpired(ctx, id)
}

// stubMarker answers MarkOnce from a fixed set of already-delivered keys.
type stubMarker struct {
	mu        sync.Mutex
	delivered map[string]bool
	err       error
}

func (m *stubMarker) MarkOnce(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.delivered[key] {
		return false, nil
	}
	m.delivered[key] = true
	return true, nil
}

type stubClassifier struct {
	label domain.Sentiment
	texts []string
}

func (c *stubClassifier) Classify(_ context.Context, text string) domain.Sentiment {
	c.texts = append(c.texts, text)
	return c.label
}

// captureQueue records enqueued items instead of running them.
type captureQueue struct {
	items []domain.FeedbackItem
	full  bool
}

func (q *captureQueue) Enqueue(item domain.FeedbackItem) bool {
	if q.full {
		return false
	}
	q.items = append(q.items, item)
	return true
}

// brokenFeedbackRepo fails every classification update.
type brokenFeedbackRepo struct {
	*memory.FeedbackRepository
}

func (r brokenFeedbackRepo) UpdateClassification(context.Context, string, domain.Sentiment) error {
	return errors.New("primary stepped down")
}
