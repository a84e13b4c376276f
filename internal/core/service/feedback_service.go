package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Ovii2/EventSync/internal/api/metrics"
	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
)

// FeedbackService is the sentiment pipeline: a submitted item is stored as
// pending, classified off the request path, updated in place and broadcast
// to the event's topic.
//
// An item whose background step never completes stays pending. There is no
// automatic retry; the pending count in Summarize is the signal to watch.
type FeedbackService struct {
	events     ports.EventRepository
	feedback   ports.FeedbackRepository
	classifier ports.Classifier
	notifier   ports.Notifier
	queue      ports.ClassificationQueue
	clock      clockwork.Clock
	log        zerolog.Logger
}

func NewFeedbackService(
	events ports.EventRepository,
	feedback ports.FeedbackRepository,
	classifier ports.Classifier,
	notifier ports.Notifier,
	queue ports.ClassificationQueue,
	clock clockwork.Clock,
	log zerolog.Logger,
) *FeedbackService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FeedbackService{
		events:     events,
		feedback:   feedback,
		classifier: classifier,
		notifier:   notifier,
		queue:      queue,
		clock:      clock,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// Submit validates the event, stores a pending item and hands it to the
// classification queue. It returns as soon as the item is persisted.
func (s *FeedbackService) Submit(ctx context.Context, principal domain.Principal, eventID, content string) (*domain.FeedbackItem, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}

	item := &domain.FeedbackItem{
		ID:          uuid.NewString(),
		EventID:     eventID,
		PrincipalID: principal.ID,
		Content:     strings.TrimSpace(content),
		Sentiment:   domain.SentimentPending,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.feedback.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}
	metrics.FeedbackSubmittedTotal.Inc()

	if !s.queue.Enqueue(*item) {
		metrics.ClassificationDroppedTotal.Inc()
		s.log.Warn().Str("feedback_id", item.ID).Str("event_id", eventID).Msg("classification queue full, item stays pending")
	}

	return item, nil
}

// ClassifyAndPublish is the background unit for one item. The broadcast is
// sent only after the update is persisted.
func (s *FeedbackService) ClassifyAndPublish(ctx context.Context, item domain.FeedbackItem) error {
	start := time.Now()
	label := s.classifier.Classify(ctx, item.Content)
	if err := ctx.Err(); err != nil {
		// Shutdown mid-classification: the item stays pending.
		return fmt.Errorf("classify feedback %s: %w", item.ID, err)
	}

	if err := s.feedback.UpdateClassification(ctx, item.ID, label); err != nil {
		metrics.ClassificationsTotal.WithLabelValues("update_failed").Inc()
		return fmt.Errorf("classify feedback %s: update: %w", item.ID, err)
	}
	item.Sentiment = label
	metrics.ClassificationsTotal.WithLabelValues(string(label)).Inc()
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())

	msg := domain.Notification{Type: domain.NotificationClassificationUpdated, Data: item}
	if err := s.notifier.Broadcast(ctx, domain.FeedbackTopic(item.EventID), msg); err != nil {
		return fmt.Errorf("classify feedback %s: broadcast: %w", item.ID, err)
	}

	s.log.Info().
		Str("feedback_id", item.ID).
		Str("event_id", item.EventID).
		Str("sentiment", string(label)).
		Msg("feedback classified")
	return nil
}

// Summarize counts the items of one event per classification state.
func (s *FeedbackService) Summarize(ctx context.Context, eventID string) (*domain.FeedbackSummary, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}

	summary := &domain.FeedbackSummary{EventID: eventID}
	for _, state := range domain.Sentiments {
		n, err := s.feedback.CountByClassification(ctx, eventID, state)
		if err != nil {
			return nil, fmt.Errorf("summarize feedback: %w", err)
		}
		summary.Add(state, n)
	}
	return summary, nil
}

// List returns the feedback of one event, newest first.
func (s *FeedbackService) List(ctx context.Context, eventID string) ([]*domain.FeedbackItem, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	items, err := s.feedback.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
