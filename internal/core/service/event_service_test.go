package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Ovii2/EventSync/internal/core/domain"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/memory"
)

var admin = domain.Principal{ID: "u-admin", Username: "root", Role: domain.RoleAdmin}

func newEventFixture() (ports.EventService, *memory.EventRepository, *memory.FeedbackRepository) {
	events := memory.NewEventRepository()
	feedback := memory.NewFeedbackRepository()
	return NewEventService(events, feedback, nopLog), events, feedback
}

func TestEventService_CreateRequiresAdmin(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.Create(context.Background(), alice, ports.CreateEventInput{Title: "Meetup"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestEventService_CreateAndGet(t *testing.T) {
	svc, _, feedback := newEventFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, ports.CreateEventInput{Title: "  Meetup ", Description: "monthly"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Title != "Meetup" || created.CreatedBy != admin.ID || created.ID == "" {
		t.Fatalf("unexpected event %+v", created)
	}

	_ = feedback.Create(ctx, &domain.FeedbackItem{ID: "f1", EventID: created.ID, Sentiment: domain.SentimentPending})
	_ = feedback.Create(ctx, &domain.FeedbackItem{ID: "f2", EventID: created.ID, Sentiment: domain.SentimentPositive})

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FeedbackCount != 2 {
		t.Fatalf("expected feedback count 2, got %d", got.FeedbackCount)
	}
}

func TestEventService_DuplicateTitle(t *testing.T) {
	svc, _, _ := newEventFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, admin, ports.CreateEventInput{Title: "Meetup"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, admin, ports.CreateEventInput{Title: "Meetup"})
	if !errors.Is(err, domain.ErrEventTitleExists) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected title conflict, got %v", err)
	}
}

func TestEventService_GetMissing(t *testing.T) {
	svc, _, _ := newEventFixture()
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEventService_ListPagination(t *testing.T) {
	svc, events, _ := newEventFixture()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_ = events.Create(ctx, &domain.Event{
			ID:        fmt.Sprintf("e%02d", i),
			Title:     fmt.Sprintf("Event %d", i),
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		})
	}

	first, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if first.Page != 1 || first.Limit != defaultPageLimit || first.Total != 12 || first.TotalPages != 2 {
		t.Fatalf("unexpected page meta %+v", first)
	}
	if len(first.Items) != 10 || first.Items[0].ID != "e11" {
		t.Fatalf("expected newest first, got %d items starting %s", len(first.Items), first.Items[0].ID)
	}

	second, err := svc.List(ctx, 2, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(second.Items))
	}

	capped, _ := svc.List(ctx, 1, 1000)
	if capped.Limit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, capped.Limit)
	}

	beyond, _ := svc.List(ctx, 5, 10)
	if len(beyond.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(beyond.Items))
	}
}
