package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

const feedbackCollection = "feedback"

// FeedbackRepository implements ports.FeedbackRepository using MongoDB.
type FeedbackRepository struct {
	coll *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) *FeedbackRepository {
	return &FeedbackRepository{coll: db.Collection(feedbackCollection)}
}

type mongoFeedback struct {
	ID          string    `bson:"_id"`
	EventID     string    `bson:"event_id"`
	PrincipalID string    `bson:"principal_id"`
	Content     string    `bson:"content"`
	Sentiment   string    `bson:"sentiment"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (r *FeedbackRepository) Create(ctx context.Context, item *domain.FeedbackItem) error {
	doc := mongoFeedback{
		ID:          item.ID,
		EventID:     item.EventID,
		PrincipalID: item.PrincipalID,
		Content:     item.Content,
		Sentiment:   string(item.Sentiment),
		CreatedAt:   item.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// UpdateClassification sets only the sentiment field.
func (r *FeedbackRepository) UpdateClassification(ctx context.Context, id string, s domain.Sentiment) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"sentiment": string(s)}})
	if err != nil {
		return fmt.Errorf("update feedback sentiment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFeedbackNotFound
	}
	return nil
}

func (r *FeedbackRepository) CountByClassification(ctx context.Context, eventID string, s domain.Sentiment) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"event_id": eventID, "sentiment": string(s)})
	if err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

func (r *FeedbackRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

// ListByEvent returns an event's feedback, newest first.
func (r *FeedbackRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.FeedbackItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoFeedback
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	out := make([]*domain.FeedbackItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.FeedbackItem{
			ID:          d.ID,
			EventID:     d.EventID,
			PrincipalID: d.PrincipalID,
			Content:     d.Content,
			Sentiment:   domain.Sentiment(d.Sentiment),
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}
