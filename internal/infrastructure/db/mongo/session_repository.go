package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ovii2/EventSync/internal/core/domain"
)

const sessionsCollection = "session_tokens"

// SessionRepository implements ports.SessionRepository using MongoDB.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionsCollection)}
}

type mongoSession struct {
	ID          string    `bson:"_id"`
	Token       string    `bson:"token"`
	PrincipalID string    `bson:"principal_id"`
	Username    string    `bson:"username"`
	Expired     bool      `bson:"expired"`
	Revoked     bool      `bson:"revoked"`
	CreatedAt   time.Time `bson:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at"`
}

func (r *SessionRepository) Save(ctx context.Context, t *domain.SessionToken) error {
	doc := mongoSession{
		ID:          t.ID,
		Token:       t.Token,
		PrincipalID: t.PrincipalID,
		Username:    t.Username,
		Expired:     t.Expired,
		Revoked:     t.Revoked,
		CreatedAt:   t.CreatedAt.UTC(),
		ExpiresAt:   t.ExpiresAt.UTC(),
	}
	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.SessionToken, error) {
	var ms mongoSession
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *SessionRepository) FindByPrincipal(ctx context.Context, principalID string) ([]*domain.SessionToken, error) {
	return r.find(ctx, bson.M{"principal_id": principalID})
}

func (r *SessionRepository) FindAll(ctx context.Context) ([]*domain.SessionToken, error) {
	return r.find(ctx, bson.M{})
}

func (r *SessionRepository) find(ctx context.Context, filter bson.M) ([]*domain.SessionToken, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoSession
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	out := make([]*domain.SessionToken, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *SessionRepository) MarkExpired(ctx context.Context, id string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"expired": true, "revoked": true}})
	if err != nil {
		return fmt.Errorf("mark session expired: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func (ms mongoSession) toDomain() *domain.SessionToken {
	return &domain.SessionToken{
		ID:          ms.ID,
		Token:       ms.Token,
		PrincipalID: ms.PrincipalID,
		Username:    ms.Username,
		Expired:     ms.Expired,
		Revoked:     ms.Revoked,
		CreatedAt:   ms.CreatedAt,
		ExpiresAt:   ms.ExpiresAt,
	}
}
