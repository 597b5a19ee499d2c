package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/argumetrics/internal/models"
)

// ActivityStore keeps the activity journal in MongoDB.
type ActivityStore struct {
	col *mongo.Collection
}

func NewActivityStore(db *mongo.Database) *ActivityStore {
	return &ActivityStore{col: db.Collection("activity")}
}

// EnsureIndexes creates the created_at index used by Recent.
func (s *ActivityStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo index: %w", err)
	}
	return nil
}

func (s *ActivityStore) Record(ctx context.Context, a models.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *ActivityStore) Recent(ctx context.Context, limit int64) ([]models.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	entries := []models.Activity{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return entries, nil
}
