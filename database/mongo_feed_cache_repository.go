package database

import (
	"context"
	"fmt"
	"time"

	"pickem-app-go/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// feedCacheDoc holds the last-known-good payload for one feed source.
// Timestamp is epoch milliseconds, matching the shape the dashboard
// has always persisted for its caches.
type feedCacheDoc struct {
	Key       string    `bson:"_id"`
	Timestamp int64     `bson:"timestamp"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoFeedCacheRepository stores last-known-good feed payloads so a
// failed fetch can fall back to the previous value instead of losing
// the week's data.
type MongoFeedCacheRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoFeedCacheRepository creates a new feed cache repository
func NewMongoFeedCacheRepository(db *MongoDB) *MongoFeedCacheRepository {
	return &MongoFeedCacheRepository{
		collection: db.GetCollection("feed_cache"),
		logger:     logging.WithPrefix("FeedCache"),
	}
}

// Get returns the cached payload and its capture time for a source
// key. A missing entry returns (nil, zero, nil).
func (r *MongoFeedCacheRepository) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	var doc feedCacheDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read feed cache %q: %w", key, err)
	}
	return doc.Payload, time.UnixMilli(doc.Timestamp), nil
}

// Put stores a fresh payload for a source key
func (r *MongoFeedCacheRepository) Put(ctx context.Context, key string, payload []byte, at time.Time) error {
	doc := feedCacheDoc{
		Key:       key,
		Timestamp: at.UnixMilli(),
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to write feed cache %q: %w", key, err)
	}
	r.logger.Debugf("Cached %d bytes for %q", len(payload), key)
	return nil
}

// IsFresh reports whether a capture time is still within its TTL
func IsFresh(capturedAt time.Time, ttl time.Duration, now time.Time) bool {
	if capturedAt.IsZero() {
		return false
	}
	return now.Sub(capturedAt) < ttl
}
