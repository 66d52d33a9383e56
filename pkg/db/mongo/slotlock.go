package mongo

import (
	"context"
	"fmt"
	"time"

	apperrors "campustime/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const slotLockCollection = "Slot_locks"

// SlotLock is an advisory lock document keyed by one (kind, resource
// key, day) scope. Inserting it succeeds for exactly one concurrent
// request; everyone else sees a duplicate-key error. The expires_at
// TTL index reaps locks whose holder died before releasing.
type SlotLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// SlotLocker serializes check-and-commit sequences per allocation
// scope. Contention surfaces as a retryable transient error, never as
// an allocation conflict: the competing request may well not overlap.
type SlotLocker interface {
	Acquire(ctx context.Context, kind, resourceKey, day string) (string, error)
	Release(ctx context.Context, lockID string) error
}

type mongoSlotLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewSlotLocker(db *mongo.Database, ttl time.Duration) SlotLocker {
	return &mongoSlotLocker{
		collection: db.Collection(slotLockCollection),
		ttl:        ttl,
	}
}

func (l *mongoSlotLocker) Acquire(ctx context.Context, kind, resourceKey, day string) (string, error) {
	lockID := fmt.Sprintf("%s:%s:%s", kind, resourceKey, day)

	now := time.Now()
	lock := SlotLock{
		ID:        lockID,
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	if _, err := l.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Transient(
				"this slot is being modified by another request, retry shortly", err)
		}
		return "", apperrors.Transient("failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (l *mongoSlotLocker) Release(ctx context.Context, lockID string) error {
	_, err := l.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// EnsureSlotLockIndexes creates the TTL index backing lock expiry.
// Run once at service startup.
func EnsureSlotLockIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(slotLockCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}
