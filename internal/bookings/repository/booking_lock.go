package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "dormitory/internal/bookings/errors"
	"dormitory/pkg/config"
	mongotx "dormitory/pkg/db/mongo"
	"dormitory/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "booking_locks"
)

// BookingLockRepository stores advisory locks. A TTL index on expires_at
// removes locks left behind by crashed requests.
type BookingLockRepository interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error)
	Release(ctx context.Context, lock *model.BookingLock) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(db *mongo.Database, cfg *config.Config) BookingLockRepository {
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire returns ErrLockHeld if another request holds key.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	lock := &model.BookingLock{
		ID:        key,
		Owner:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if mongo.IsDuplicateKeyError(err) {
		// The TTL monitor only runs once a minute; take over a lock that has already expired.
		var stolen bool
		stolen, err = r.removeExpired(ctx, key, now)
		if err == nil && stolen {
			_, err = r.collection.InsertOne(ctx, lock)
		}
		if err == nil && !stolen {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, key)
		}
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, key)
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return lock, nil
}

func (r *mongoBookingLockRepository) removeExpired(ctx context.Context, key string, now time.Time) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return false, fmt.Errorf("failed to clear expired lock %s: %w", key, err)
	}
	return result.DeletedCount == 1, nil
}

// Release removes lock only while it still belongs to its owner. A lock that
// expired and was taken over by another request is left alone.
func (r *mongoBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner}); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lock.ID, err)
	}
	return nil
}
