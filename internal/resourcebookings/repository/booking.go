package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	resourcebookingerrors "campustime/internal/resourcebookings/errors"
	"campustime/pkg/config"
	mongotx "campustime/pkg/db/mongo"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Resource_bookings"
)

type mongoResourceBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ResourceBookingRepository interface {
	Create(ctx context.Context, booking *model.ResourceBooking) error
	FindByID(ctx context.Context, id string) (*model.ResourceBooking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ResourceBooking, error)
	Count(ctx context.Context) (int64, error)
	FindByResourceAndDay(ctx context.Context, resourceID string, day string) ([]*model.ResourceBooking, error)
	Replace(ctx context.Context, id string, booking *model.ResourceBooking) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoResourceBookingRepository(cfg *config.Config) ResourceBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoResourceBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoResourceBookingRepository) Create(ctx context.Context, booking *model.ResourceBooking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create resource booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoResourceBookingRepository) FindByID(ctx context.Context, id string) (*model.ResourceBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resourcebookingerrors.ErrInvalidID, id)
	}

	var booking model.ResourceBooking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resourcebookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resource booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoResourceBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ResourceBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "day", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.ResourceBooking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode resource bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoResourceBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count resource bookings: %w", err)
	}
	return count, nil
}

func (r *mongoResourceBookingRepository) FindByResourceAndDay(ctx context.Context, resourceID string, day string) ([]*model.ResourceBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"resource_id": resourceID, "day": day})
	if err != nil {
		return nil, fmt.Errorf("failed to query resource bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.ResourceBooking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode resource bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoResourceBookingRepository) Replace(ctx context.Context, id string, booking *model.ResourceBooking) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resourcebookingerrors.ErrInvalidID, id)
	}

	booking.ID = ""
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID}, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to replace resource booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, resourcebookingerrors.ErrNotFound
	}
	booking.ID = id
	return result, nil
}

func (r *mongoResourceBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", resourcebookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete resource booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return resourcebookingerrors.ErrNotFound
	}
	return nil
}

func (r *mongoResourceBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
