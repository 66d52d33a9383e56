package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roombookingerrors "campustime/internal/roombookings/errors"
	"campustime/pkg/config"
	mongotx "campustime/pkg/db/mongo"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Room_bookings"
)

type mongoRoomBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type RoomBookingRepository interface {
	Create(ctx context.Context, booking *model.RoomBooking) error
	FindByID(ctx context.Context, id string) (*model.RoomBooking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.RoomBooking, error)
	Count(ctx context.Context) (int64, error)
	FindByRoomAndDay(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error)
	Replace(ctx context.Context, id string, booking *model.RoomBooking) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoRoomBookingRepository(cfg *config.Config) RoomBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRoomBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoRoomBookingRepository) Create(ctx context.Context, booking *model.RoomBooking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create room booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoomBookingRepository) FindByID(ctx context.Context, id string) (*model.RoomBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roombookingerrors.ErrInvalidID, id)
	}

	var booking model.RoomBooking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roombookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoRoomBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.RoomBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "day", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.RoomBooking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode room bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoRoomBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count room bookings: %w", err)
	}
	return count, nil
}

func (r *mongoRoomBookingRepository) FindByRoomAndDay(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"room_id": roomID, "day": day})
	if err != nil {
		return nil, fmt.Errorf("failed to query room bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.RoomBooking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode room bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoRoomBookingRepository) Replace(ctx context.Context, id string, booking *model.RoomBooking) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roombookingerrors.ErrInvalidID, id)
	}

	booking.ID = ""
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID}, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to replace room booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, roombookingerrors.ErrNotFound
	}
	booking.ID = id
	return result, nil
}

func (r *mongoRoomBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roombookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete room booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return roombookingerrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoomBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
