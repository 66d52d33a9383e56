package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	timetableerrors "campustime/internal/timetable/errors"
	"campustime/pkg/config"
	mongotx "campustime/pkg/db/mongo"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Class_sessions"
)

type mongoSessionRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.ClassSession) error
	FindByID(ctx context.Context, id string) (*model.ClassSession, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ClassSession, error)
	Count(ctx context.Context) (int64, error)
	// FindByScope returns the committed sessions in the own-kind
	// overlap scope (courseID, week, day).
	FindByScope(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error)
	FindByCourseAndWeek(ctx context.Context, courseID string, week int) ([]*model.ClassSession, error)
	// FindByLocationAndDay is the query surface the room booking
	// service reads when enforcing the timetable-over-bookings rule.
	FindByLocationAndDay(ctx context.Context, location string, day string) ([]*model.ClassSession, error)
	Replace(ctx context.Context, id string, session *model.ClassSession) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds the call unless already inside a transaction; a
// SessionContext cannot be wrapped without breaking the transaction.
func (r *mongoSessionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoSessionRepository) Create(ctx context.Context, session *model.ClassSession) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create class session: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSessionRepository) FindByID(ctx context.Context, id string) (*model.ClassSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", timetableerrors.ErrInvalidID, id)
	}

	var session model.ClassSession
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, timetableerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find class session: %w", err)
	}

	return &session, nil
}

func (r *mongoSessionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ClassSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "week", Value: 1}, {Key: "day", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list class sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.ClassSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode class sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count class sessions: %w", err)
	}
	return count, nil
}

func (r *mongoSessionRepository) FindByScope(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"course_id": courseID,
		"week":      week,
		"day":       day,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query session scope: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.ClassSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode session scope: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) FindByCourseAndWeek(ctx context.Context, courseID string, week int) ([]*model.ClassSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "day", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"course_id": courseID, "week": week}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by course and week: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.ClassSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) FindByLocationAndDay(ctx context.Context, location string, day string) ([]*model.ClassSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"location": location, "day": day})
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by location: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.ClassSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) Replace(ctx context.Context, id string, session *model.ClassSession) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", timetableerrors.ErrInvalidID, id)
	}

	session.ID = ""
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID}, session)
	if err != nil {
		return nil, fmt.Errorf("failed to replace class session: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, timetableerrors.ErrNotFound
	}
	session.ID = id
	return result, nil
}

func (r *mongoSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", timetableerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete class session: %w", err)
	}
	if result.DeletedCount == 0 {
		return timetableerrors.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
