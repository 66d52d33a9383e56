package repository

import (
	"context"
	"fmt"

	"campustime/pkg/config"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SessionsCollectionName = "Class_sessions"
)

// TimetableReader is the room booking service's read-only view of the
// fixed timetable. The timetable is authoritative: a room reserved for
// a class session can never be booked ad hoc.
type TimetableReader interface {
	FindByLocationAndDay(ctx context.Context, location string, day string) ([]*model.ClassSession, error)
}

type mongoTimetableReader struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTimetableReader(cfg *config.Config) TimetableReader {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTimetableReader{
		cfg:        cfg,
		collection: db.Collection(SessionsCollectionName),
	}
}

func (r *mongoTimetableReader) FindByLocationAndDay(ctx context.Context, location string, day string) ([]*model.ClassSession, error) {
	if _, ok := ctx.(mongo.SessionContext); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ReadTimeout)
		defer cancel()
	}

	cursor, err := r.collection.Find(ctx, bson.M{"location": location, "day": day})
	if err != nil {
		return nil, fmt.Errorf("failed to query timetable by location: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.ClassSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode timetable sessions: %w", err)
	}
	return sessions, nil
}
