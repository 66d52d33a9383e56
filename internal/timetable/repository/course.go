package repository

import (
	"context"
	"errors"
	"fmt"

	timetableerrors "campustime/internal/timetable/errors"
	"campustime/pkg/config"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CoursesCollectionName = "Courses"
)

// CourseRepository reads the course catalog for notification wording.
type CourseRepository interface {
	FindByID(ctx context.Context, id string) (*model.Course, error)
}

type mongoCourseRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCourseRepository(cfg *config.Config) CourseRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCourseRepository{
		cfg:        cfg,
		collection: db.Collection(CoursesCollectionName),
	}
}

func (r *mongoCourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", timetableerrors.ErrCourseNotFound, id)
	}

	var course model.Course
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, timetableerrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	return &course, nil
}
