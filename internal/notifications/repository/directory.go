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
	EnrollmentsCollectionName = "Enrollments"
	UsersCollectionName       = "Users"
)

// DirectoryRepository reads the catalog collections owned by the
// surrounding campus system. Fanout only ever reads them.
type DirectoryRepository interface {
	EnrolledUserIDs(ctx context.Context, courseID string) ([]string, error)
	AllUserIDs(ctx context.Context) ([]string, error)
}

type mongoDirectoryRepository struct {
	cfg         *config.Config
	enrollments *mongo.Collection
	users       *mongo.Collection
}

func NewMongoDirectoryRepository(cfg *config.Config) DirectoryRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDirectoryRepository{
		cfg:         cfg,
		enrollments: db.Collection(EnrollmentsCollectionName),
		users:       db.Collection(UsersCollectionName),
	}
}

func (r *mongoDirectoryRepository) EnrolledUserIDs(ctx context.Context, courseID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.enrollments.Find(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments for course %s: %w", courseID, err)
	}
	defer cursor.Close(ctx)

	var enrollments []*model.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.UserID)
	}
	return ids, nil
}

func (r *mongoDirectoryRepository) AllUserIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}
