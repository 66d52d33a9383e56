package service

import (
	"context"
	"errors"
	"sync"

	notiferrors "campustime/internal/notifications/errors"
	"campustime/internal/notifications/repository"
	"campustime/pkg/config"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/model"
)

type NotificationService interface {
	// Fanout expands one event into a notification per recipient.
	Fanout(ctx context.Context, event *model.FanoutEvent) error
	GetByUser(ctx context.Context, userID string, limit int, offset int) ([]*model.Notification, int64, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	Delete(ctx context.Context, id string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	directory repository.DirectoryRepository
	cfg       *config.Config
}

func NewNotificationService(
	repo repository.NotificationRepository,
	directory repository.DirectoryRepository,
	cfg *config.Config,
) NotificationService {
	return &notificationService{
		repo:      repo,
		directory: directory,
		cfg:       cfg,
	}
}

func (s *notificationService) Fanout(ctx context.Context, event *model.FanoutEvent) error {
	if event == nil || event.Message == "" {
		return apperrors.InvalidInput("Fanout event must carry a message")
	}

	recipients, err := s.resolveAudience(ctx, event)
	if err != nil {
		return err
	}

	if len(recipients) == 0 {
		s.cfg.Log.Info("Fanout resolved no recipients",
			"audience", event.Audience,
			"course_id", event.CourseID,
		)
		return nil
	}

	notifications := make([]*model.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, &model.Notification{
			UserID:  userID,
			Message: event.Message,
		})
	}

	if err := s.repo.InsertMany(ctx, notifications); err != nil {
		s.cfg.Log.Error("Failed to persist fanout notifications",
			"audience", event.Audience,
			"recipients", len(recipients),
			"error", err,
		)
		return apperrors.Transient("Failed to persist notifications", err)
	}

	s.cfg.Log.Info("Fanout delivered",
		"audience", event.Audience,
		"course_id", event.CourseID,
		"recipients", len(recipients),
	)
	return nil
}

func (s *notificationService) resolveAudience(ctx context.Context, event *model.FanoutEvent) ([]string, error) {
	switch event.Audience {
	case model.AudienceEnrolled:
		if event.CourseID == "" {
			return nil, apperrors.InvalidInput("Enrolled audience requires a course ID")
		}
		ids, err := s.directory.EnrolledUserIDs(ctx, event.CourseID)
		if err != nil {
			return nil, apperrors.Transient("Failed to resolve enrolled users", err)
		}
		return ids, nil
	case model.AudienceAllUsers:
		ids, err := s.directory.AllUserIDs(ctx)
		if err != nil {
			return nil, apperrors.Transient("Failed to resolve user directory", err)
		}
		return ids, nil
	default:
		return nil, apperrors.InvalidInput(notiferrors.ErrUnknownAudience.Error() + ": " + event.Audience)
	}
}

func (s *notificationService) GetByUser(ctx context.Context, userID string, limit int, offset int) ([]*model.Notification, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	skip := config.NormalizeOffset(int64(offset))

	var count int64
	var notifications []*model.Notification
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count notifications", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count notifications", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		notifications, errFind = s.repo.FindByUser(ctx, userID, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list notifications", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve notifications", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return notifications, count, nil
}

func (s *notificationService) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Notification ID cannot be empty")
	}

	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, notiferrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Notification", id)
		}
		if errors.Is(err, notiferrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid notification ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve notification", err)
	}

	return notification, nil
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Notification ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, notiferrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Notification", id)
		}
		if errors.Is(err, notiferrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid notification ID format")
		}
		return apperrors.Internal("Failed to delete notification", err)
	}

	s.cfg.Log.Info("Notification deleted", "id", id)
	return nil
}
