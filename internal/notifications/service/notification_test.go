package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	notiferrors "campustime/internal/notifications/errors"
	"campustime/pkg/config"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/logger"
	"campustime/pkg/model"
)

type mockNotificationRepository struct {
	insertManyFunc  func(ctx context.Context, notifications []*model.Notification) error
	findByUserFunc  func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, error)
	countByUserFunc func(ctx context.Context, userID string) (int64, error)
	findByIDFunc    func(ctx context.Context, id string) (*model.Notification, error)
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockNotificationRepository) InsertMany(ctx context.Context, notifications []*model.Notification) error {
	if m.insertManyFunc != nil {
		return m.insertManyFunc(ctx, notifications)
	}
	return nil
}

func (m *mockNotificationRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Notification{}, nil
}

func (m *mockNotificationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockNotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, notiferrors.ErrNotFound
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return notiferrors.ErrNotFound
}

type mockDirectoryRepository struct {
	enrolledFunc func(ctx context.Context, courseID string) ([]string, error)
	allUsersFunc func(ctx context.Context) ([]string, error)
}

func (m *mockDirectoryRepository) EnrolledUserIDs(ctx context.Context, courseID string) ([]string, error) {
	if m.enrolledFunc != nil {
		return m.enrolledFunc(ctx, courseID)
	}
	return []string{}, nil
}

func (m *mockDirectoryRepository) AllUserIDs(ctx context.Context) ([]string, error) {
	if m.allUsersFunc != nil {
		return m.allUsersFunc(ctx)
	}
	return []string{}, nil
}

func newTestService(repo *mockNotificationRepository, directory *mockDirectoryRepository) NotificationService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.LevelError,
			Format:  logger.FormatJSON,
			Output:  io.Discard,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewNotificationService(repo, directory, cfg)
}

func TestFanout_EnrolledAudienceInsertsOnePerRecipient(t *testing.T) {
	var inserted []*model.Notification

	repo := &mockNotificationRepository{
		insertManyFunc: func(ctx context.Context, notifications []*model.Notification) error {
			inserted = notifications
			return nil
		},
	}
	directory := &mockDirectoryRepository{
		enrolledFunc: func(ctx context.Context, courseID string) ([]string, error) {
			if courseID != "64d000000000000000000001" {
				t.Fatalf("unexpected course ID %q", courseID)
			}
			return []string{
				"64d000000000000000000011",
				"64d000000000000000000012",
				"64d000000000000000000013",
			}, nil
		},
	}

	svc := newTestService(repo, directory)

	event := &model.FanoutEvent{
		Audience: model.AudienceEnrolled,
		CourseID: "64d000000000000000000001",
		Message:  "A new class session has been added for course Algorithms",
	}
	if err := svc.Fanout(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(inserted) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(inserted))
	}
	for i, n := range inserted {
		if n.Message != event.Message {
			t.Errorf("notification %d carries message %q", i, n.Message)
		}
	}
	if inserted[0].UserID == inserted[1].UserID {
		t.Error("notifications must target distinct recipients")
	}
}

func TestFanout_AllUsersBroadcast(t *testing.T) {
	var insertedCount int

	repo := &mockNotificationRepository{
		insertManyFunc: func(ctx context.Context, notifications []*model.Notification) error {
			insertedCount = len(notifications)
			return nil
		},
	}
	directory := &mockDirectoryRepository{
		allUsersFunc: func(ctx context.Context) ([]string, error) {
			return []string{"64d000000000000000000021", "64d000000000000000000022"}, nil
		},
	}

	svc := newTestService(repo, directory)

	event := &model.FanoutEvent{
		Audience: model.AudienceAllUsers,
		Message:  "A new room 'B-101' has been created in building Science Block",
	}
	if err := svc.Fanout(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insertedCount != 2 {
		t.Fatalf("expected 2 notifications, got %d", insertedCount)
	}
}

func TestFanout_EmptyAudienceIsANoOp(t *testing.T) {
	repo := &mockNotificationRepository{
		insertManyFunc: func(ctx context.Context, notifications []*model.Notification) error {
			t.Fatal("insert must not run for an empty audience")
			return nil
		},
	}

	svc := newTestService(repo, &mockDirectoryRepository{})

	event := &model.FanoutEvent{
		Audience: model.AudienceEnrolled,
		CourseID: "64d000000000000000000001",
		Message:  "A class session for course Algorithms has been updated",
	}
	if err := svc.Fanout(context.Background(), event); err != nil {
		t.Fatalf("empty audience must succeed silently, got %v", err)
	}
}

func TestFanout_UnknownAudienceIsNotRetryable(t *testing.T) {
	svc := newTestService(&mockNotificationRepository{}, &mockDirectoryRepository{})

	event := &model.FanoutEvent{Audience: "faculty", Message: "hello"}
	err := svc.Fanout(context.Background(), event)
	if err == nil {
		t.Fatal("expected error for unknown audience, got nil")
	}
	if apperrors.IsRetryable(err) {
		t.Error("unknown audience must not be retried")
	}
}

func TestFanout_DirectoryFailureIsRetryable(t *testing.T) {
	directory := &mockDirectoryRepository{
		enrolledFunc: func(ctx context.Context, courseID string) ([]string, error) {
			return nil, errors.New("connection reset")
		},
	}

	svc := newTestService(&mockNotificationRepository{}, directory)

	event := &model.FanoutEvent{
		Audience: model.AudienceEnrolled,
		CourseID: "64d000000000000000000001",
		Message:  "A class session for course Algorithms has been deleted",
	}
	err := svc.Fanout(context.Background(), event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.IsRetryable(err) {
		t.Error("directory lookup failures must be retryable")
	}
}

func TestFanout_MissingMessageRejected(t *testing.T) {
	svc := newTestService(&mockNotificationRepository{}, &mockDirectoryRepository{})

	err := svc.Fanout(context.Background(), &model.FanoutEvent{Audience: model.AudienceAllUsers})
	if err == nil {
		t.Fatal("expected error for missing message, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input code, got %v", err)
	}
}
