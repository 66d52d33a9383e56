package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	timetableerrors "campustime/internal/timetable/errors"
	"campustime/internal/timetable/validator"
	"campustime/pkg/config"
	mongotx "campustime/pkg/db/mongo"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/kafka"
	"campustime/pkg/logger"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testCourseID  = "64a000000000000000000001"
	testFacultyID = "64a000000000000000000002"
	testRoomID    = "64a000000000000000000003"
)

type mockSessionRepository struct {
	createFunc              func(ctx context.Context, session *model.ClassSession) error
	findByIDFunc            func(ctx context.Context, id string) (*model.ClassSession, error)
	findAllFunc             func(ctx context.Context, limit int, offset int64) ([]*model.ClassSession, error)
	countFunc               func(ctx context.Context) (int64, error)
	findByScopeFunc         func(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error)
	findByCourseAndWeekFunc func(ctx context.Context, courseID string, week int) ([]*model.ClassSession, error)
	findByLocationFunc      func(ctx context.Context, location string, day string) ([]*model.ClassSession, error)
	replaceFunc             func(ctx context.Context, id string, session *model.ClassSession) (*mongo.UpdateResult, error)
	deleteFunc              func(ctx context.Context, id string) error
}

func (m *mockSessionRepository) Create(ctx context.Context, session *model.ClassSession) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.ClassSession, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ClassSession, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.ClassSession{}, nil
}

func (m *mockSessionRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockSessionRepository) FindByScope(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error) {
	if m.findByScopeFunc != nil {
		return m.findByScopeFunc(ctx, courseID, week, day)
	}
	return []*model.ClassSession{}, nil
}

func (m *mockSessionRepository) FindByCourseAndWeek(ctx context.Context, courseID string, week int) ([]*model.ClassSession, error) {
	if m.findByCourseAndWeekFunc != nil {
		return m.findByCourseAndWeekFunc(ctx, courseID, week)
	}
	return []*model.ClassSession{}, nil
}

func (m *mockSessionRepository) FindByLocationAndDay(ctx context.Context, location string, day string) ([]*model.ClassSession, error) {
	if m.findByLocationFunc != nil {
		return m.findByLocationFunc(ctx, location, day)
	}
	return []*model.ClassSession{}, nil
}

func (m *mockSessionRepository) Replace(ctx context.Context, id string, session *model.ClassSession) (*mongo.UpdateResult, error) {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, id, session)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockCourseRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Course, error)
}

func (m *mockCourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Course{ID: id, CourseName: "Algorithms"}, nil
}

type mockSlotLocker struct {
	acquireFunc func(ctx context.Context, kind, resourceKey, day string) (string, error)
	releaseFunc func(ctx context.Context, lockID string) error
}

func (m *mockSlotLocker) Acquire(ctx context.Context, kind, resourceKey, day string) (string, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, kind, resourceKey, day)
	}
	return "lock-1", nil
}

func (m *mockSlotLocker) Release(ctx context.Context, lockID string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, lockID)
	}
	return nil
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.LevelError,
			Format:  logger.FormatJSON,
			Output:  io.Discard,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockSessionRepository, courses *mockCourseRepository, publisher *mockPublisher) SessionService {
	cfg := testConfig()
	return NewSessionService(
		repo,
		courses,
		&mockSlotLocker{},
		validator.NewSessionValidator(cfg.Log),
		publisher,
		cfg,
	)
}

func validSession() *model.ClassSession {
	return &model.ClassSession{
		CourseID:  testCourseID,
		Week:      12,
		Day:       "Monday",
		StartTime: "11:00",
		EndTime:   "13:00",
		FacultyID: testFacultyID,
		Location:  testRoomID,
	}
}

func TestCreate_RejectsOverlapInScope(t *testing.T) {
	repo := &mockSessionRepository{
		findByScopeFunc: func(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error) {
			return []*model.ClassSession{
				{ID: "64a0000000000000000000aa", CourseID: courseID, Week: week, Day: day, StartTime: "10:00", EndTime: "12:00"},
			}, nil
		},
		createFunc: func(ctx context.Context, session *model.ClassSession) error {
			t.Fatal("create must not run when the guard rejects")
			return nil
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(repo, &mockCourseRepository{}, publisher)

	err := svc.Create(context.Background(), validSession())
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("expected no fanout on conflict, got %d messages", len(publisher.published))
	}
}

func TestCreate_TouchingBoundaryIsNotAConflict(t *testing.T) {
	repo := &mockSessionRepository{
		findByScopeFunc: func(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error) {
			return []*model.ClassSession{
				{ID: "64a0000000000000000000aa", CourseID: courseID, Week: week, Day: day, StartTime: "09:00", EndTime: "11:00"},
			}, nil
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(repo, &mockCourseRepository{}, publisher)

	if err := svc.Create(context.Background(), validSession()); err != nil {
		t.Fatalf("expected touching boundary to be accepted, got %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one fanout message, got %d", len(publisher.published))
	}

	var event model.FanoutEvent
	if err := publisher.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode fanout event: %v", err)
	}
	if event.Audience != model.AudienceEnrolled {
		t.Errorf("expected enrolled audience, got %q", event.Audience)
	}
	if event.CourseID != testCourseID {
		t.Errorf("expected course ID %q, got %q", testCourseID, event.CourseID)
	}
	if !strings.Contains(event.Message, "Algorithms") {
		t.Errorf("expected message to name the course, got %q", event.Message)
	}
}

func TestUpdate_ExcludesItself(t *testing.T) {
	sessionID := "64a0000000000000000000bb"
	stored := validSession()
	stored.ID = sessionID
	stored.StartTime = "10:00"
	stored.EndTime = "12:00"

	repo := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ClassSession, error) {
			dup := *stored
			return &dup, nil
		},
		findByScopeFunc: func(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error) {
			dup := *stored
			return []*model.ClassSession{&dup}, nil
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(repo, &mockCourseRepository{}, publisher)

	// Shift within the window the session itself occupies.
	updates := &model.ClassSessionUpdate{StartTime: "10:30", EndTime: "11:30"}
	if err := svc.Update(context.Background(), sessionID, updates); err != nil {
		t.Fatalf("expected self-overlap to be excluded, got %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected fanout on update, got %d messages", len(publisher.published))
	}
	if got := publisher.published[0].GetEventType(); got != model.EventSessionUpdated {
		t.Errorf("expected event type %q, got %q", model.EventSessionUpdated, got)
	}
}

func TestUpdate_ConflictsWithOtherSession(t *testing.T) {
	sessionID := "64a0000000000000000000bb"
	stored := validSession()
	stored.ID = sessionID
	stored.StartTime = "10:00"
	stored.EndTime = "11:00"

	repo := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ClassSession, error) {
			dup := *stored
			return &dup, nil
		},
		findByScopeFunc: func(ctx context.Context, courseID string, week int, day string) ([]*model.ClassSession, error) {
			self := *stored
			other := *stored
			other.ID = "64a0000000000000000000cc"
			other.StartTime = "11:00"
			other.EndTime = "12:00"
			return []*model.ClassSession{&self, &other}, nil
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(repo, &mockCourseRepository{}, publisher)

	updates := &model.ClassSessionUpdate{StartTime: "10:30", EndTime: "11:30"}
	err := svc.Update(context.Background(), sessionID, updates)
	if err == nil {
		t.Fatal("expected conflict with the other session, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("expected no fanout on rejected update, got %d messages", len(publisher.published))
	}
}

func TestDelete_MissingSessionNotifiesNobody(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ClassSession, error) {
			return nil, timetableerrors.ErrNotFound
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(repo, &mockCourseRepository{}, publisher)

	err := svc.Delete(context.Background(), "64a0000000000000000000dd")
	if err == nil {
		t.Fatal("expected not found error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("expected no fanout for missing session, got %d messages", len(publisher.published))
	}
}

func TestDelete_FansOutToEnrolledUsers(t *testing.T) {
	stored := validSession()
	stored.ID = "64a0000000000000000000ee"

	repo := &mockSessionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ClassSession, error) {
			dup := *stored
			return &dup, nil
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(repo, &mockCourseRepository{}, publisher)

	if err := svc.Delete(context.Background(), stored.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one fanout message, got %d", len(publisher.published))
	}
	var event model.FanoutEvent
	if err := publisher.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode fanout event: %v", err)
	}
	if event.Audience != model.AudienceEnrolled {
		t.Errorf("expected enrolled audience, got %q", event.Audience)
	}
	if !strings.Contains(event.Message, "has been deleted") {
		t.Errorf("expected deletion wording, got %q", event.Message)
	}
}

func TestCreate_SlotLockContentionIsTransient(t *testing.T) {
	repo := &mockSessionRepository{}
	publisher := &mockPublisher{}
	cfg := testConfig()

	svc := NewSessionService(
		repo,
		&mockCourseRepository{},
		&mockSlotLocker{
			acquireFunc: func(ctx context.Context, kind, resourceKey, day string) (string, error) {
				return "", apperrors.Transient("this slot is being modified by another request, retry shortly", nil)
			},
		},
		validator.NewSessionValidator(cfg.Log),
		publisher,
		cfg,
	)

	err := svc.Create(context.Background(), validSession())
	if err == nil {
		t.Fatal("expected transient error, got nil")
	}
	if !apperrors.IsRetryable(err) {
		t.Fatalf("lock contention must be retryable, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeConflict {
		t.Fatal("lock contention must not surface as an allocation conflict")
	}
}
