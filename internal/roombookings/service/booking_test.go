package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	roombookingerrors "campustime/internal/roombookings/errors"
	"campustime/internal/roombookings/validator"
	"campustime/pkg/config"
	mongotx "campustime/pkg/db/mongo"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/logger"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testUserID = "64b000000000000000000001"
	testRoomID = "64b000000000000000000002"
)

type mockRoomBookingRepository struct {
	createFunc           func(ctx context.Context, booking *model.RoomBooking) error
	findByIDFunc         func(ctx context.Context, id string) (*model.RoomBooking, error)
	findAllFunc          func(ctx context.Context, limit int, offset int64) ([]*model.RoomBooking, error)
	countFunc            func(ctx context.Context) (int64, error)
	findByRoomAndDayFunc func(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error)
	replaceFunc          func(ctx context.Context, id string, booking *model.RoomBooking) (*mongo.UpdateResult, error)
	deleteFunc           func(ctx context.Context, id string) error
}

func (m *mockRoomBookingRepository) Create(ctx context.Context, booking *model.RoomBooking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockRoomBookingRepository) FindByID(ctx context.Context, id string) (*model.RoomBooking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, roombookingerrors.ErrNotFound
}

func (m *mockRoomBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.RoomBooking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.RoomBooking{}, nil
}

func (m *mockRoomBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomBookingRepository) FindByRoomAndDay(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error) {
	if m.findByRoomAndDayFunc != nil {
		return m.findByRoomAndDayFunc(ctx, roomID, day)
	}
	return []*model.RoomBooking{}, nil
}

func (m *mockRoomBookingRepository) Replace(ctx context.Context, id string, booking *model.RoomBooking) (*mongo.UpdateResult, error) {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, id, booking)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockRoomBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return roombookingerrors.ErrNotFound
}

func (m *mockRoomBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockTimetableReader struct {
	findByLocationFunc func(ctx context.Context, location string, day string) ([]*model.ClassSession, error)
}

func (m *mockTimetableReader) FindByLocationAndDay(ctx context.Context, location string, day string) ([]*model.ClassSession, error) {
	if m.findByLocationFunc != nil {
		return m.findByLocationFunc(ctx, location, day)
	}
	return []*model.ClassSession{}, nil
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

func newTestService(repo *mockRoomBookingRepository, timetable *mockTimetableReader) RoomBookingService {
	cfg := testConfig()
	return NewRoomBookingService(
		repo,
		timetable,
		&mockSlotLocker{},
		validator.NewRoomBookingValidator(cfg.Log),
		cfg,
	)
}

func validBooking(start, end string) *model.RoomBooking {
	return &model.RoomBooking{
		UserID:    testUserID,
		RoomID:    testRoomID,
		Reason:    "Study group",
		Day:       "Monday",
		StartTime: start,
		EndTime:   end,
	}
}

func TestCreate_TimetableIsAuthoritative(t *testing.T) {
	ownKindQueried := false

	timetable := &mockTimetableReader{
		findByLocationFunc: func(ctx context.Context, location string, day string) ([]*model.ClassSession, error) {
			return []*model.ClassSession{
				{ID: "64b0000000000000000000aa", Location: location, Day: day, StartTime: "09:00", EndTime: "10:00"},
			}, nil
		},
	}
	repo := &mockRoomBookingRepository{
		findByRoomAndDayFunc: func(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error) {
			ownKindQueried = true
			return []*model.RoomBooking{}, nil
		},
		createFunc: func(ctx context.Context, booking *model.RoomBooking) error {
			t.Fatal("create must not run when the timetable blocks the room")
			return nil
		},
	}

	svc := newTestService(repo, timetable)

	err := svc.Create(context.Background(), validBooking("09:30", "10:30"))
	if err == nil {
		t.Fatal("expected timetable conflict, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
	if !strings.Contains(appErr.Message, "timetable") {
		t.Errorf("expected the conflict to cite the timetable, got %q", appErr.Message)
	}
	if ownKindQueried {
		t.Error("own-kind bookings must not be consulted once the timetable rejects")
	}
}

func TestCreate_ConflictingBookingRejected(t *testing.T) {
	repo := &mockRoomBookingRepository{
		findByRoomAndDayFunc: func(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error) {
			return []*model.RoomBooking{
				{ID: "64b0000000000000000000bb", RoomID: roomID, Day: day, StartTime: "10:00", EndTime: "12:00"},
			}, nil
		},
	}

	svc := newTestService(repo, &mockTimetableReader{})

	err := svc.Create(context.Background(), validBooking("11:00", "13:00"))
	if err == nil {
		t.Fatal("expected booking conflict, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestCreate_DifferentDayDoesNotConflict(t *testing.T) {
	// Scoped queries make day isolation structural: a Tuesday booking
	// never shows up when Monday is queried.
	repo := &mockRoomBookingRepository{
		findByRoomAndDayFunc: func(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error) {
			if day != "Monday" {
				t.Fatalf("expected scoped query for Monday, got %q", day)
			}
			return []*model.RoomBooking{}, nil
		},
	}

	svc := newTestService(repo, &mockTimetableReader{})

	if err := svc.Create(context.Background(), validBooking("10:00", "12:00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Exercises the full lifecycle against an in-memory store: create,
// conflicting create, shrink via update excluding self, delete, and
// re-create in the freed window.
func TestLifecycle_CreateConflictShrinkDeleteRecreate(t *testing.T) {
	store := map[string]*model.RoomBooking{}
	nextID := 0

	repo := &mockRoomBookingRepository{
		createFunc: func(ctx context.Context, booking *model.RoomBooking) error {
			nextID++
			booking.ID = map[int]string{
				1: "64b0000000000000000000c1",
				2: "64b0000000000000000000c2",
				3: "64b0000000000000000000c3",
			}[nextID]
			dup := *booking
			store[booking.ID] = &dup
			return nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.RoomBooking, error) {
			if b, ok := store[id]; ok {
				dup := *b
				return &dup, nil
			}
			return nil, roombookingerrors.ErrNotFound
		},
		findByRoomAndDayFunc: func(ctx context.Context, roomID string, day string) ([]*model.RoomBooking, error) {
			var out []*model.RoomBooking
			for _, b := range store {
				if b.RoomID == roomID && b.Day == day {
					dup := *b
					out = append(out, &dup)
				}
			}
			return out, nil
		},
		replaceFunc: func(ctx context.Context, id string, booking *model.RoomBooking) (*mongo.UpdateResult, error) {
			if _, ok := store[id]; !ok {
				return nil, roombookingerrors.ErrNotFound
			}
			dup := *booking
			dup.ID = id
			store[id] = &dup
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			if _, ok := store[id]; !ok {
				return roombookingerrors.ErrNotFound
			}
			delete(store, id)
			return nil
		},
	}

	svc := newTestService(repo, &mockTimetableReader{})
	ctx := context.Background()

	first := validBooking("10:00", "12:00")
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("initial create failed: %v", err)
	}

	second := validBooking("11:00", "13:00")
	err := svc.Create(ctx, second)
	if err == nil {
		t.Fatal("overlapping create must be rejected")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}

	// Shrinking the surviving booking overlaps only itself.
	updates := &model.RoomBookingUpdate{StartTime: "10:00", EndTime: "11:00"}
	if err := svc.Update(ctx, first.ID, updates); err != nil {
		t.Fatalf("shrink update failed: %v", err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	third := validBooking("10:30", "11:30")
	if err := svc.Create(ctx, third); err != nil {
		t.Fatalf("re-create in freed window failed: %v", err)
	}
}

func TestDelete_Missing(t *testing.T) {
	svc := newTestService(&mockRoomBookingRepository{}, &mockTimetableReader{})

	err := svc.Delete(context.Background(), "64b0000000000000000000dd")
	if err == nil {
		t.Fatal("expected not found, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}
