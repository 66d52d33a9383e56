package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	roomerrors "campustime/internal/rooms/errors"
	"campustime/internal/rooms/validator"
	"campustime/pkg/config"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/kafka"
	"campustime/pkg/logger"
	"campustime/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const testRoomID = "64e000000000000000000001"

type mockRoomRepository struct {
	createFunc   func(ctx context.Context, room *model.Room) error
	findByIDFunc func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFunc    func(ctx context.Context) (int64, error)
	replaceFunc  func(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = testRoomID
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, roomerrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomRepository) Replace(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, id, room)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return roomerrors.ErrNotFound
}

type mockPublisher struct {
	published []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
}

func newTestService(repo *mockRoomRepository, publisher *mockPublisher) RoomService {
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
	return NewRoomService(repo, validator.NewRoomValidator(cfg.Log), publisher, cfg)
}

func validRoom() *model.Room {
	return &model.Room{
		RoomName: "B-101",
		Building: "Science Block",
		Floor:    1,
		Capacity: 60,
	}
}

func TestCreate_BroadcastsToAllUsers(t *testing.T) {
	publisher := &mockPublisher{}
	svc := newTestService(&mockRoomRepository{}, publisher)

	if err := svc.Create(context.Background(), validRoom()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 fanout message, got %d", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.GetEventType() != model.EventRoomCreated {
		t.Errorf("unexpected event type %q", msg.GetEventType())
	}

	var event model.FanoutEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("undecodable fanout payload: %v", err)
	}
	if event.Audience != model.AudienceAllUsers {
		t.Errorf("room events must broadcast, got audience %q", event.Audience)
	}
	if !strings.Contains(event.Message, "B-101") || !strings.Contains(event.Message, "Science Block") {
		t.Errorf("message must name the room and building, got %q", event.Message)
	}
}

func TestCreate_InvalidRoomDoesNotBroadcast(t *testing.T) {
	publisher := &mockPublisher{}
	svc := newTestService(&mockRoomRepository{}, publisher)

	room := validRoom()
	room.Capacity = 0

	err := svc.Create(context.Background(), room)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Error("rejected create must not fan out")
	}
}

func TestDelete_MissingRoomNotifiesNobody(t *testing.T) {
	publisher := &mockPublisher{}
	svc := newTestService(&mockRoomRepository{}, publisher)

	err := svc.Delete(context.Background(), testRoomID)
	if err == nil {
		t.Fatal("expected not found, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Error("a missing room must not fan out")
	}
}

func TestDelete_BroadcastNamesTheDeletedRoom(t *testing.T) {
	stored := validRoom()
	stored.ID = testRoomID

	publisher := &mockPublisher{}
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			dup := *stored
			return &dup, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	svc := newTestService(repo, publisher)

	if err := svc.Delete(context.Background(), testRoomID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 fanout message, got %d", len(publisher.published))
	}
	var event model.FanoutEvent
	if err := publisher.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("undecodable fanout payload: %v", err)
	}
	if !strings.Contains(event.Message, "has been deleted") || !strings.Contains(event.Message, "B-101") {
		t.Errorf("unexpected broadcast message %q", event.Message)
	}
}

func TestUpdate_MergeKeepsUnsetFields(t *testing.T) {
	stored := validRoom()
	stored.ID = testRoomID

	var replaced *model.Room
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			dup := *stored
			return &dup, nil
		},
		replaceFunc: func(ctx context.Context, id string, room *model.Room) (*mongo.UpdateResult, error) {
			replaced = room
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(repo, &mockPublisher{})

	capacity := 80
	updates := &model.RoomUpdate{Capacity: &capacity}
	if err := svc.Update(context.Background(), testRoomID, updates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if replaced == nil {
		t.Fatal("replace never ran")
	}
	if replaced.Capacity != 80 {
		t.Errorf("capacity not applied, got %d", replaced.Capacity)
	}
	if replaced.RoomName != "B-101" || replaced.Building != "Science Block" {
		t.Errorf("unset fields must survive the merge, got %+v", replaced)
	}
}
