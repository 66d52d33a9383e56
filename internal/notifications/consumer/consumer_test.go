package consumer

import (
	"context"
	"errors"
	"io"
	"testing"

	apperrors "campustime/pkg/errors"
	"campustime/pkg/kafka"
	"campustime/pkg/logger"
	"campustime/pkg/model"
)

type mockNotificationService struct {
	fanoutFunc func(ctx context.Context, event *model.FanoutEvent) error
}

func (m *mockNotificationService) Fanout(ctx context.Context, event *model.FanoutEvent) error {
	if m.fanoutFunc != nil {
		return m.fanoutFunc(ctx, event)
	}
	return nil
}

func (m *mockNotificationService) GetByUser(ctx context.Context, userID string, limit int, offset int) ([]*model.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationService) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	return nil, nil
}

func (m *mockNotificationService) Delete(ctx context.Context, id string) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatJSON,
		Output:  io.Discard,
		Service: "test",
	})
}

func fanoutMessage(t *testing.T, event *model.FanoutEvent) kafka.Message {
	t.Helper()
	return kafka.NewMessage().
		WithKey("64d000000000000000000001").
		WithValue(event).
		WithEventType(model.EventSessionCreated).
		Build()
}

func TestHandle_DeliversDecodedEvent(t *testing.T) {
	var got *model.FanoutEvent
	svc := &mockNotificationService{
		fanoutFunc: func(ctx context.Context, event *model.FanoutEvent) error {
			got = event
			return nil
		},
	}

	h := NewFanoutHandler(svc, testLogger())

	event := &model.FanoutEvent{
		Audience: model.AudienceEnrolled,
		CourseID: "64d000000000000000000001",
		Message:  "A new class session has been added for course Algorithms",
	}
	if err := h.Handle(context.Background(), fanoutMessage(t, event)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got == nil {
		t.Fatal("service never received the event")
	}
	if got.Audience != event.Audience || got.CourseID != event.CourseID || got.Message != event.Message {
		t.Errorf("decoded event mismatch: %+v", got)
	}
}

func TestHandle_UndecodablePayloadIsPermanent(t *testing.T) {
	h := NewFanoutHandler(&mockNotificationService{
		fanoutFunc: func(ctx context.Context, event *model.FanoutEvent) error {
			t.Fatal("service must not run on a decode failure")
			return nil
		},
	}, testLogger())

	msg := kafka.NewMessage().WithKey("k").Build()
	msg.Value = []byte("{not json")

	err := h.Handle(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Errorf("decode failures must be permanent, got %v", err)
	}
}

func TestHandle_RetryableServiceErrorIsTransient(t *testing.T) {
	svc := &mockNotificationService{
		fanoutFunc: func(ctx context.Context, event *model.FanoutEvent) error {
			return apperrors.Transient("Failed to resolve enrolled users", errors.New("connection reset"))
		},
	}

	h := NewFanoutHandler(svc, testLogger())

	event := &model.FanoutEvent{Audience: model.AudienceEnrolled, CourseID: "64d000000000000000000001", Message: "m"}
	err := h.Handle(context.Background(), fanoutMessage(t, event))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kafka.ClassifyError(err) != kafka.ErrorTypeTransient {
		t.Errorf("retryable service errors must map to transient, got %v", err)
	}
}

func TestHandle_RejectedEventIsPermanent(t *testing.T) {
	svc := &mockNotificationService{
		fanoutFunc: func(ctx context.Context, event *model.FanoutEvent) error {
			return apperrors.InvalidInput("unknown notification audience: faculty")
		},
	}

	h := NewFanoutHandler(svc, testLogger())

	event := &model.FanoutEvent{Audience: "faculty", Message: "m"}
	err := h.Handle(context.Background(), fanoutMessage(t, event))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Errorf("rejected events must map to permanent, got %v", err)
	}
}
