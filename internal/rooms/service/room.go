package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	roomerrors "campustime/internal/rooms/errors"
	"campustime/internal/rooms/repository"
	"campustime/internal/rooms/validator"
	"campustime/pkg/config"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/kafka"
	"campustime/pkg/middleware"
	"campustime/pkg/model"
	"campustime/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
}

type fanoutPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	publisher fanoutPublisher
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	publisher fanoutPublisher,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.sanitize(room)
	if err := s.validator.Validate(room); err != nil {
		return apperrors.Validation("Invalid room", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "room_name", room.RoomName, "building", room.Building)

	s.fanout(ctx, model.EventRoomCreated, room.ID,
		fmt.Sprintf("A new room '%s' has been created in building %s", room.RoomName, room.Building))
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int) ([]*model.Room, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	skip := config.NormalizeOffset(int64(offset))

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return apperrors.Internal("Failed to check room existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Invalid room", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Replace(ctx, id, merged); err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated", "id", id)

	s.fanout(ctx, model.EventRoomUpdated, id,
		fmt.Sprintf("Room '%s' in building %s has been updated", merged.RoomName, merged.Building))
	return nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	// Fetch first so the broadcast can name the deleted room.
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return apperrors.Internal("Failed to check room existence", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to delete room", "id", id, "error", err)
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted", "id", id, "room_name", existing.RoomName)

	s.fanout(ctx, model.EventRoomDeleted, id,
		fmt.Sprintf("Room '%s' in building %s has been deleted", existing.RoomName, existing.Building))
	return nil
}

// fanout broadcasts to every registered user, post-commit and
// fire-and-forget.
func (s *roomService) fanout(ctx context.Context, eventType, roomID, message string) {
	event := model.FanoutEvent{
		Audience: model.AudienceAllUsers,
		Message:  message,
	}

	msg := kafka.NewMessage().
		WithKey(roomID).
		WithValue(event).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSource("rooms-service").
		Build()

	if err := s.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		s.cfg.Log.Error("Failed to publish fanout event",
			"event_type", eventType,
			"room_id", roomID,
			"error", err,
		)
	}
}

func (s *roomService) sanitize(room *model.Room) {
	room.RoomName = sanitizer.NormalizeName(room.RoomName)
	room.Building = sanitizer.NormalizeName(room.Building)
}

func (s *roomService) merge(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.RoomName != "" {
		merged.RoomName = updates.RoomName
	}
	if updates.Building != "" {
		merged.Building = updates.Building
	}
	if updates.Floor != nil {
		merged.Floor = *updates.Floor
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}

	return &merged
}
