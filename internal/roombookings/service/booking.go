package service

import (
	"context"
	"errors"
	"sync"

	roombookingerrors "campustime/internal/roombookings/errors"
	"campustime/internal/roombookings/repository"
	"campustime/internal/roombookings/validator"
	"campustime/pkg/config"
	dbmongo "campustime/pkg/db/mongo"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/model"
	"campustime/pkg/sanitizer"
	"campustime/pkg/schedule"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockKind = "roombooking"

type RoomBookingService interface {
	Create(ctx context.Context, booking *model.RoomBooking) error
	GetByID(ctx context.Context, id string) (*model.RoomBooking, error)
	GetAll(ctx context.Context, limit int, offset int) ([]*model.RoomBooking, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomBookingUpdate) error
	Delete(ctx context.Context, id string) error
}

type roomBookingService struct {
	repo      repository.RoomBookingRepository
	timetable repository.TimetableReader
	locker    dbmongo.SlotLocker
	validator *validator.RoomBookingValidator
	cfg       *config.Config
}

func NewRoomBookingService(
	repo repository.RoomBookingRepository,
	timetable repository.TimetableReader,
	locker dbmongo.SlotLocker,
	validator *validator.RoomBookingValidator,
	cfg *config.Config,
) RoomBookingService {
	return &roomBookingService{
		repo:      repo,
		timetable: timetable,
		locker:    locker,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomBookingService) Create(ctx context.Context, booking *model.RoomBooking) error {
	s.sanitize(booking)
	if err := s.validator.Validate(booking); err != nil {
		return apperrors.Validation("Invalid room booking", map[string]any{"error": err.Error()})
	}

	proposed, err := schedule.ParseInterval(booking.StartTime, booking.EndTime)
	if err != nil {
		return apperrors.Validation("Invalid room booking", map[string]any{"error": err.Error()})
	}

	lockID, err := s.locker.Acquire(ctx, lockKind, booking.RoomID, booking.Day)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.locker.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.guard(sessCtx, booking, proposed, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create room booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create room booking", "error", err)
		return err
	}

	s.cfg.Log.Info("Room booking created",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"day", booking.Day,
	)
	return nil
}

func (s *roomBookingService) GetByID(ctx context.Context, id string) (*model.RoomBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roombookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room booking", id)
		}
		if errors.Is(err, roombookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room booking", err)
	}

	return booking, nil
}

func (s *roomBookingService) GetAll(ctx context.Context, limit int, offset int) ([]*model.RoomBooking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	skip := config.NormalizeOffset(int64(offset))

	var count int64
	var bookings []*model.RoomBooking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count room bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count room bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list room bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve room bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *roomBookingService) Update(ctx context.Context, id string, updates *model.RoomBookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roombookingerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room booking", id)
		}
		if errors.Is(err, roombookingerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room booking ID format")
		}
		return apperrors.Internal("Failed to check room booking existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Invalid room booking", map[string]any{"error": err.Error()})
	}

	proposed, err := schedule.ParseInterval(merged.StartTime, merged.EndTime)
	if err != nil {
		return apperrors.Validation("Invalid room booking", map[string]any{"error": err.Error()})
	}

	lockID, err := s.locker.Acquire(ctx, lockKind, merged.RoomID, merged.Day)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.locker.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.guard(sessCtx, merged, proposed, id); err != nil {
			return err
		}
		if _, err := s.repo.Replace(sessCtx, id, merged); err != nil {
			if errors.Is(err, roombookingerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Room booking", id)
			}
			return apperrors.Internal("Failed to update room booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update room booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Room booking updated", "id", id)
	return nil
}

func (s *roomBookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roombookingerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room booking", id)
		}
		if errors.Is(err, roombookingerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room booking ID format")
		}
		return apperrors.Internal("Failed to delete room booking", err)
	}

	s.cfg.Log.Info("Room booking deleted", "id", id)
	return nil
}

// guard enforces both invariants for a proposed booking. The timetable
// check runs first: the fixed schedule is authoritative over ad-hoc
// bookings, so a timetable conflict is reported even when no other
// booking exists.
func (s *roomBookingService) guard(ctx context.Context, booking *model.RoomBooking, proposed schedule.Interval, excludeID string) error {
	sessions, err := s.timetable.FindByLocationAndDay(ctx, booking.RoomID, booking.Day)
	if err != nil {
		return apperrors.Internal("Failed to query timetable", err)
	}

	sessionOccupants := make([]schedule.Occupant, 0, len(sessions))
	for _, session := range sessions {
		interval, err := schedule.ParseInterval(session.StartTime, session.EndTime)
		if err != nil {
			s.cfg.Log.Warn("Skipping timetable entry with unparseable interval",
				"id", session.ID, "start_time", session.StartTime, "end_time", session.EndTime)
			continue
		}
		sessionOccupants = append(sessionOccupants, schedule.Occupant{
			ID:          session.ID,
			ResourceKey: session.Location,
			Day:         session.Day,
			Interval:    interval,
			Label:       "A class session",
		})
	}

	// A session never shares an ID with a booking, so no exclusion here.
	if conflict := schedule.Check(proposed, sessionOccupants, ""); conflict != nil {
		return apperrors.Conflict("Room is already allocated in the timetable during the specified time").WithDetails(map[string]any{
			"conflicting_id": conflict.Occupant.ID,
			"day":            conflict.Occupant.Day,
			"interval":       conflict.Occupant.Interval.String(),
		})
	}

	bookings, err := s.repo.FindByRoomAndDay(ctx, booking.RoomID, booking.Day)
	if err != nil {
		return apperrors.Internal("Failed to query committed bookings", err)
	}

	bookingOccupants := make([]schedule.Occupant, 0, len(bookings))
	for _, other := range bookings {
		interval, err := schedule.ParseInterval(other.StartTime, other.EndTime)
		if err != nil {
			s.cfg.Log.Warn("Skipping stored booking with unparseable interval",
				"id", other.ID, "start_time", other.StartTime, "end_time", other.EndTime)
			continue
		}
		bookingOccupants = append(bookingOccupants, schedule.Occupant{
			ID:          other.ID,
			ResourceKey: other.RoomID,
			Day:         other.Day,
			Interval:    interval,
			Label:       "A room booking",
		})
	}

	if conflict := schedule.Check(proposed, bookingOccupants, excludeID); conflict != nil {
		return apperrors.Conflict("There is a conflicting booking at the same time").WithDetails(map[string]any{
			"conflicting_id": conflict.Occupant.ID,
			"day":            conflict.Occupant.Day,
			"interval":       conflict.Occupant.Interval.String(),
		})
	}

	return nil
}

func (s *roomBookingService) sanitize(booking *model.RoomBooking) {
	booking.UserID = sanitizer.TrimAndNormalize(booking.UserID)
	booking.RoomID = sanitizer.TrimAndNormalize(booking.RoomID)
	booking.Reason = sanitizer.NormalizeReason(booking.Reason)
	booking.Day = sanitizer.NormalizeDay(booking.Day)
	booking.StartTime = sanitizer.TrimAndNormalize(booking.StartTime)
	booking.EndTime = sanitizer.TrimAndNormalize(booking.EndTime)
}

func (s *roomBookingService) merge(existing *model.RoomBooking, updates *model.RoomBookingUpdate) *model.RoomBooking {
	merged := *existing

	if updates.UserID != "" {
		merged.UserID = updates.UserID
	}
	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.Reason != "" {
		merged.Reason = updates.Reason
	}
	if updates.Day != "" {
		merged.Day = updates.Day
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}

	return &merged
}
