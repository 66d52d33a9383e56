package service

import (
	"context"
	"errors"
	"sync"

	resourcebookingerrors "campustime/internal/resourcebookings/errors"
	"campustime/internal/resourcebookings/repository"
	"campustime/internal/resourcebookings/validator"
	"campustime/pkg/config"
	dbmongo "campustime/pkg/db/mongo"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/model"
	"campustime/pkg/sanitizer"
	"campustime/pkg/schedule"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockKind = "resourcebooking"

type ResourceBookingService interface {
	Create(ctx context.Context, booking *model.ResourceBooking) error
	GetByID(ctx context.Context, id string) (*model.ResourceBooking, error)
	GetAll(ctx context.Context, limit int, offset int) ([]*model.ResourceBooking, int64, error)
	Update(ctx context.Context, id string, updates *model.ResourceBookingUpdate) error
	Delete(ctx context.Context, id string) error
}

type resourceBookingService struct {
	repo      repository.ResourceBookingRepository
	locker    dbmongo.SlotLocker
	validator *validator.ResourceBookingValidator
	cfg       *config.Config
}

func NewResourceBookingService(
	repo repository.ResourceBookingRepository,
	locker dbmongo.SlotLocker,
	validator *validator.ResourceBookingValidator,
	cfg *config.Config,
) ResourceBookingService {
	return &resourceBookingService{
		repo:      repo,
		locker:    locker,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *resourceBookingService) Create(ctx context.Context, booking *model.ResourceBooking) error {
	s.sanitize(booking)
	if err := s.validator.Validate(booking); err != nil {
		return apperrors.Validation("Invalid resource booking", map[string]any{"error": err.Error()})
	}

	proposed, err := schedule.ParseInterval(booking.StartTime, booking.EndTime)
	if err != nil {
		return apperrors.Validation("Invalid resource booking", map[string]any{"error": err.Error()})
	}

	lockID, err := s.locker.Acquire(ctx, lockKind, booking.ResourceID, booking.Day)
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
			return apperrors.Internal("Failed to create resource booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create resource booking", "error", err)
		return err
	}

	s.cfg.Log.Info("Resource booking created",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"day", booking.Day,
	)
	return nil
}

func (s *resourceBookingService) GetByID(ctx context.Context, id string) (*model.ResourceBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourcebookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource booking", id)
		}
		if errors.Is(err, resourcebookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve resource booking", err)
	}

	return booking, nil
}

func (s *resourceBookingService) GetAll(ctx context.Context, limit int, offset int) ([]*model.ResourceBooking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	skip := config.NormalizeOffset(int64(offset))

	var count int64
	var bookings []*model.ResourceBooking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count resource bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count resource bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list resource bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve resource bookings", errFind)
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

func (s *resourceBookingService) Update(ctx context.Context, id string, updates *model.ResourceBookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Resource booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourcebookingerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Resource booking", id)
		}
		if errors.Is(err, resourcebookingerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource booking ID format")
		}
		return apperrors.Internal("Failed to check resource booking existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Resource booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Invalid resource booking", map[string]any{"error": err.Error()})
	}

	proposed, err := schedule.ParseInterval(merged.StartTime, merged.EndTime)
	if err != nil {
		return apperrors.Validation("Invalid resource booking", map[string]any{"error": err.Error()})
	}

	lockID, err := s.locker.Acquire(ctx, lockKind, merged.ResourceID, merged.Day)
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
			if errors.Is(err, resourcebookingerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Resource booking", id)
			}
			return apperrors.Internal("Failed to update resource booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update resource booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Resource booking updated", "id", id)
	return nil
}

func (s *resourceBookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Resource booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, resourcebookingerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Resource booking", id)
		}
		if errors.Is(err, resourcebookingerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource booking ID format")
		}
		return apperrors.Internal("Failed to delete resource booking", err)
	}

	s.cfg.Log.Info("Resource booking deleted", "id", id)
	return nil
}

// guard checks the own-kind scope only; the resource keyspace has no
// cross-resource constraints.
func (s *resourceBookingService) guard(ctx context.Context, booking *model.ResourceBooking, proposed schedule.Interval, excludeID string) error {
	existing, err := s.repo.FindByResourceAndDay(ctx, booking.ResourceID, booking.Day)
	if err != nil {
		return apperrors.Internal("Failed to query committed bookings", err)
	}

	occupants := make([]schedule.Occupant, 0, len(existing))
	for _, other := range existing {
		interval, err := schedule.ParseInterval(other.StartTime, other.EndTime)
		if err != nil {
			s.cfg.Log.Warn("Skipping stored booking with unparseable interval",
				"id", other.ID, "start_time", other.StartTime, "end_time", other.EndTime)
			continue
		}
		occupants = append(occupants, schedule.Occupant{
			ID:          other.ID,
			ResourceKey: other.ResourceID,
			Day:         other.Day,
			Interval:    interval,
			Label:       "A resource booking",
		})
	}

	if conflict := schedule.Check(proposed, occupants, excludeID); conflict != nil {
		return apperrors.Conflict("Resource already booked for the same day and time range").WithDetails(map[string]any{
			"conflicting_id": conflict.Occupant.ID,
			"day":            conflict.Occupant.Day,
			"interval":       conflict.Occupant.Interval.String(),
		})
	}
	return nil
}

func (s *resourceBookingService) sanitize(booking *model.ResourceBooking) {
	booking.UserID = sanitizer.TrimAndNormalize(booking.UserID)
	booking.ResourceID = sanitizer.TrimAndNormalize(booking.ResourceID)
	booking.Reason = sanitizer.NormalizeReason(booking.Reason)
	booking.Day = sanitizer.NormalizeDay(booking.Day)
	booking.StartTime = sanitizer.TrimAndNormalize(booking.StartTime)
	booking.EndTime = sanitizer.TrimAndNormalize(booking.EndTime)
}

func (s *resourceBookingService) merge(existing *model.ResourceBooking, updates *model.ResourceBookingUpdate) *model.ResourceBooking {
	merged := *existing

	if updates.UserID != "" {
		merged.UserID = updates.UserID
	}
	if updates.ResourceID != "" {
		merged.ResourceID = updates.ResourceID
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
