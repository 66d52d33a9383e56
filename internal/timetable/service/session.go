package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	timetableerrors "campustime/internal/timetable/errors"
	"campustime/internal/timetable/repository"
	"campustime/internal/timetable/validator"
	"campustime/pkg/config"
	dbmongo "campustime/pkg/db/mongo"
	apperrors "campustime/pkg/errors"
	"campustime/pkg/kafka"
	"campustime/pkg/middleware"
	"campustime/pkg/model"
	"campustime/pkg/sanitizer"
	"campustime/pkg/schedule"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockKind = "session"

type SessionService interface {
	Create(ctx context.Context, session *model.ClassSession) error
	GetByID(ctx context.Context, id string) (*model.ClassSession, error)
	GetAll(ctx context.Context, limit int, offset int) ([]*model.ClassSession, int64, error)
	GetByCourseAndWeek(ctx context.Context, courseID string, week int) ([]*model.ClassSession, error)
	Update(ctx context.Context, id string, updates *model.ClassSessionUpdate) error
	Delete(ctx context.Context, id string) error
}

// fanoutPublisher is the slice of the Kafka producer the service needs.
type fanoutPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type sessionService struct {
	repo      repository.SessionRepository
	courses   repository.CourseRepository
	locker    dbmongo.SlotLocker
	validator *validator.SessionValidator
	publisher fanoutPublisher
	cfg       *config.Config
}

func NewSessionService(
	repo repository.SessionRepository,
	courses repository.CourseRepository,
	locker dbmongo.SlotLocker,
	validator *validator.SessionValidator,
	publisher fanoutPublisher,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		repo:      repo,
		courses:   courses,
		locker:    locker,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *sessionService) Create(ctx context.Context, session *model.ClassSession) error {
	s.sanitize(session)
	if err := s.validator.Validate(session); err != nil {
		return apperrors.Validation("Invalid class session", map[string]any{"error": err.Error()})
	}

	proposed, err := schedule.ParseInterval(session.StartTime, session.EndTime)
	if err != nil {
		return apperrors.Validation("Invalid class session", map[string]any{"error": err.Error()})
	}

	lockID, err := s.locker.Acquire(ctx, lockKind, scopeKey(session.CourseID, session.Week), session.Day)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.locker.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.guardScope(sessCtx, session, proposed, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, session); err != nil {
			return apperrors.Internal("Failed to create class session", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create class session", "error", err)
		return err
	}

	s.cfg.Log.Info("Class session created",
		"id", session.ID,
		"course_id", session.CourseID,
		"week", session.Week,
		"day", session.Day,
	)

	s.fanout(ctx, model.EventSessionCreated, session.CourseID,
		"A new class session has been added for course %s")
	return nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*model.ClassSession, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, timetableerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Class session", id)
		}
		if errors.Is(err, timetableerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid session ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve class session", err)
	}

	return session, nil
}

func (s *sessionService) GetAll(ctx context.Context, limit int, offset int) ([]*model.ClassSession, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	skip := config.NormalizeOffset(int64(offset))

	var count int64
	var sessions []*model.ClassSession
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count class sessions", "error", errCount)
			errCount = apperrors.Internal("Failed to count class sessions", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		sessions, errFind = s.repo.FindAll(ctx, limit, skip)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list class sessions", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve class sessions", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return sessions, count, nil
}

func (s *sessionService) GetByCourseAndWeek(ctx context.Context, courseID string, week int) ([]*model.ClassSession, error) {
	if courseID == "" {
		return nil, apperrors.InvalidInput("Course ID cannot be empty")
	}
	if week < 1 || week > 53 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Week must be between 1 and 53, got: %d", week))
	}

	sessions, err := s.repo.FindByCourseAndWeek(ctx, courseID, week)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve class sessions", err)
	}
	return sessions, nil
}

func (s *sessionService) Update(ctx context.Context, id string, updates *model.ClassSessionUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, timetableerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Class session", id)
		}
		if errors.Is(err, timetableerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid session ID format")
		}
		return apperrors.Internal("Failed to check session existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Session update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Invalid class session", map[string]any{"error": err.Error()})
	}

	proposed, err := schedule.ParseInterval(merged.StartTime, merged.EndTime)
	if err != nil {
		return apperrors.Validation("Invalid class session", map[string]any{"error": err.Error()})
	}

	lockID, err := s.locker.Acquire(ctx, lockKind, scopeKey(merged.CourseID, merged.Week), merged.Day)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.locker.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.guardScope(sessCtx, merged, proposed, id); err != nil {
			return err
		}
		if _, err := s.repo.Replace(sessCtx, id, merged); err != nil {
			if errors.Is(err, timetableerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Class session", id)
			}
			return apperrors.Internal("Failed to update class session", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update class session", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Class session updated", "id", id)

	s.fanout(ctx, model.EventSessionUpdated, merged.CourseID,
		"A class session for course %s has been updated")
	return nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Session ID cannot be empty")
	}

	// Fetch first: the fanout message needs the course, and deleting a
	// missing session must notify nobody.
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, timetableerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Class session", id)
		}
		if errors.Is(err, timetableerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid session ID format")
		}
		return apperrors.Internal("Failed to check session existence", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, timetableerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Class session", id)
		}
		return apperrors.Internal("Failed to delete class session", err)
	}

	s.cfg.Log.Info("Class session deleted", "id", id, "course_id", existing.CourseID)

	s.fanout(ctx, model.EventSessionDeleted, existing.CourseID,
		"A class session for course %s has been deleted")
	return nil
}

// guardScope rejects the proposal if it overlaps a committed session in
// (courseID, week, day), skipping excludeID on updates.
func (s *sessionService) guardScope(ctx context.Context, session *model.ClassSession, proposed schedule.Interval, excludeID string) error {
	existing, err := s.repo.FindByScope(ctx, session.CourseID, session.Week, session.Day)
	if err != nil {
		return apperrors.Internal("Failed to query committed sessions", err)
	}

	occupants := make([]schedule.Occupant, 0, len(existing))
	for _, other := range existing {
		interval, err := schedule.ParseInterval(other.StartTime, other.EndTime)
		if err != nil {
			s.cfg.Log.Warn("Skipping stored session with unparseable interval",
				"id", other.ID, "start_time", other.StartTime, "end_time", other.EndTime)
			continue
		}
		occupants = append(occupants, schedule.Occupant{
			ID:          other.ID,
			ResourceKey: scopeKey(other.CourseID, other.Week),
			Day:         other.Day,
			Interval:    interval,
			Label:       "A class session",
		})
	}

	if conflict := schedule.Check(proposed, occupants, excludeID); conflict != nil {
		return apperrors.Conflict("Session overlaps with existing sessions").WithDetails(map[string]any{
			"conflicting_id": conflict.Occupant.ID,
			"day":            conflict.Occupant.Day,
			"interval":       conflict.Occupant.Interval.String(),
		})
	}
	return nil
}

// fanout publishes post-commit and never fails the request.
func (s *sessionService) fanout(ctx context.Context, eventType, courseID, messageFormat string) {
	courseName := courseID
	if course, err := s.courses.FindByID(ctx, courseID); err != nil {
		s.cfg.Log.Warn("Failed to resolve course for notification", "course_id", courseID, "error", err)
	} else {
		courseName = course.CourseName
	}

	event := model.FanoutEvent{
		Audience: model.AudienceEnrolled,
		CourseID: courseID,
		Message:  fmt.Sprintf(messageFormat, courseName),
	}

	msg := kafka.NewMessage().
		WithKey(courseID).
		WithValue(event).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSource("timetable-service").
		Build()

	if err := s.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		s.cfg.Log.Error("Failed to publish fanout event",
			"event_type", eventType,
			"course_id", courseID,
			"error", err,
		)
	}
}

func (s *sessionService) sanitize(session *model.ClassSession) {
	session.CourseID = sanitizer.TrimAndNormalize(session.CourseID)
	session.Day = sanitizer.NormalizeDay(session.Day)
	session.StartTime = sanitizer.TrimAndNormalize(session.StartTime)
	session.EndTime = sanitizer.TrimAndNormalize(session.EndTime)
	session.FacultyID = sanitizer.TrimAndNormalize(session.FacultyID)
	session.Location = sanitizer.TrimAndNormalize(session.Location)
}

func (s *sessionService) merge(existing *model.ClassSession, updates *model.ClassSessionUpdate) *model.ClassSession {
	merged := *existing

	if updates.CourseID != "" {
		merged.CourseID = updates.CourseID
	}
	if updates.Week != nil {
		merged.Week = *updates.Week
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
	if updates.FacultyID != "" {
		merged.FacultyID = updates.FacultyID
	}
	if updates.Location != "" {
		merged.Location = updates.Location
	}

	return &merged
}

func scopeKey(courseID string, week int) string {
	return fmt.Sprintf("%s:%d", courseID, week)
}
