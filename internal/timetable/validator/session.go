package validator

import (
	"errors"

	"campustime/pkg/logger"
	"campustime/pkg/model"
	"campustime/pkg/schedule"
	"campustime/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type SessionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSessionValidator(log *logger.Logger) *SessionValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize session validator", "error", err)
	}

	return &SessionValidator{
		validate: v,
		logger:   log,
	}
}

func (v *SessionValidator) Validate(session *model.ClassSession) error {
	if err := v.validate.Struct(session); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if _, err := schedule.ParseInterval(session.StartTime, session.EndTime); err != nil {
		return validation.IntervalError()
	}

	return nil
}

func (v *SessionValidator) ValidateUpdate(updates *model.ClassSessionUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if updates.StartTime != "" && updates.EndTime != "" {
		if _, err := schedule.ParseInterval(updates.StartTime, updates.EndTime); err != nil {
			return validation.IntervalError()
		}
	}

	return nil
}
