package validator

import (
	"errors"

	"campustime/pkg/logger"
	"campustime/pkg/model"
	"campustime/pkg/schedule"
	"campustime/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ResourceBookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResourceBookingValidator(log *logger.Logger) *ResourceBookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize resource booking validator", "error", err)
	}

	return &ResourceBookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ResourceBookingValidator) Validate(booking *model.ResourceBooking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if _, err := schedule.ParseInterval(booking.StartTime, booking.EndTime); err != nil {
		return validation.IntervalError()
	}

	return nil
}

func (v *ResourceBookingValidator) ValidateUpdate(updates *model.ResourceBookingUpdate) error {
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
