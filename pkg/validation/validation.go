// Package validation holds the field-error types and custom tag
// registrations shared by the per-kind validators.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"campustime/pkg/schedule"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// New returns a validator with the scheduling tags registered.
// Registration only fails on a programming error, hence the error
// return instead of a panic.
func New() (*validator.Validate, error) {
	v := validator.New()

	// Report field errors under their json names so API responses match
	// the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return nil, fmt.Errorf("failed to register 'clock' validator: %w", err)
	}

	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		return nil, fmt.Errorf("failed to register 'weekday' validator: %w", err)
	}

	return v, nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := schedule.ParseClock(fl.Field().String())
	return err == nil
}

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := weekdays[strings.ToLower(fl.Field().String())]
	return ok
}

// Translate converts validator/v10 field errors into the API's field
// error shape.
func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "clock":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be a day of the week", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// IntervalError reports an inverted or empty time range on the named
// field pair.
func IntervalError() ValidationErrors {
	return ValidationErrors{
		ValidationError{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		},
	}
}
