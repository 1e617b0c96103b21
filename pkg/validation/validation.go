// Package validation holds the validator instance and custom tags shared by
// the domain validators, and the error shape they all report.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	TagUsername     = "username"
	TagISODate      = "isodate"
	TagClock        = "clock"
	TagDurationText = "duration_text"
	TagPersonName   = "person_name"
	TagPhoneText    = "phone_text"
)

var (
	usernameRegex     = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	clockRegex        = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
	durationTextRegex = regexp.MustCompile(`(?i)^\d+\s*(minute|minutes|hour|hours|hr|hrs)$`)
	personNameRegex   = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phoneTextRegex    = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
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

// Fields maps each failing field to its message, for error details.
func (v ValidationErrors) Fields() map[string]any {
	out := make(map[string]any, len(v))
	for _, err := range v {
		out[err.Field] = err.Message
	}
	return out
}

// New builds a validator with every custom tag registered. Field names in
// errors are the json names.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	tags := map[string]validator.Func{
		TagUsername:     matchString(usernameRegex),
		TagISODate:      validateISODate,
		TagClock:        matchString(clockRegex),
		TagDurationText: matchString(durationTextRegex),
		TagPersonName:   matchString(personNameRegex),
		TagPhoneText:    matchString(phoneTextRegex),
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator tag",
				"tag", tag,
				"error", err,
			)
		}
	}

	return v
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

// Struct validates s and returns ValidationErrors for rule failures.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case TagUsername:
			message = fmt.Sprintf("%s can only contain letters, numbers, and underscores", err.Field())
		case TagISODate:
			message = fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", err.Field())
		case TagClock:
			message = fmt.Sprintf("%s must be in HH:MM format (24-hour)", err.Field())
		case TagDurationText:
			message = fmt.Sprintf("%s must be like \"60 minutes\" or \"2 hours\"", err.Field())
		case TagPersonName:
			message = fmt.Sprintf("%s can only contain letters, spaces, hyphens, and apostrophes", err.Field())
		case TagPhoneText:
			message = fmt.Sprintf("%s can only contain digits, spaces, and + - ( )", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// NotInPast reports whether date (YYYY-MM-DD) is today or later in now's
// location.
func NotInPast(date string, now time.Time) bool {
	d, err := time.ParseInLocation(model.DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}

// Details shapes err for an AppError's details: the summary line plus, for
// rule failures, the per-field messages.
func Details(err error) map[string]any {
	details := map[string]any{"error": err.Error()}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		details["fields"] = verrs.Fields()
	}
	return details
}
