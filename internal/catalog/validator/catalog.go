package validator

import (
	"time"

	"dancebook/pkg/logger"
	"dancebook/pkg/model"
	"dancebook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

var ErrDateInPast = validation.ValidationError{Field: "date", Message: "date cannot be in the past"}

type CatalogValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewCatalogValidator(log *logger.Logger) *CatalogValidator {
	return &CatalogValidator{
		validate: validation.New(log),
		logger:   log,
		now:      time.Now,
	}
}

// WithClock replaces the source of "today" used by the past-date check.
func (v *CatalogValidator) WithClock(now func() time.Time) *CatalogValidator {
	v.now = now
	return v
}

func (v *CatalogValidator) ValidateCourse(course *model.Course) error {
	return validation.Struct(v.validate, course)
}

func (v *CatalogValidator) ValidateClass(class *model.ClassSession) error {
	return validation.Struct(v.validate, class)
}

func (v *CatalogValidator) ValidateCourseInput(in *model.CourseInput) error {
	return validation.Struct(v.validate, in)
}

// ValidateClassInput applies the organiser rules, including that the date is
// today or later.
func (v *CatalogValidator) ValidateClassInput(in *model.ClassInput) error {
	if err := validation.Struct(v.validate, in); err != nil {
		return err
	}
	return v.notInPast(in.Date)
}

func (v *CatalogValidator) ValidateClassUpdate(update *model.ClassSessionUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.Date != nil {
		return v.notInPast(*update.Date)
	}
	return nil
}

func (v *CatalogValidator) notInPast(date string) error {
	if !validation.NotInPast(date, v.now()) {
		return validation.ValidationErrors{ErrDateInPast}
	}
	return nil
}

