package validator

import (
	"dancebook/pkg/logger"
	"dancebook/pkg/model"
	"dancebook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type EnrolmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEnrolmentValidator(log *logger.Logger) *EnrolmentValidator {
	return &EnrolmentValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *EnrolmentValidator) Validate(req *model.EnrolmentRequest) error {
	return validation.Struct(v.validate, req)
}
