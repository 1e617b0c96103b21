package validator

import (
	"dancebook/pkg/logger"
	"dancebook/pkg/model"
	"dancebook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AccountValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAccountValidator(log *logger.Logger) *AccountValidator {
	return &AccountValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

// Validate checks a stored account: identity fields present, role known.
func (v *AccountValidator) Validate(account *model.Account) error {
	return validation.Struct(v.validate, account)
}

func (v *AccountValidator) ValidateRegistration(reg *model.Registration) error {
	return validation.Struct(v.validate, reg)
}

func (v *AccountValidator) ValidateCredentials(creds *model.Credentials) error {
	return validation.Struct(v.validate, creds)
}
