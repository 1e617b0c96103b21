package service

import (
	"context"
	"errors"
	"strings"

	"dancebook/internal/events"
	identityerrors "dancebook/internal/identity/errors"
	"dancebook/internal/identity/repository"
	"dancebook/internal/identity/validator"
	"dancebook/pkg/config"
	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"
	"dancebook/pkg/sanitizer"
	"dancebook/pkg/validation"

	"golang.org/x/crypto/bcrypt"
)

type AccountService interface {
	Register(ctx context.Context, reg *model.Registration) (*model.Account, error)
	Authenticate(ctx context.Context, creds *model.Credentials) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
}

type accountService struct {
	repo      repository.AccountRepository
	validator *validator.AccountValidator
	publisher events.Publisher
	cfg       *config.Config

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

func NewAccountService(
	repo repository.AccountRepository,
	validator *validator.AccountValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AccountService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dancebook-dummy-password"), bcryptCost(cfg))
	return &accountService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		dummyHash: dummy,
	}
}

func bcryptCost(cfg *config.Config) int {
	if cfg.BcryptCost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return cfg.BcryptCost
}

func (s *accountService) Register(ctx context.Context, reg *model.Registration) (*model.Account, error) {
	s.sanitize(reg)

	if err := s.validator.ValidateRegistration(reg); err != nil {
		s.cfg.Log.Warn("Registration validation failed",
			"username", reg.Username,
			"error", err,
		)
		return nil, apperrors.Validation("Registration validation failed", validation.Details(err))
	}

	_, err := s.repo.FindByUsername(ctx, reg.Username)
	switch {
	case err == nil:
		s.cfg.Log.Warn("Registration rejected, username taken", "username", reg.Username)
		return nil, apperrors.Conflict("Username already exists")
	case !errors.Is(err, identityerrors.ErrNotFound):
		s.cfg.Log.Error("Failed to check username availability",
			"username", reg.Username,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to register account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcryptCost(s.cfg))
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	account := &model.Account{
		Username:     reg.Username,
		PasswordHash: string(hash),
		Role:         reg.Role,
		Email:        reg.Email,
	}

	if err := s.repo.Insert(ctx, account); err != nil {
		if errors.Is(err, identityerrors.ErrDuplicateUsername) {
			s.cfg.Log.Warn("Registration lost username race", "username", reg.Username)
			return nil, apperrors.Conflict("Username already exists")
		}
		s.cfg.Log.Error("Failed to insert account",
			"username", reg.Username,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to register account", err)
	}

	s.cfg.Log.Info("Account registered",
		"id", account.ID,
		"username", account.Username,
		"role", account.Role,
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.New(events.AccountRegistered, account.ID, events.AccountPayload{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
	}))

	return account, nil
}

func (s *accountService) Authenticate(ctx context.Context, creds *model.Credentials) (*model.Account, error) {
	creds.Username = sanitizer.NormalizeUsername(creds.Username)

	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, apperrors.Validation("Login validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	account, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, identityerrors.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(creds.Password))
			s.cfg.Log.Warn("Login failed, unknown username", "username", creds.Username)
			return nil, apperrors.InvalidCredentials()
		}
		s.cfg.Log.Error("Failed to load account for login",
			"username", creds.Username,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		s.cfg.Log.Warn("Login failed, wrong password", "username", creds.Username)
		return nil, apperrors.InvalidCredentials()
	}

	s.cfg.Log.Info("Account authenticated", "id", account.ID, "username", account.Username)
	return account, nil
}

func (s *accountService) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Account ID cannot be empty")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, identityerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Account", id)
		}
		s.cfg.Log.Error("Failed to get account by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to retrieve account", err)
	}
	return account, nil
}

func (s *accountService) sanitize(reg *model.Registration) {
	reg.Username = sanitizer.NormalizeUsername(reg.Username)
	reg.Email = sanitizer.NormalizeEmail(reg.Email)
	reg.Role = strings.ToLower(strings.TrimSpace(reg.Role))
}
