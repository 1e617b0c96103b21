// Package service implements the organiser-only operations. Every method
// takes the caller's identity explicitly and checks it before any store is
// touched.
package service

import (
	"context"

	"dancebook/internal/access"
	bookingsrepo "dancebook/internal/bookings/repository"
	catalogrepo "dancebook/internal/catalog/repository"
	"dancebook/internal/catalog/validator"
	"dancebook/internal/events"
	identityrepo "dancebook/internal/identity/repository"
	"dancebook/pkg/config"
	"dancebook/pkg/docstore"
	"dancebook/pkg/model"
)

// fanOutLimit bounds concurrent per-session and per-enrolment store calls.
const fanOutLimit = 8

type AdminService interface {
	AddCourse(ctx context.Context, caller *access.Identity, in *model.CourseInput) (*model.Course, error)
	DeleteCourse(ctx context.Context, caller *access.Identity, id string) error
	AddClass(ctx context.Context, caller *access.Identity, courseID string, in *model.ClassInput) (*model.ClassSession, error)
	UpdateClass(ctx context.Context, caller *access.Identity, id string, update *model.ClassSessionUpdate) (*model.ClassSession, error)
	DeleteClass(ctx context.Context, caller *access.Identity, id string) error
	ListParticipants(ctx context.Context, caller *access.Identity, classID string) (*model.ClassParticipants, error)
	ListAllClassesWithParticipants(ctx context.Context, caller *access.Identity) ([]*model.ClassWithParticipants, error)
	ListAccounts(ctx context.Context, caller *access.Identity) (*model.AccountListing, error)
	DeleteAccount(ctx context.Context, caller *access.Identity, id string) (*model.AccountDeletion, error)
}

type adminService struct {
	accounts   identityrepo.AccountRepository
	catalog    catalogrepo.CatalogRepository
	enrolments bookingsrepo.EnrolmentRepository
	validator  *validator.CatalogValidator
	tx         docstore.Transactor
	publisher  events.Publisher
	cfg        *config.Config
}

func NewAdminService(
	accounts identityrepo.AccountRepository,
	catalog catalogrepo.CatalogRepository,
	enrolments bookingsrepo.EnrolmentRepository,
	validator *validator.CatalogValidator,
	tx docstore.Transactor,
	publisher events.Publisher,
	cfg *config.Config,
) AdminService {
	if tx == nil {
		tx = docstore.NoopTransactor{}
	}
	return &adminService{
		accounts:   accounts,
		catalog:    catalog,
		enrolments: enrolments,
		validator:  validator,
		tx:         tx,
		publisher:  publisher,
		cfg:        cfg,
	}
}

func (s *adminService) authorize(caller *access.Identity, operation string) error {
	if err := access.RequireOrganiser(caller); err != nil {
		var accountID string
		if caller != nil {
			accountID = caller.AccountID
		}
		s.cfg.Log.Warn("Organiser operation rejected",
			"operation", operation,
			"account_id", accountID,
			"error", err,
		)
		return err
	}
	return nil
}

func (s *adminService) emit(ctx context.Context, eventType, subject string, data any) {
	events.Emit(ctx, s.publisher, s.cfg.Log, events.New(eventType, subject, data))
}
