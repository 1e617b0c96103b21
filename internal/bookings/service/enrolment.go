package service

import (
	"context"
	"errors"
	"strings"

	bookingserrors "dancebook/internal/bookings/errors"
	"dancebook/internal/bookings/repository"
	"dancebook/internal/bookings/validator"
	catalogerrors "dancebook/internal/catalog/errors"
	"dancebook/internal/events"
	"dancebook/pkg/config"
	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"
	"dancebook/pkg/sanitizer"
	"dancebook/pkg/validation"
)

type BookingService interface {
	Enrol(ctx context.Context, req *model.EnrolmentRequest) (*model.Enrolment, error)
}

// ClassFinder resolves the session an enrolment targets.
type ClassFinder interface {
	FindClass(ctx context.Context, id string) (*model.ClassSession, error)
}

type bookingService struct {
	repo      repository.EnrolmentRepository
	classes   ClassFinder
	validator *validator.EnrolmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.EnrolmentRepository,
	classes ClassFinder,
	validator *validator.EnrolmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		classes:   classes,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Enrol books req.Email onto a class session. At most one enrolment exists
// per (class, email): a repeat fails with DUPLICATE_ENROLMENT and writes
// nothing, including when two identical requests race.
func (s *bookingService) Enrol(ctx context.Context, req *model.EnrolmentRequest) (*model.Enrolment, error) {
	s.sanitize(req)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Enrolment validation failed",
			"class_id", req.ClassID,
			"error", err,
		)
		return nil, apperrors.Validation("Enrolment validation failed", validation.Details(err))
	}

	class, err := s.classes.FindClass(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrClassNotFound) {
			return nil, apperrors.NotFoundWithID("Class", req.ClassID)
		}
		s.cfg.Log.Error("Failed to load class session for enrolment",
			"class_id", req.ClassID,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to enrol", err)
	}

	if req.CourseID == "" {
		req.CourseID = class.CourseID
	} else if req.CourseID != class.CourseID {
		s.cfg.Log.Warn("Enrolment course does not match class",
			"class_id", class.ID,
			"course_id", req.CourseID,
			"class_course_id", class.CourseID,
		)
		return nil, apperrors.Validation("Class does not belong to the given course", map[string]any{
			"course_id": req.CourseID,
			"class_id":  req.ClassID,
		})
	}

	if err := s.ensureNotEnrolled(ctx, req); err != nil {
		return nil, err
	}

	enrolment := &model.Enrolment{
		CourseID: req.CourseID,
		ClassID:  req.ClassID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    sanitizer.NormalizePhone(req.Phone, s.cfg.PhoneRegion),
	}

	if err := s.repo.Insert(ctx, enrolment); err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicateEnrolment) {
			s.cfg.Log.Warn("Duplicate enrolment rejected by index",
				"class_id", req.ClassID,
				"email", req.Email,
			)
			return nil, apperrors.DuplicateEnrolment(req.ClassID, req.Email)
		}
		s.cfg.Log.Error("Failed to insert enrolment",
			"class_id", req.ClassID,
			"email", req.Email,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to enrol", err)
	}

	s.cfg.Log.Info("Enrolment created successfully",
		"id", enrolment.ID,
		"course_id", enrolment.CourseID,
		"class_id", enrolment.ClassID,
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.New(events.EnrolmentCreated, enrolment.ID, events.EnrolmentPayload{
		EnrolmentID: enrolment.ID,
		CourseID:    enrolment.CourseID,
		ClassID:     enrolment.ClassID,
		Name:        enrolment.Name,
		Email:       enrolment.Email,
		Date:        class.Date,
		Time:        class.Time,
		Location:    class.Location,
	}))

	return enrolment, nil
}

func (s *bookingService) ensureNotEnrolled(ctx context.Context, req *model.EnrolmentRequest) error {
	existing, err := s.repo.FindOne(ctx, model.EnrolmentQuery{ClassID: req.ClassID, Email: req.Email})
	switch {
	case err == nil:
		s.cfg.Log.Warn("Duplicate enrolment rejected",
			"class_id", req.ClassID,
			"email", req.Email,
			"existing_id", existing.ID,
		)
		return apperrors.DuplicateEnrolment(req.ClassID, req.Email)
	case errors.Is(err, bookingserrors.ErrNotFound):
		return nil
	default:
		s.cfg.Log.Error("Failed to check existing enrolment",
			"class_id", req.ClassID,
			"email", req.Email,
			"error", err,
		)
		return apperrors.Storage("Failed to enrol", err)
	}
}

func (s *bookingService) sanitize(req *model.EnrolmentRequest) {
	req.CourseID = strings.TrimSpace(req.CourseID)
	req.ClassID = strings.TrimSpace(req.ClassID)
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
}
