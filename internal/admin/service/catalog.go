package service

import (
	"context"
	"errors"
	"strings"

	"dancebook/internal/access"
	catalogerrors "dancebook/internal/catalog/errors"
	"dancebook/internal/events"
	"dancebook/pkg/docstore"
	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"
	"dancebook/pkg/sanitizer"
	"dancebook/pkg/validation"
)

func (s *adminService) AddCourse(ctx context.Context, caller *access.Identity, in *model.CourseInput) (*model.Course, error) {
	if err := s.authorize(caller, "AddCourse"); err != nil {
		return nil, err
	}

	in.Name = sanitizer.NormalizeName(in.Name)
	in.Description = sanitizer.NormalizeText(in.Description)
	in.Duration = sanitizer.TrimAndNormalize(in.Duration)

	if err := s.validator.ValidateCourseInput(in); err != nil {
		s.cfg.Log.Warn("Course validation failed", "name", in.Name, "error", err)
		return nil, apperrors.Validation("Course validation failed", validation.Details(err))
	}

	course := &model.Course{
		Name:        in.Name,
		Description: in.Description,
		Duration:    in.Duration,
	}
	if err := s.catalog.InsertCourse(ctx, course); err != nil {
		s.cfg.Log.Error("Failed to insert course", "name", course.Name, "error", err)
		return nil, apperrors.Storage("Failed to add course", err)
	}

	s.cfg.Log.Info("Course created successfully", "id", course.ID, "name", course.Name, "by", caller.AccountID)
	s.emit(ctx, events.CourseAdded, course.ID, events.CatalogPayload{CourseID: course.ID, Name: course.Name})
	return course, nil
}

// DeleteCourse removes the course row only; its sessions and their
// enrolments are left in place.
func (s *adminService) DeleteCourse(ctx context.Context, caller *access.Identity, id string) error {
	if err := s.authorize(caller, "DeleteCourse"); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Course ID cannot be empty")
	}

	if err := s.catalog.RemoveCourse(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrCourseNotFound) {
			return apperrors.NotFoundWithID("Course", id)
		}
		s.cfg.Log.Error("Failed to delete course", "id", id, "error", err)
		return apperrors.Storage("Failed to delete course", err)
	}

	s.cfg.Log.Info("Course deleted successfully", "id", id, "by", caller.AccountID)
	s.emit(ctx, events.CourseDeleted, id, events.CatalogPayload{CourseID: id})
	return nil
}

// AddClass checks the course exists and inserts the session in one
// transaction when the store supports it.
func (s *adminService) AddClass(ctx context.Context, caller *access.Identity, courseID string, in *model.ClassInput) (*model.ClassSession, error) {
	if err := s.authorize(caller, "AddClass"); err != nil {
		return nil, err
	}
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apperrors.InvalidInput("Course ID cannot be empty")
	}

	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Location = sanitizer.NormalizeText(in.Location)
	in.Description = sanitizer.NormalizeText(in.Description)

	if err := s.validator.ValidateClassInput(in); err != nil {
		s.cfg.Log.Warn("Class validation failed", "course_id", courseID, "error", err)
		return nil, apperrors.Validation("Class validation failed", validation.Details(err))
	}

	class := &model.ClassSession{
		CourseID:    courseID,
		Date:        in.Date,
		Time:        in.Time,
		Location:    in.Location,
		Price:       in.Price,
		Description: in.Description,
	}

	err := s.tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.catalog.FindCourse(txCtx, courseID); err != nil {
			if errors.Is(err, catalogerrors.ErrCourseNotFound) {
				return apperrors.NotFoundWithID("Course", courseID)
			}
			return apperrors.Storage("Failed to load course", err)
		}
		if err := s.catalog.InsertClass(txCtx, class); err != nil {
			return apperrors.Storage("Failed to add class", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			s.cfg.Log.Warn("Class rejected, course not found", "course_id", courseID)
			return nil, err
		}
		s.cfg.Log.Error("Failed to add class", "course_id", courseID, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Storage("Failed to add class", err)
	}

	s.cfg.Log.Info("Class created successfully", "id", class.ID, "course_id", courseID, "by", caller.AccountID)
	s.emit(ctx, events.ClassAdded, class.ID, events.CatalogPayload{CourseID: courseID, ClassID: class.ID})
	return class, nil
}

func (s *adminService) UpdateClass(ctx context.Context, caller *access.Identity, id string, update *model.ClassSessionUpdate) (*model.ClassSession, error) {
	if err := s.authorize(caller, "UpdateClass"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Class ID cannot be empty")
	}
	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}

	sanitizeUpdate(update)
	if err := s.validator.ValidateClassUpdate(update); err != nil {
		s.cfg.Log.Warn("Class update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", validation.Details(err))
	}

	class, err := s.catalog.UpdateClass(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, catalogerrors.ErrClassNotFound):
			return nil, apperrors.NotFoundWithID("Class", id)
		case errors.Is(err, docstore.ErrEmptyUpdate):
			return nil, apperrors.InvalidInput("No fields to update")
		}
		s.cfg.Log.Error("Failed to update class", "id", id, "error", err)
		return nil, apperrors.Storage("Failed to update class", err)
	}

	s.cfg.Log.Info("Class updated successfully", "id", id, "by", caller.AccountID)
	s.emit(ctx, events.ClassUpdated, id, events.CatalogPayload{CourseID: class.CourseID, ClassID: id})
	return class, nil
}

// DeleteClass removes the session only. Enrolments pointing at it remain.
func (s *adminService) DeleteClass(ctx context.Context, caller *access.Identity, id string) error {
	if err := s.authorize(caller, "DeleteClass"); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Class ID cannot be empty")
	}

	if err := s.catalog.RemoveClass(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrClassNotFound) {
			return apperrors.NotFoundWithID("Class", id)
		}
		s.cfg.Log.Error("Failed to delete class", "id", id, "error", err)
		return apperrors.Storage("Failed to delete class", err)
	}

	s.cfg.Log.Info("Class deleted successfully", "id", id, "by", caller.AccountID)
	s.emit(ctx, events.ClassDeleted, id, events.CatalogPayload{ClassID: id})
	return nil
}

func sanitizeUpdate(update *model.ClassSessionUpdate) {
	trim := func(p *string, fn func(string) string) {
		if p != nil {
			*p = fn(*p)
		}
	}
	trim(update.Date, strings.TrimSpace)
	trim(update.Time, strings.TrimSpace)
	trim(update.Location, sanitizer.NormalizeText)
	trim(update.Description, sanitizer.NormalizeText)
}
