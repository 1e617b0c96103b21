package service

import (
	"context"
	"errors"
	"strings"

	catalogerrors "dancebook/internal/catalog/errors"
	"dancebook/internal/catalog/repository"
	"dancebook/pkg/config"
	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"
)

// CatalogService serves the public, read-only view of courses and their
// sessions.
type CatalogService interface {
	ListCourses(ctx context.Context) ([]*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.CourseDetail, error)
	ListClassesForCourse(ctx context.Context, courseID string) ([]*model.ClassSession, error)
}

type catalogService struct {
	repo repository.CatalogRepository
	cfg  *config.Config
}

func NewCatalogService(repo repository.CatalogRepository, cfg *config.Config) CatalogService {
	return &catalogService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *catalogService) ListCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list courses", "error", err)
		return nil, apperrors.Storage("Failed to retrieve courses", err)
	}
	return courses, nil
}

func (s *catalogService) GetCourse(ctx context.Context, id string) (*model.CourseDetail, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	classes, err := s.classesOf(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return &model.CourseDetail{Course: course, Classes: classes}, nil
}

func (s *catalogService) ListClassesForCourse(ctx context.Context, courseID string) ([]*model.ClassSession, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.classesOf(ctx, courseID)
}

func (s *catalogService) findCourse(ctx context.Context, id string) (*model.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Course ID cannot be empty")
	}

	course, err := s.repo.FindCourse(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrCourseNotFound) {
			return nil, apperrors.NotFoundWithID("Course", id)
		}
		s.cfg.Log.Error("Failed to get course by ID",
			"course_id", id,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to retrieve course", err)
	}
	return course, nil
}

func (s *catalogService) classesOf(ctx context.Context, courseID string) ([]*model.ClassSession, error) {
	classes, err := s.repo.ListClasses(ctx, repository.ClassFilter{CourseID: courseID})
	if err != nil {
		s.cfg.Log.Error("Failed to list class sessions",
			"course_id", courseID,
			"error", err,
		)
		return nil, apperrors.Storage("Failed to retrieve class sessions", err)
	}
	model.SortClassSessions(classes)
	return classes, nil
}
