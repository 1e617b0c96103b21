package service

import (
	"context"
	"errors"

	"dancebook/internal/access"
	catalogerrors "dancebook/internal/catalog/errors"
	catalogrepo "dancebook/internal/catalog/repository"
	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/model"

	"golang.org/x/sync/errgroup"
)

// ListParticipants returns a session with its course's name and duration,
// falling back to placeholders when the course has been deleted.
func (s *adminService) ListParticipants(ctx context.Context, caller *access.Identity, classID string) (*model.ClassParticipants, error) {
	if err := s.authorize(caller, "ListParticipants"); err != nil {
		return nil, err
	}
	if classID == "" {
		return nil, apperrors.InvalidInput("Class ID cannot be empty")
	}

	class, err := s.catalog.FindClass(ctx, classID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrClassNotFound) {
			return nil, apperrors.NotFoundWithID("Class", classID)
		}
		s.cfg.Log.Error("Failed to load class", "id", classID, "error", err)
		return nil, apperrors.Storage("Failed to load class", err)
	}

	result := &model.ClassParticipants{
		Class:          class,
		CourseName:     model.UnknownCourseName,
		CourseDuration: model.UnknownCourseDuration,
	}

	course, err := s.catalog.FindCourse(ctx, class.CourseID)
	switch {
	case err == nil:
		result.CourseName = course.Name
		result.CourseDuration = course.Duration
	case !errors.Is(err, catalogerrors.ErrCourseNotFound):
		s.cfg.Log.Error("Failed to load course for class", "id", classID, "course_id", class.CourseID, "error", err)
		return nil, apperrors.Storage("Failed to load course", err)
	}

	result.Participants, err = s.participants(ctx, classID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListAllClassesWithParticipants returns every session, ordered by start
// time, joined with its course name and participants.
func (s *adminService) ListAllClassesWithParticipants(ctx context.Context, caller *access.Identity) ([]*model.ClassWithParticipants, error) {
	if err := s.authorize(caller, "ListAllClassesWithParticipants"); err != nil {
		return nil, err
	}

	classes, err := s.catalog.ListClasses(ctx, catalogrepo.ClassFilter{})
	if err != nil {
		s.cfg.Log.Error("Failed to list classes", "error", err)
		return nil, apperrors.Storage("Failed to list classes", err)
	}
	model.SortClassSessions(classes)

	courses, err := s.catalog.ListCourses(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list courses", "error", err)
		return nil, apperrors.Storage("Failed to list courses", err)
	}
	names := make(map[string]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}

	out := make([]*model.ClassWithParticipants, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			participants, err := s.participants(gctx, class.ID)
			if err != nil {
				return err
			}
			name, ok := names[class.CourseID]
			if !ok {
				name = model.UnknownCourseListName
			}
			out[i] = &model.ClassWithParticipants{
				ClassSession: *class,
				CourseName:   name,
				Participants: participants,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) participants(ctx context.Context, classID string) ([]model.ParticipantView, error) {
	enrolments, err := s.enrolments.Find(ctx, model.EnrolmentQuery{ClassID: classID})
	if err != nil {
		s.cfg.Log.Error("Failed to list enrolments for class", "class_id", classID, "error", err)
		return nil, apperrors.Storage("Failed to list participants", err)
	}

	views := make([]model.ParticipantView, 0, len(enrolments))
	for _, e := range enrolments {
		views = append(views, e.Participant())
	}
	return views, nil
}
