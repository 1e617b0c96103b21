package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "dancebook/internal/catalog/errors"
	"dancebook/internal/catalog/validator"
	"dancebook/pkg/docstore"
	"dancebook/pkg/model"
)

const (
	CoursesCollection = "Courses"
	ClassesCollection = "Classes"
)

func ClassIndexes() []docstore.Index {
	return []docstore.Index{{Fields: []string{"course_id"}}}
}

// ClassFilter narrows ListClasses. The zero value lists every session.
type ClassFilter struct {
	CourseID string
}

type CatalogRepository interface {
	InsertCourse(ctx context.Context, course *model.Course) error
	FindCourse(ctx context.Context, id string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]*model.Course, error)
	RemoveCourse(ctx context.Context, id string) error

	InsertClass(ctx context.Context, class *model.ClassSession) error
	FindClass(ctx context.Context, id string) (*model.ClassSession, error)
	ListClasses(ctx context.Context, filter ClassFilter) ([]*model.ClassSession, error)
	UpdateClass(ctx context.Context, id string, update *model.ClassSessionUpdate) (*model.ClassSession, error)
	RemoveClass(ctx context.Context, id string) error
}

type catalogRepository struct {
	courses   docstore.Collection[model.Course]
	classes   docstore.Collection[model.ClassSession]
	validator *validator.CatalogValidator
}

func NewCatalogRepository(
	courses docstore.Collection[model.Course],
	classes docstore.Collection[model.ClassSession],
	v *validator.CatalogValidator,
) CatalogRepository {
	return &catalogRepository{
		courses:   courses,
		classes:   classes,
		validator: v,
	}
}

func (r *catalogRepository) InsertCourse(ctx context.Context, course *model.Course) error {
	if err := r.validator.ValidateCourse(course); err != nil {
		return fmt.Errorf("%w: %w", catalogerrors.ErrInvalidCourse, err)
	}

	if course.ID == "" {
		course.ID = docstore.NewID()
	}
	course.CreatedAt = now()

	if err := r.courses.Insert(ctx, course); err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (r *catalogRepository) FindCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := r.courses.FindOne(ctx, docstore.ByID(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, catalogerrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return course, nil
}

func (r *catalogRepository) ListCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := r.courses.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// RemoveCourse deletes the course row only. Its sessions stay behind.
func (r *catalogRepository) RemoveCourse(ctx context.Context, id string) error {
	removed, err := r.courses.Remove(ctx, docstore.ByID(id))
	if err != nil {
		return fmt.Errorf("failed to remove course: %w", err)
	}
	if removed == 0 {
		return catalogerrors.ErrCourseNotFound
	}
	return nil
}

func (r *catalogRepository) InsertClass(ctx context.Context, class *model.ClassSession) error {
	if err := r.validator.ValidateClass(class); err != nil {
		return fmt.Errorf("%w: %w", catalogerrors.ErrInvalidClass, err)
	}

	if class.ID == "" {
		class.ID = docstore.NewID()
	}
	class.CreatedAt = now()

	if err := r.classes.Insert(ctx, class); err != nil {
		return fmt.Errorf("failed to insert class session: %w", err)
	}
	return nil
}

func (r *catalogRepository) FindClass(ctx context.Context, id string) (*model.ClassSession, error) {
	class, err := r.classes.FindOne(ctx, docstore.ByID(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, catalogerrors.ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to find class session: %w", err)
	}
	return class, nil
}

func (r *catalogRepository) ListClasses(ctx context.Context, filter ClassFilter) ([]*model.ClassSession, error) {
	var f docstore.Filter
	if filter.CourseID != "" {
		f = docstore.Filter{"course_id": filter.CourseID}
	}

	classes, err := r.classes.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list class sessions: %w", err)
	}
	return classes, nil
}

// UpdateClass applies the non-nil fields of update and returns the stored
// result.
func (r *catalogRepository) UpdateClass(ctx context.Context, id string, update *model.ClassSessionUpdate) (*model.ClassSession, error) {
	fields := updateFields(update)
	if len(fields) == 0 {
		return nil, docstore.ErrEmptyUpdate
	}

	matched, err := r.classes.Update(ctx, docstore.ByID(id), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update class session: %w", err)
	}
	if matched == 0 {
		return nil, catalogerrors.ErrClassNotFound
	}
	return r.FindClass(ctx, id)
}

func (r *catalogRepository) RemoveClass(ctx context.Context, id string) error {
	removed, err := r.classes.Remove(ctx, docstore.ByID(id))
	if err != nil {
		return fmt.Errorf("failed to remove class session: %w", err)
	}
	if removed == 0 {
		return catalogerrors.ErrClassNotFound
	}
	return nil
}

func updateFields(update *model.ClassSessionUpdate) docstore.Fields {
	fields := docstore.Fields{}
	if update == nil {
		return fields
	}
	if update.Date != nil {
		fields["date"] = *update.Date
	}
	if update.Time != nil {
		fields["time"] = *update.Time
	}
	if update.Location != nil {
		fields["location"] = *update.Location
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	return fields
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
