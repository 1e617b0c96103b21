package repository

import (
	"context"
	"testing"

	catalogerrors "dancebook/internal/catalog/errors"
	"dancebook/internal/catalog/validator"
	"dancebook/pkg/docstore"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo() CatalogRepository {
	return NewCatalogRepository(
		docstore.NewMemoryCollection[model.Course](CoursesCollection),
		docstore.NewMemoryCollection[model.ClassSession](ClassesCollection, ClassIndexes()...),
		validator.NewCatalogValidator(logger.Discard()),
	)
}

func ptr[T any](v T) *T { return &v }

func TestCatalogRepository_Courses(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	salsa := &model.Course{Name: "Salsa", Description: "Intro", Duration: "8 weeks"}
	require.NoError(t, repo.InsertCourse(ctx, salsa))
	require.NotEmpty(t, salsa.ID)

	got, err := repo.FindCourse(ctx, salsa.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salsa", got.Name)

	err = repo.InsertCourse(ctx, &model.Course{Name: "Tango"})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidCourse)

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)

	require.NoError(t, repo.RemoveCourse(ctx, salsa.ID))
	assert.ErrorIs(t, repo.RemoveCourse(ctx, salsa.ID), catalogerrors.ErrCourseNotFound)
	_, err = repo.FindCourse(ctx, salsa.ID)
	assert.ErrorIs(t, err, catalogerrors.ErrCourseNotFound)
}

func TestCatalogRepository_Classes(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	a := &model.ClassSession{CourseID: "c1", Date: "2024-12-25", Time: "19:00", Location: "Hall A", Price: 20}
	b := &model.ClassSession{CourseID: "c2", Date: "2024-12-20", Time: "09:00", Location: "Hall B"}
	require.NoError(t, repo.InsertClass(ctx, a))
	require.NoError(t, repo.InsertClass(ctx, b))

	err := repo.InsertClass(ctx, &model.ClassSession{CourseID: "c1", Date: "25/12/2024", Time: "19:00", Location: "Hall A"})
	assert.ErrorIs(t, err, catalogerrors.ErrInvalidClass)

	all, err := repo.ListClasses(ctx, ClassFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forC1, err := repo.ListClasses(ctx, ClassFilter{CourseID: "c1"})
	require.NoError(t, err)
	require.Len(t, forC1, 1)
	assert.Equal(t, a.ID, forC1[0].ID)

	updated, err := repo.UpdateClass(ctx, a.ID, &model.ClassSessionUpdate{Location: ptr("Hall C"), Price: ptr(25.0)})
	require.NoError(t, err)
	assert.Equal(t, "Hall C", updated.Location)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, "19:00", updated.Time, "untouched fields survive")

	_, err = repo.UpdateClass(ctx, "missing", &model.ClassSessionUpdate{Location: ptr("Hall C")})
	assert.ErrorIs(t, err, catalogerrors.ErrClassNotFound)

	_, err = repo.UpdateClass(ctx, a.ID, &model.ClassSessionUpdate{})
	assert.ErrorIs(t, err, docstore.ErrEmptyUpdate)

	require.NoError(t, repo.RemoveClass(ctx, b.ID))
	assert.ErrorIs(t, repo.RemoveClass(ctx, b.ID), catalogerrors.ErrClassNotFound)
}
