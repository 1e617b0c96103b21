package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "dancebook/internal/bookings/errors"
	"dancebook/pkg/docstore"
	"dancebook/pkg/model"
)

const (
	CollectionName = "Enrolments"
)

// Indexes make (class_id, email) unique, which is what turns two racing
// enrolments into one row and one ErrDuplicateEnrolment.
func Indexes() []docstore.Index {
	return []docstore.Index{
		docstore.UniqueIndex("class_id", "email"),
		{Fields: []string{"email"}},
	}
}

// EnrolmentRepository is the enrolment ledger. It stores what it is given;
// validation happens in the service.
type EnrolmentRepository interface {
	Insert(ctx context.Context, enrolment *model.Enrolment) error
	FindOne(ctx context.Context, query model.EnrolmentQuery) (*model.Enrolment, error)
	Find(ctx context.Context, query model.EnrolmentQuery) ([]*model.Enrolment, error)
	Remove(ctx context.Context, query model.EnrolmentQuery) (int64, error)
}

type enrolmentRepository struct {
	collection docstore.Collection[model.Enrolment]
}

func NewEnrolmentRepository(collection docstore.Collection[model.Enrolment]) EnrolmentRepository {
	return &enrolmentRepository{collection: collection}
}

func (r *enrolmentRepository) Insert(ctx context.Context, enrolment *model.Enrolment) error {
	if enrolment.ID == "" {
		enrolment.ID = docstore.NewID()
	}
	enrolment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := r.collection.Insert(ctx, enrolment); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return fmt.Errorf("%w: class %s, %s", bookingserrors.ErrDuplicateEnrolment, enrolment.ClassID, enrolment.Email)
		}
		return fmt.Errorf("failed to insert enrolment: %w", err)
	}
	return nil
}

func (r *enrolmentRepository) FindOne(ctx context.Context, query model.EnrolmentQuery) (*model.Enrolment, error) {
	enrolment, err := r.collection.FindOne(ctx, toFilter(query))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find enrolment: %w", err)
	}
	return enrolment, nil
}

func (r *enrolmentRepository) Find(ctx context.Context, query model.EnrolmentQuery) ([]*model.Enrolment, error) {
	enrolments, err := r.collection.Find(ctx, toFilter(query))
	if err != nil {
		return nil, fmt.Errorf("failed to find enrolments: %w", err)
	}
	return enrolments, nil
}

// Remove refuses an empty query so a missing id can never wipe the ledger.
func (r *enrolmentRepository) Remove(ctx context.Context, query model.EnrolmentQuery) (int64, error) {
	if query.IsEmpty() {
		return 0, bookingserrors.ErrEmptyQuery
	}

	removed, err := r.collection.Remove(ctx, toFilter(query))
	if err != nil {
		return 0, fmt.Errorf("failed to remove enrolments: %w", err)
	}
	return removed, nil
}

func toFilter(query model.EnrolmentQuery) docstore.Filter {
	filter := docstore.Filter{}
	if query.ID != "" {
		filter[docstore.IDField] = query.ID
	}
	if query.CourseID != "" {
		filter["course_id"] = query.CourseID
	}
	if query.ClassID != "" {
		filter["class_id"] = query.ClassID
	}
	if query.Email != "" {
		filter["email"] = query.Email
	}
	return filter
}
