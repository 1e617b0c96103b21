package errors

import "errors"

var (
	ErrNotFound = errors.New("enrolment not found")

	ErrDuplicateEnrolment = errors.New("already enrolled in this class")

	ErrEmptyQuery = errors.New("enrolment query has no fields")
)
