package errors

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrClassNotFound  = errors.New("class session not found")
	ErrInvalidCourse  = errors.New("invalid course")
	ErrInvalidClass   = errors.New("invalid class session")
)
