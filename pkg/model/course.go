package model

import "time"

type Course struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Duration    string    `json:"duration" bson:"duration" validate:"required"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// CourseInput carries the organiser-facing rules for a new course.
type CourseInput struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	Duration    string `json:"duration" validate:"required,duration_text"`
}

type CourseDetail struct {
	Course  *Course         `json:"course"`
	Classes []*ClassSession `json:"classes"`
}
