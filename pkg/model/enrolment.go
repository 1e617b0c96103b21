package model

import "time"

type Enrolment struct {
	ID        string    `json:"id" bson:"_id"`
	CourseID  string    `json:"course_id" bson:"course_id"`
	ClassID   string    `json:"class_id" bson:"class_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type EnrolmentRequest struct {
	CourseID string `json:"course_id,omitempty"`
	ClassID  string `json:"class_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=2,max=100,person_name"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10,max=20,phone_text"`
}

// EnrolmentQuery is a conjunctive match over its non-empty fields.
type EnrolmentQuery struct {
	ID       string
	CourseID string
	ClassID  string
	Email    string
}

func (q EnrolmentQuery) IsEmpty() bool {
	return q.ID == "" && q.CourseID == "" && q.ClassID == "" && q.Email == ""
}

type ParticipantView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (e *Enrolment) Participant() ParticipantView {
	return ParticipantView{Name: e.Name, Email: e.Email, Phone: e.Phone}
}
