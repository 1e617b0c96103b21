package events

type EnrolmentPayload struct {
	EnrolmentID string `json:"enrolment_id"`
	CourseID    string `json:"course_id"`
	ClassID     string `json:"class_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Location    string `json:"location,omitempty"`
}

type AccountPayload struct {
	AccountID         string `json:"account_id"`
	Username          string `json:"username"`
	Role              string `json:"role,omitempty"`
	EnrolmentsRemoved int    `json:"enrolments_removed,omitempty"`
}

type CatalogPayload struct {
	CourseID string `json:"course_id,omitempty"`
	ClassID  string `json:"class_id,omitempty"`
	Name     string `json:"name,omitempty"`
}
