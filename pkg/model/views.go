package model

const (
	UnknownCourseName     = "Unknown Course"
	UnknownCourseDuration = "N/A"
	UnknownCourseListName = "Unknown"
)

const (
	OutcomeAccountAndEnrolmentsDeleted = "account_and_enrolments_deleted"
	OutcomeAccountDeletedNoEnrolments  = "account_deleted_no_enrolments"
)

type ClassParticipants struct {
	Class          *ClassSession     `json:"class"`
	CourseName     string            `json:"course_name"`
	CourseDuration string            `json:"course_duration"`
	Participants   []ParticipantView `json:"participants"`
}

type ClassWithParticipants struct {
	ClassSession
	CourseName   string            `json:"course_name"`
	Participants []ParticipantView `json:"participants"`
}

type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	IsSelf   bool   `json:"is_self,omitempty"`
}

type AccountListing struct {
	Organisers []AccountSummary `json:"organisers"`
	Members    []AccountSummary `json:"members"`
}

type AccountDeletion struct {
	AccountID          string   `json:"account_id"`
	Username           string   `json:"username"`
	Email              string   `json:"email,omitempty"`
	EnrolmentsFound    int      `json:"enrolments_found"`
	EnrolmentsRemoved  int      `json:"enrolments_removed"`
	FailedEnrolmentIDs []string `json:"failed_enrolment_ids,omitempty"`
	Outcome            string   `json:"outcome"`
}
