package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dancebook/pkg/model"
)

// APIError is a non-2xx response from the booking API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking api: %d %s: %s", e.Status, e.Code, e.Message)
}

// BookingAPI is a typed client for the booking service.
type BookingAPI struct {
	httpClient *HttpClient
}

func NewBookingAPI(baseURL string) *BookingAPI {
	return &BookingAPI{httpClient: NewHttpClient(baseURL)}
}

// SetToken makes subsequent calls authenticate as the token's account.
func (c *BookingAPI) SetToken(token string) {
	c.httpClient.Token = token
}

func (c *BookingAPI) Register(ctx context.Context, reg model.Registration) (*model.Account, error) {
	var account model.Account
	return &account, c.call(ctx, http.MethodPost, "/api/v1/auth/register", reg, &account)
}

// Login stores the returned token on the client.
func (c *BookingAPI) Login(ctx context.Context, username, password string) (*model.Session, error) {
	var session model.Session
	creds := model.Credentials{Username: username, Password: password}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", creds, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

func (c *BookingAPI) Logout(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *BookingAPI) ListCourses(ctx context.Context) ([]*model.Course, error) {
	var courses []*model.Course
	return courses, c.call(ctx, http.MethodGet, "/api/v1/courses", nil, &courses)
}

func (c *BookingAPI) GetCourse(ctx context.Context, id string) (*model.CourseDetail, error) {
	var detail model.CourseDetail
	return &detail, c.call(ctx, http.MethodGet, "/api/v1/courses/"+url.PathEscape(id), nil, &detail)
}

func (c *BookingAPI) Enrol(ctx context.Context, req model.EnrolmentRequest) (*model.Enrolment, error) {
	var enrolment model.Enrolment
	return &enrolment, c.call(ctx, http.MethodPost, "/api/v1/enrolments", req, &enrolment)
}

func (c *BookingAPI) AddCourse(ctx context.Context, input model.CourseInput) (*model.Course, error) {
	var course model.Course
	return &course, c.call(ctx, http.MethodPost, "/api/v1/organiser/courses", input, &course)
}

func (c *BookingAPI) AddClass(ctx context.Context, courseID string, input model.ClassInput) (*model.ClassSession, error) {
	var class model.ClassSession
	path := "/api/v1/organiser/courses/" + url.PathEscape(courseID) + "/classes"
	return &class, c.call(ctx, http.MethodPost, path, input, &class)
}

func (c *BookingAPI) ListParticipants(ctx context.Context, classID string) (*model.ClassParticipants, error) {
	var participants model.ClassParticipants
	path := "/api/v1/organiser/classes/" + url.PathEscape(classID) + "/participants"
	return &participants, c.call(ctx, http.MethodGet, path, nil, &participants)
}

func (c *BookingAPI) DeleteAccount(ctx context.Context, id string) (*model.AccountDeletion, error) {
	var deletion model.AccountDeletion
	return &deletion, c.call(ctx, http.MethodDelete, "/api/v1/organiser/accounts/"+url.PathEscape(id), nil, &deletion)
}

func (c *BookingAPI) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.httpClient.request(ctx, method, path, body, nil)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := resp.DecodeJSON(&errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := resp.DecodeData(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
