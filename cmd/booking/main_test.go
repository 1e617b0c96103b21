package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dancebook/internal/access"
	"dancebook/internal/events"
	"dancebook/internal/storage"
	"dancebook/pkg/app"
	"dancebook/pkg/client"
	"dancebook/pkg/config"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type BookingServiceSuite struct {
	suite.Suite
	server   *httptest.Server
	app      *app.Application
	recorder *events.Recorder
}

func (s *BookingServiceSuite) SetupTest() {
	cfg := &config.Config{
		StoreBackend:      config.StoreMemory,
		Port:              config.DefaultPort,
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    config.DefaultMaxRequestSize,
		ShutdownTimeout:   time.Second,
		SessionIssuer:     config.DefaultSessionIssuer,
		SessionTTL:        time.Hour,
		BcryptCost:        bcrypt.MinCost,
		PhoneRegion:       "US",
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}

	stores, err := storage.Open(cfg)
	s.Require().NoError(err)

	s.recorder = &events.Recorder{}
	sessions := access.NewSessionManager("an-end-to-end-test-secret-of-32-bytes", cfg.SessionIssuer, cfg.SessionTTL, nil)
	handlers, accounts := initHandlers(cfg, stores, s.recorder, sessions)

	s.app = app.NewApplication(cfg)
	s.app.SetApp(stores, app.Auth{
		Middleware: access.Authenticate(sessions, accounts, cfg.Log),
		CallerID:   access.CallerID,
	}, handlers...)
	s.server = httptest.NewServer(s.app.Handler())
}

func (s *BookingServiceSuite) TearDownTest() {
	s.server.Close()
	s.app.Shutdown()
}

func (s *BookingServiceSuite) api() *client.BookingAPI {
	return client.NewBookingAPI(s.server.URL)
}

func (s *BookingServiceSuite) organiser(ctx context.Context) *client.BookingAPI {
	api := s.api()
	_, err := api.Register(ctx, model.Registration{Username: "studio_owner", Password: "secret-pass", Role: model.RoleOrganiser})
	s.Require().NoError(err)
	_, err = api.Login(ctx, "studio_owner", "secret-pass")
	s.Require().NoError(err)
	return api
}

func apiStatus(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func (s *BookingServiceSuite) TestEnrolmentJourney() {
	t := s.T()
	ctx := context.Background()
	org := s.organiser(ctx)

	course, err := org.AddCourse(ctx, model.CourseInput{Name: "Salsa Basics", Description: "First steps in salsa", Duration: "60 minutes"})
	require.NoError(t, err)
	class, err := org.AddClass(ctx, course.ID, model.ClassInput{Date: "2099-06-01", Time: "19:00", Location: "Studio A", Price: 15})
	require.NoError(t, err)

	public := s.api()
	detail, err := public.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Classes, 1)

	enrolment, err := public.Enrol(ctx, model.EnrolmentRequest{ClassID: class.ID, Name: "Ann Lee", Email: "Ann@Example.com", Phone: "555-123-4567"})
	require.NoError(t, err)
	assert.Equal(t, course.ID, enrolment.CourseID)
	assert.Equal(t, "ann@example.com", enrolment.Email)
	assert.Equal(t, "+15551234567", enrolment.Phone)

	_, err = public.Enrol(ctx, model.EnrolmentRequest{ClassID: class.ID, Name: "Ann Lee", Email: "ann@example.com", Phone: "555-123-4567"})
	assert.Equal(t, http.StatusConflict, apiStatus(err))

	participants, err := org.ListParticipants(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, participants.Participants, 1)
	assert.Equal(t, "Salsa Basics", participants.CourseName)

	assert.Contains(t, s.recorder.Types(), events.EnrolmentCreated)
}

func (s *BookingServiceSuite) TestOrganiserRoutesAreGated() {
	t := s.T()
	ctx := context.Background()

	anonymous := s.api()
	_, err := anonymous.AddCourse(ctx, model.CourseInput{Name: "Tango", Description: "Close embrace tango", Duration: "1 hour"})
	assert.Equal(t, http.StatusUnauthorized, apiStatus(err))

	member := s.api()
	_, err = member.Register(ctx, model.Registration{Username: "dancer", Password: "secret-pass", Role: model.RoleMember})
	require.NoError(t, err)
	_, err = member.Login(ctx, "dancer", "secret-pass")
	require.NoError(t, err)

	_, err = member.AddCourse(ctx, model.CourseInput{Name: "Tango", Description: "Close embrace tango", Duration: "1 hour"})
	assert.Equal(t, http.StatusForbidden, apiStatus(err))

	require.NoError(t, member.Logout(ctx))
	courses, err := member.ListCourses(ctx)
	require.NoError(t, err, "public routes stay open after logout")
	assert.Empty(t, courses)
}

func (s *BookingServiceSuite) TestDeleteAccountCascades() {
	t := s.T()
	ctx := context.Background()
	org := s.organiser(ctx)

	course, err := org.AddCourse(ctx, model.CourseInput{Name: "Bachata", Description: "Bachata for beginners", Duration: "90 minutes"})
	require.NoError(t, err)
	class, err := org.AddClass(ctx, course.ID, model.ClassInput{Date: "2099-07-01", Time: "20:00", Location: "Studio B", Price: 10})
	require.NoError(t, err)

	member := s.api()
	account, err := member.Register(ctx, model.Registration{Username: "bob", Password: "secret-pass", Role: model.RoleMember, Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = member.Enrol(ctx, model.EnrolmentRequest{ClassID: class.ID, Name: "Bob Ray", Email: "bob@example.com", Phone: "555-987-6543"})
	require.NoError(t, err)

	deletion, err := org.DeleteAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAccountAndEnrolmentsDeleted, deletion.Outcome)
	assert.Equal(t, 1, deletion.EnrolmentsRemoved)

	participants, err := org.ListParticipants(ctx, class.ID)
	require.NoError(t, err)
	assert.Empty(t, participants.Participants)
}

func (s *BookingServiceSuite) TestIdempotencyKeysDoNotCrossCallers() {
	t := s.T()
	ctx := context.Background()
	org := s.organiser(ctx)
	session, err := s.api().Login(ctx, "studio_owner", "secret-pass")
	require.NoError(t, err)

	course, err := org.AddCourse(ctx, model.CourseInput{Name: "Kizomba", Description: "Kizomba connection basics", Duration: "1 hour"})
	require.NoError(t, err)
	class, err := org.AddClass(ctx, course.ID, model.ClassInput{Date: "2099-08-01", Time: "18:30", Location: "Studio C", Price: 20})
	require.NoError(t, err)

	raw := client.NewHttpClient(s.server.URL)
	key := map[string]string{"Idempotency-Key": "1"}

	ann, err := raw.POSTWithHeaders(ctx, "/api/v1/enrolments", model.EnrolmentRequest{ClassID: class.ID, Name: "Ann Lee", Email: "ann@x.com", Phone: "5551234567"}, key)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, ann.StatusCode)

	bob, err := raw.POSTWithHeaders(ctx, "/api/v1/enrolments", model.EnrolmentRequest{ClassID: class.ID, Name: "Bob Ray", Email: "bob@x.com", Phone: "5559876543"}, key)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, bob.StatusCode)
	assert.NotContains(t, string(bob.Body), "ann@x.com")

	participants, err := org.ListParticipants(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, participants.Participants, 1)
	assert.Equal(t, "ann@x.com", participants.Participants[0].Email)

	input := model.CourseInput{Name: "Zouk", Description: "Brazilian zouk fundamentals", Duration: "90 minutes"}
	organiserCall := client.NewHttpClient(s.server.URL)
	organiserCall.Token = session.Token
	created, err := organiserCall.POSTWithHeaders(ctx, "/api/v1/organiser/courses", input, map[string]string{"Idempotency-Key": "c-1"})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, created.StatusCode)

	anonymous, err := raw.POSTWithHeaders(ctx, "/api/v1/organiser/courses", input, map[string]string{"Idempotency-Key": "c-1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, anonymous.StatusCode)

	creds := model.Credentials{Username: "studio_owner", Password: "secret-pass"}
	_, err = raw.POSTWithHeaders(ctx, "/api/v1/auth/login", creds, map[string]string{"Idempotency-Key": "l-1"})
	require.NoError(t, err)
	login, err := raw.POSTWithHeaders(ctx, "/api/v1/auth/login", creds, map[string]string{"Idempotency-Key": "l-1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, login.StatusCode)
	assert.Empty(t, login.Header.Get("Idempotent-Replayed"))
}

func TestBookingServiceSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceSuite))
}
