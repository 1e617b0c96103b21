package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "dancebook/pkg/errors"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	enrolFunc func(ctx context.Context, req *model.EnrolmentRequest) (*model.Enrolment, error)
}

func (m *mockBookingService) Enrol(ctx context.Context, req *model.EnrolmentRequest) (*model.Enrolment, error) {
	return m.enrolFunc(ctx, req)
}

func TestEnrolHandler(t *testing.T) {
	seen := map[string]bool{}
	svc := &mockBookingService{
		enrolFunc: func(ctx context.Context, req *model.EnrolmentRequest) (*model.Enrolment, error) {
			key := req.ClassID + "|" + req.Email
			if seen[key] {
				return nil, apperrors.DuplicateEnrolment(req.ClassID, req.Email)
			}
			seen[key] = true
			return &model.Enrolment{ID: "e1", ClassID: req.ClassID, Email: req.Email}, nil
		},
	}
	router := httprouter.New()
	NewEnrolmentHandler(svc, logger.Discard()).RegisterRoutes(router)

	body := `{"class_id":"c1","name":"Ann","email":"ann@x.com","phone":"5551234567"}`
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"first", body, http.StatusCreated},
		{"repeat", body, http.StatusConflict},
		{"empty body", "", http.StatusBadRequest},
		{"unknown field", `{"class_id":"c1","seat":4}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/enrolments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
