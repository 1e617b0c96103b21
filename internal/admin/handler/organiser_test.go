package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dancebook/internal/access"
	"dancebook/internal/admin/service"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// gateOnly enforces the organiser role and otherwise succeeds with empty
// results.
type gateOnly struct {
	service.AdminService
	calls  map[string]string
	update *model.ClassSessionUpdate
}

func (g *gateOnly) record(op string, caller *access.Identity, arg string) error {
	if err := access.RequireOrganiser(caller); err != nil {
		return err
	}
	g.calls[op] = arg
	return nil
}

func (g *gateOnly) AddCourse(ctx context.Context, caller *access.Identity, in *model.CourseInput) (*model.Course, error) {
	if err := g.record("AddCourse", caller, in.Name); err != nil {
		return nil, err
	}
	return &model.Course{ID: "c1", Name: in.Name}, nil
}

func (g *gateOnly) DeleteClass(ctx context.Context, caller *access.Identity, id string) error {
	return g.record("DeleteClass", caller, id)
}

func (g *gateOnly) UpdateClass(ctx context.Context, caller *access.Identity, id string, update *model.ClassSessionUpdate) (*model.ClassSession, error) {
	if err := g.record("UpdateClass", caller, id); err != nil {
		return nil, err
	}
	g.update = update
	return &model.ClassSession{ID: id, Location: *update.Location}, nil
}

func (g *gateOnly) ListParticipants(ctx context.Context, caller *access.Identity, classID string) (*model.ClassParticipants, error) {
	if err := g.record("ListParticipants", caller, classID); err != nil {
		return nil, err
	}
	return &model.ClassParticipants{Class: &model.ClassSession{ID: classID}, Participants: []model.ParticipantView{}}, nil
}

func withIdentity(id *access.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != nil {
				r = r.WithContext(access.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func TestOrganiserRoutes(t *testing.T) {
	organiser := &access.Identity{AccountID: "o1", Username: "olga", Role: model.RoleOrganiser}
	member := &access.Identity{AccountID: "m1", Username: "ann", Role: model.RoleMember}

	tests := []struct {
		name       string
		caller     *access.Identity
		method     string
		path       string
		body       string
		wantStatus int
		wantCall   string
		wantArg    string
	}{
		{"add course", organiser, http.MethodPost, "/api/v1/organiser/courses", `{"name":"Salsa","description":"Beginner salsa","duration":"60 minutes"}`, http.StatusCreated, "AddCourse", "Salsa"},
		{"add course as member", member, http.MethodPost, "/api/v1/organiser/courses", `{"name":"Salsa"}`, http.StatusForbidden, "", ""},
		{"add course anonymously", nil, http.MethodPost, "/api/v1/organiser/courses", `{"name":"Salsa"}`, http.StatusUnauthorized, "", ""},
		{"update class", organiser, http.MethodPatch, "/api/v1/organiser/classes/k1", `{"location":"Hall B"}`, http.StatusOK, "UpdateClass", "k1"},
		{"delete class", organiser, http.MethodDelete, "/api/v1/organiser/classes/k2", "", http.StatusNoContent, "DeleteClass", "k2"},
		{"participants", organiser, http.MethodGet, "/api/v1/organiser/classes/k3/participants", "", http.StatusOK, "ListParticipants", "k3"},
		{"participants as member", member, http.MethodGet, "/api/v1/organiser/classes/k3/participants", "", http.StatusForbidden, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &gateOnly{calls: map[string]string{}}
			router := httprouter.New()
			NewOrganiserHandler(svc, logger.Discard()).RegisterRoutes(router)
			handler := withIdentity(tt.caller)(router)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCall == "" {
				if len(svc.calls) != 0 {
					t.Errorf("rejected request reached the service: %v", svc.calls)
				}
				return
			}
			if got := svc.calls[tt.wantCall]; got != tt.wantArg {
				t.Errorf("%s received %q, want %q", tt.wantCall, got, tt.wantArg)
			}
		})
	}
}

func TestUpdateClass_PriceAsString(t *testing.T) {
	organiser := &access.Identity{AccountID: "o1", Username: "olga", Role: model.RoleOrganiser}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantPrice  float64
	}{
		{"numeric string", `{"location":"Hall B","price":"20"}`, http.StatusOK, 20},
		{"number", `{"location":"Hall B","price":20}`, http.StatusOK, 20},
		{"word", `{"location":"Hall B","price":"twenty"}`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &gateOnly{calls: map[string]string{}}
			router := httprouter.New()
			NewOrganiserHandler(svc, logger.Discard()).RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/organiser/classes/k1", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			withIdentity(organiser)(router).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if svc.update != nil {
					t.Error("malformed price reached the service")
				}
				return
			}
			if svc.update == nil || svc.update.Price == nil || *svc.update.Price != tt.wantPrice {
				t.Errorf("update = %+v, want price %v", svc.update, tt.wantPrice)
			}
		})
	}
}
