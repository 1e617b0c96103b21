package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("errors.Is should see through AppError")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Course not found"},
			expected: "NOT_FOUND: Course not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeStorage,
				Message: "Failed to remove enrolments",
				Err:     errors.New("socket closed"),
			},
			expected: "STORAGE_ERROR: Failed to remove enrolments (caused by: socket closed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Course"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Class", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("login"), CodeUnauthorized, http.StatusUnauthorized},
		{"invalid credentials", InvalidCredentials(), CodeInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"duplicate enrolment", DuplicateEnrolment("c1", "ann@x.com"), CodeDuplicateEnrolment, http.StatusConflict},
		{"storage", Storage("down", errors.New("x")), CodeStorage, http.StatusServiceUnavailable},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Kafka"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestDuplicateEnrolmentDetails(t *testing.T) {
	err := DuplicateEnrolment("class-1", "ann@x.com")

	if err.Details["class_id"] != "class-1" {
		t.Errorf("expected class_id detail, got %v", err.Details["class_id"])
	}
	if err.Details["email"] != "ann@x.com" {
		t.Errorf("expected email detail, got %v", err.Details["email"])
	}
}

func TestStatusCode_DefaultsToInternal(t *testing.T) {
	err := &AppError{Code: CodeInternal, Message: "no status"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500 for zero status, got %d", err.StatusCode())
	}
}

func TestIsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("admin: %w", Forbidden("organisers only"))

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should unwrap fmt.Errorf chains")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("IsAppError() should return false for plain errors")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Account")
	if got := AsAppError(fmt.Errorf("wrap: %w", appErr)); got != appErr {
		t.Errorf("AsAppError() should return the wrapped AppError")
	}

	plain := errors.New("plain")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("AsAppError() should fall back to internal, got %s", got.Code)
	}
	if got.Err != plain {
		t.Errorf("AsAppError() should keep the original error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("enrol: %w", DuplicateEnrolment("c", "e"))

	if !HasCode(err, CodeDuplicateEnrolment) {
		t.Errorf("expected HasCode to match duplicate enrolment")
	}
	if HasCode(err, CodeConflict) {
		t.Errorf("expected HasCode not to match conflict")
	}
	if HasCode(nil, CodeConflict) {
		t.Errorf("expected HasCode(nil) to be false")
	}
}

func TestAppError_ToJSON_HidesCause(t *testing.T) {
	err := Storage("Failed to delete account", errors.New("mongo: secret-host unreachable"))
	body := string(err.ToJSON())

	if !strings.Contains(body, CodeStorage) {
		t.Errorf("ToJSON() should contain the error code, got %s", body)
	}
	if strings.Contains(body, "secret-host") {
		t.Errorf("ToJSON() must not leak the wrapped cause, got %s", body)
	}
}
