package handler

import (
	"net/http"

	"dancebook/internal/bookings/service"
	httputil "dancebook/pkg/http"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EnrolmentHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewEnrolmentHandler(service service.BookingService, log *logger.Logger) *EnrolmentHandler {
	return &EnrolmentHandler{
		service: service,
		log:     log,
	}
}

// Enrol accepts anonymous and authenticated callers alike.
func (h *EnrolmentHandler) Enrol(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.EnrolmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Enrol", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	enrolment, err := h.service.Enrol(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Enrol", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, enrolment); err != nil {
		h.log.Error("failed to write created response", "handler", "Enrol", "operation", "WriteCreated", "error", err)
	}
}

func (h *EnrolmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/enrolments", h.Enrol)
}
