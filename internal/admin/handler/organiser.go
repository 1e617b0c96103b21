package handler

import (
	"net/http"

	"dancebook/internal/access"
	"dancebook/internal/admin/service"
	httputil "dancebook/pkg/http"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// OrganiserHandler exposes the administration service. It passes the
// request's identity through; the service enforces the role.
type OrganiserHandler struct {
	service service.AdminService
	log     *logger.Logger
}

func NewOrganiserHandler(service service.AdminService, log *logger.Logger) *OrganiserHandler {
	return &OrganiserHandler{
		service: service,
		log:     log,
	}
}

func (h *OrganiserHandler) AddCourse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in model.CourseInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "AddCourse", err)
		return
	}

	course, err := h.service.AddCourse(r.Context(), access.FromContext(r.Context()), &in)
	if err != nil {
		h.writeError(w, "AddCourse", err)
		return
	}
	h.writeCreated(w, "AddCourse", course)
}

func (h *OrganiserHandler) DeleteCourse(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteCourse(r.Context(), access.FromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteCourse", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *OrganiserHandler) AddClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in model.ClassInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "AddClass", err)
		return
	}

	class, err := h.service.AddClass(r.Context(), access.FromContext(r.Context()), ps.ByName("id"), &in)
	if err != nil {
		h.writeError(w, "AddClass", err)
		return
	}
	h.writeCreated(w, "AddClass", class)
}

func (h *OrganiserHandler) UpdateClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ClassSessionUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateClass", err)
		return
	}

	class, err := h.service.UpdateClass(r.Context(), access.FromContext(r.Context()), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateClass", err)
		return
	}
	h.writeSuccess(w, "UpdateClass", class)
}

func (h *OrganiserHandler) DeleteClass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteClass(r.Context(), access.FromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteClass", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *OrganiserHandler) ListClasses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	classes, err := h.service.ListAllClassesWithParticipants(r.Context(), access.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, "ListClasses", err)
		return
	}
	h.writeSuccess(w, "ListClasses", classes)
}

func (h *OrganiserHandler) ListParticipants(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	participants, err := h.service.ListParticipants(r.Context(), access.FromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListParticipants", err)
		return
	}
	h.writeSuccess(w, "ListParticipants", participants)
}

func (h *OrganiserHandler) ListAccounts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listing, err := h.service.ListAccounts(r.Context(), access.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, "ListAccounts", err)
		return
	}
	h.writeSuccess(w, "ListAccounts", listing)
}

func (h *OrganiserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	summary, err := h.service.DeleteAccount(r.Context(), access.FromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "DeleteAccount", err)
		return
	}
	h.writeSuccess(w, "DeleteAccount", summary)
}

func (h *OrganiserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *OrganiserHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrganiserHandler) writeCreated(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func (h *OrganiserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/organiser/courses", h.AddCourse)
	router.DELETE("/api/v1/organiser/courses/:id", h.DeleteCourse)
	router.POST("/api/v1/organiser/courses/:id/classes", h.AddClass)
	router.GET("/api/v1/organiser/classes", h.ListClasses)
	router.PATCH("/api/v1/organiser/classes/:id", h.UpdateClass)
	router.DELETE("/api/v1/organiser/classes/:id", h.DeleteClass)
	router.GET("/api/v1/organiser/classes/:id/participants", h.ListParticipants)
	router.GET("/api/v1/organiser/accounts", h.ListAccounts)
	router.DELETE("/api/v1/organiser/accounts/:id", h.DeleteAccount)
}
