package handler

import (
	"net/http"

	"dancebook/internal/catalog/service"
	httputil "dancebook/pkg/http"
	"dancebook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCourses", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, courses); err != nil {
		h.log.Error("failed to write success response", "handler", "ListCourses", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.service.GetCourse(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCourse", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCourse", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) ListClasses(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	classes, err := h.service.ListClassesForCourse(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListClasses", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, classes); err != nil {
		h.log.Error("failed to write success response", "handler", "ListClasses", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/courses", h.ListCourses)
	router.GET("/api/v1/courses/:id", h.GetCourse)
	router.GET("/api/v1/courses/:id/classes", h.ListClasses)
}
