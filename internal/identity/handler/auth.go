package handler

import (
	"net/http"

	"dancebook/internal/access"
	"dancebook/internal/identity/service"
	apperrors "dancebook/pkg/errors"
	httputil "dancebook/pkg/http"
	"dancebook/pkg/logger"
	"dancebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service  service.AccountService
	sessions *access.SessionManager
	log      *logger.Logger
}

func NewAuthHandler(service service.AccountService, sessions *access.SessionManager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.Registration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	account, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, account); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	account, err := h.service.Authenticate(r.Context(), &creds)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	session, err := h.sessions.Issue(account)
	if err != nil {
		h.writeError(w, "Login", apperrors.Internal("Failed to start session", err))
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := access.RequireAuthenticated(access.FromContext(r.Context())); err != nil {
		h.writeError(w, "Logout", err)
		return
	}

	token, _ := httputil.BearerToken(r)
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.writeError(w, "Logout", apperrors.Unavailable("session store"))
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := access.FromContext(r.Context())
	if err := access.RequireAuthenticated(identity); err != nil {
		h.writeError(w, "Me", err)
		return
	}

	account, err := h.service.GetByID(r.Context(), identity.AccountID)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	if err := httputil.WriteSuccess(w, account); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/logout", h.Logout)
	router.GET("/api/v1/auth/me", h.Me)
}
