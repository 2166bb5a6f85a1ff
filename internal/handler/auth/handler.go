package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authService "github.com/kavyanshpal/kpchat/internal/service/auth"
	chatService "github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/pkg/utils"
)

// Handler exposes register/login/logout over HTTP.
type Handler struct {
	authSvc *authService.Service
	chatSvc *chatService.Service
}

// New creates the auth handler.
func New(authSvc *authService.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{authSvc: authSvc, chatSvc: chatSvc}
}

// RegisterRoutes mounts the auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := h.authSvc.Register(payload.Name, payload.Email, payload.Password)
	switch {
	case errors.Is(err, authService.ErrMissingField):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, authService.ErrDuplicateEmail):
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	// A fresh session always has somewhere to chat.
	if _, err := h.chatSvc.Ensure(identity.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation setup failed")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, identity)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := h.authSvc.Authenticate(payload.Email, payload.Password)
	switch {
	case errors.Is(err, authService.ErrMissingField):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, authService.ErrInvalidCredentials):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if _, err := h.chatSvc.Ensure(identity.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation setup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, identity)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok, err := h.authSvc.Current()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	utils.RespondJSON(w, http.StatusOK, identity)
}
