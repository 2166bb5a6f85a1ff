package prefs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	model "github.com/kavyanshpal/kpchat/internal/model/prefs"
	authService "github.com/kavyanshpal/kpchat/internal/service/auth"
	prefsService "github.com/kavyanshpal/kpchat/internal/service/prefs"
	"github.com/kavyanshpal/kpchat/pkg/utils"
)

// Handler exposes preferences and the model catalog.
type Handler struct {
	authSvc  *authService.Service
	prefsSvc *prefsService.Service
}

// New creates the preferences handler.
func New(authSvc *authService.Service, prefsSvc *prefsService.Service) *Handler {
	return &Handler{authSvc: authSvc, prefsSvc: prefsSvc}
}

// RegisterRoutes mounts the preference endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/preferences", h.handleGet)
	r.Put("/preferences", h.handlePut)
	r.Get("/models", h.handleModels)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok, err := h.authSvc.Current()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	p, err := h.prefsSvc.Get(identity.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "preferences lookup failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	identity, ok, err := h.authSvc.Current()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var p model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.prefsSvc.Put(identity.ID, p)
	switch {
	case errors.Is(err, prefsService.ErrUnknownTheme), errors.Is(err, prefsService.ErrUnknownModel):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, "preferences update failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, model.Models())
}
