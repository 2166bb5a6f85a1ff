package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kavyanshpal/kpchat/internal/service/exchange"
	"github.com/kavyanshpal/kpchat/pkg/utils"
)

// Suggestions are the shortcut prompts shown on an empty conversation.
var Suggestions = []string{
	"Who created you?",
	"Write a poem about coding",
	"Explain quantum computing",
	"Help me plan a trip",
}

// Handler exposes message submission.
type Handler struct {
	controller *exchange.Controller
}

// New creates the chat handler. controller may be nil when no completion
// provider is configured.
func New(controller *exchange.Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleSend)
	r.Get("/suggestions", h.handleSuggestions)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	if h.controller == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai unavailable")
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.controller.Submit(r.Context(), payload.Text)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "submission failed")
		return
	}
	if result == nil {
		// Blank input, no session, no conversation, or an exchange already
		// in flight: ignored without effect.
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, Suggestions)
}
