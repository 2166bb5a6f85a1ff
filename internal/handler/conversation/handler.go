package conversation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	model "github.com/kavyanshpal/kpchat/internal/model/account"
	chatmodel "github.com/kavyanshpal/kpchat/internal/model/chat"
	authService "github.com/kavyanshpal/kpchat/internal/service/auth"
	chatService "github.com/kavyanshpal/kpchat/internal/service/chat"
	"github.com/kavyanshpal/kpchat/internal/service/render"
	"github.com/kavyanshpal/kpchat/pkg/utils"
)

// Handler exposes the conversation collection over HTTP.
type Handler struct {
	authSvc  *authService.Service
	chatSvc  *chatService.Service
	renderer *render.Renderer
}

// New creates the conversation handler.
func New(authSvc *authService.Service, chatSvc *chatService.Service, renderer *render.Renderer) *Handler {
	return &Handler{authSvc: authSvc, chatSvc: chatSvc, renderer: renderer}
}

// RegisterRoutes mounts the conversation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleList)
	r.Post("/conversations", h.handleCreate)
	r.Get("/conversations/{conversationID}", h.handleGet)
	r.Post("/conversations/{conversationID}/select", h.handleSelect)
	r.Delete("/conversations/{conversationID}", h.handleDelete)
}

// listEntry is the sidebar projection: no turn bodies.
type listEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	TurnCount int    `json:"turnCount"`
	UpdatedAt int64  `json:"updatedAt"`
	Active    bool   `json:"active"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w)
	if !ok {
		return
	}

	// Heal an empty collection before listing.
	if _, err := h.chatSvc.Ensure(identity.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation setup failed")
		return
	}

	items, activeID, err := h.chatSvc.List(identity.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation lookup failed")
		return
	}

	entries := make([]listEntry, 0, len(items))
	for _, c := range items {
		entries = append(entries, listEntry{
			ID:        c.ID,
			Title:     c.Title,
			TurnCount: len(c.Turns),
			UpdatedAt: c.UpdatedAt,
			Active:    c.ID == activeID,
		})
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w)
	if !ok {
		return
	}

	conv, err := h.chatSvc.Create(identity.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation creation failed")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, conv)
}

// renderedTurn pairs a turn with its HTML rendering for model output.
type renderedTurn struct {
	chatmodel.Turn
	HTML string `json:"html,omitempty"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w)
	if !ok {
		return
	}

	conv, err := h.chatSvc.Get(identity.ID, chi.URLParam(r, "conversationID"))
	if errors.Is(err, chatService.ErrConversationNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation lookup failed")
		return
	}

	if r.URL.Query().Get("format") != "html" {
		utils.RespondJSON(w, http.StatusOK, conv)
		return
	}

	turns := make([]renderedTurn, 0, len(conv.Turns))
	for _, t := range conv.Turns {
		entry := renderedTurn{Turn: t}
		if t.Role == chatmodel.RoleModel {
			html, err := h.renderer.HTML(t.Text)
			if err == nil {
				entry.HTML = html
			}
		}
		turns = append(turns, entry)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"id":        conv.ID,
		"title":     conv.Title,
		"updatedAt": conv.UpdatedAt,
		"turns":     turns,
	})
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w)
	if !ok {
		return
	}

	// Unknown ids are a silent no-op by design.
	if err := h.chatSvc.Select(identity.ID, chi.URLParam(r, "conversationID")); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "selection failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "selected"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w)
	if !ok {
		return
	}

	if err := h.chatSvc.Delete(identity.ID, chi.URLParam(r, "conversationID")); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "deletion failed")
		return
	}

	// Auto-heal keeps one active conversation around for the UI.
	if _, err := h.chatSvc.Ensure(identity.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "conversation setup failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) currentIdentity(w http.ResponseWriter) (model.Identity, bool) {
	identity, ok, err := h.authSvc.Current()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "session lookup failed")
		return model.Identity{}, false
	}
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not logged in")
		return model.Identity{}, false
	}
	return identity, true
}
