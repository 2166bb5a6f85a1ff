package speech

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	speechService "github.com/kavyanshpal/kpchat/internal/service/speech"
	"github.com/kavyanshpal/kpchat/pkg/utils"
)

// maxAudioBytes caps uploaded recordings at 10 MiB.
const maxAudioBytes = 10 << 20

// Handler exposes speech-to-text and text-to-speech. The service is nil when
// the host lacks the capability; every endpoint then reports 503.
type Handler struct {
	speechSvc *speechService.Service
	log       *zap.Logger
}

// New creates the speech handler. speechSvc may be nil.
func New(speechSvc *speechService.Service, log *zap.Logger) *Handler {
	return &Handler{speechSvc: speechSvc, log: log}
}

// RegisterRoutes mounts the speech endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/speech/transcribe", h.handleTranscribe)
	r.Post("/speech/synthesize", h.handleSynthesize)
	r.Get("/speech/transcribe/stream", h.handleTranscribeSocket)
	r.Get("/speech/voice", h.handleVoiceSocket)
}

func (h *Handler) available(w http.ResponseWriter) bool {
	if h.speechSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech unavailable")
		return false
	}
	return true
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "unreadable audio body")
		return
	}
	if len(audio) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "empty audio body")
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	text, err := h.speechSvc.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		h.log.Warn("transcription failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "transcription failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	utterance, err := h.speechSvc.Synthesize(r.Context(), payload.Text)
	if err != nil {
		h.log.Warn("synthesis failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "synthesis failed")
		return
	}

	w.Header().Set("Content-Type", utterance.MimeType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(utterance.Audio); err != nil {
		h.log.Debug("synthesis response write failed", zap.Error(err))
	}
}
