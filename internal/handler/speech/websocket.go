package speech

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	speechmodel "github.com/kavyanshpal/kpchat/internal/model/speech"
	"github.com/kavyanshpal/kpchat/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Local single-user service; origin checking adds nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// handleTranscribeSocket streams incremental transcription. The client sends
// binary audio frames; each frame is appended to the recording and the whole
// buffer is re-transcribed into an interim chunk. Any text frame ends the
// recording and produces the final chunk.
func (h *Handler) handleTranscribeSocket(w http.ResponseWriter, r *http.Request) {
	if h.speechSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("transcribe socket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	mimeType := r.URL.Query().Get("mime")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	var recording bytes.Buffer
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		final := msgType != websocket.BinaryMessage
		if !final {
			recording.Write(data)
			if recording.Len() > maxAudioBytes {
				h.sendChunk(conn, speechmodel.TranscriptChunk{Text: "", IsFinal: true, CreatedAt: time.Now().UTC()})
				return
			}
		}

		text, err := h.speechSvc.Transcribe(r.Context(), recording.Bytes(), mimeType)
		if err != nil {
			h.log.Warn("incremental transcription failed", zap.Error(err))
			if final {
				return
			}
			continue
		}

		h.sendChunk(conn, speechmodel.TranscriptChunk{
			Text:      text,
			IsFinal:   final,
			CreatedAt: time.Now().UTC(),
		})
		if final {
			return
		}
	}
}

func (h *Handler) sendChunk(conn *websocket.Conn, chunk speechmodel.TranscriptChunk) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(chunk); err != nil {
		h.log.Debug("transcript chunk write failed", zap.Error(err))
	}
}

// handleVoiceSocket streams spoken replies to the client. Each broadcast
// utterance arrives as one binary frame; the connection stays open until the
// client goes away.
func (h *Handler) handleVoiceSocket(w http.ResponseWriter, r *http.Request) {
	if h.speechSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("voice socket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	utterances, cancel := h.speechSvc.Subscribe()
	defer cancel()

	// Drain client frames so close/ping handling keeps working, and use the
	// read loop's exit to tear down the subscription.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case utterance := <-utterances:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, utterance.Audio); err != nil {
				h.log.Debug("voice socket write failed", zap.Error(err))
				return
			}
		}
	}
}
