// Package speech hosts the optional speech-to-text and text-to-speech
// adapters. Both are host capabilities that may be absent; the service is
// simply not constructed then and every caller degrades gracefully.
package speech

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kavyanshpal/kpchat/internal/model/speech"
	"github.com/kavyanshpal/kpchat/internal/service/render"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Synthesizer turns plain text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (speech.Utterance, error)
}

// Service fans synthesized utterances out to connected voice listeners and
// exposes transcription to the handlers.
type Service struct {
	transcriber Transcriber
	synthesizer Synthesizer
	log         *zap.Logger

	mu        sync.Mutex
	listeners map[chan speech.Utterance]struct{}
}

// NewService wires the speech adapters.
func NewService(transcriber Transcriber, synthesizer Synthesizer, log *zap.Logger) *Service {
	return &Service{
		transcriber: transcriber,
		synthesizer: synthesizer,
		log:         log,
		listeners:   make(map[chan speech.Utterance]struct{}),
	}
}

// Transcribe runs one speech-to-text call.
func (s *Service) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return s.transcriber.Transcribe(ctx, audio, mimeType)
}

// Synthesize runs one text-to-speech call.
func (s *Service) Synthesize(ctx context.Context, text string) (speech.Utterance, error) {
	return s.synthesizer.Synthesize(ctx, text)
}

// Speak synthesizes the text (markdown stripped) and broadcasts the audio to
// connected listeners. With no listeners the utterance is dropped. Satisfies
// the exchange controller's Speaker contract.
func (s *Service) Speak(ctx context.Context, text string) error {
	utterance, err := s.synthesizer.Synthesize(ctx, render.SpeechText(text))
	if err != nil {
		return err
	}
	utterance.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.listeners {
		select {
		case ch <- utterance:
		default:
			// Slow listener; skip rather than block the exchange.
			s.log.Debug("voice listener lagging, utterance dropped")
		}
	}
	return nil
}

// Subscribe registers a voice listener. The returned cancel func must be
// called when the listener goes away.
func (s *Service) Subscribe() (<-chan speech.Utterance, func()) {
	ch := make(chan speech.Utterance, 4)

	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.listeners, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}
