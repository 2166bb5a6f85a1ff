package speech

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	model "github.com/kavyanshpal/kpchat/internal/model/speech"
)

type fakeSynthesizer struct {
	gotText string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) (model.Utterance, error) {
	f.gotText = text
	return model.Utterance{Text: text, Audio: []byte{0x01}, MimeType: "audio/wav"}, nil
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return "hello there", nil
}

func TestSpeakBroadcastsToListeners(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc := NewService(fakeTranscriber{}, synth, zap.NewNop())

	ch, cancel := svc.Subscribe()
	defer cancel()

	if err := svc.Speak(context.Background(), "**bold** reply"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}

	select {
	case utterance := <-ch:
		if len(utterance.Audio) == 0 {
			t.Fatal("expected audio bytes")
		}
	case <-time.After(time.Second):
		t.Fatal("no utterance delivered")
	}

	// Markdown punctuation is stripped before synthesis.
	if synth.gotText != "bold reply" {
		t.Fatalf("unexpected synthesized text: %q", synth.gotText)
	}
}

func TestSpeakWithoutListenersDropsUtterance(t *testing.T) {
	svc := NewService(fakeTranscriber{}, &fakeSynthesizer{}, zap.NewNop())

	if err := svc.Speak(context.Background(), "nobody listening"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	svc := NewService(fakeTranscriber{}, &fakeSynthesizer{}, zap.NewNop())

	ch, cancel := svc.Subscribe()
	cancel()

	if err := svc.Speak(context.Background(), "after cancel"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}

	select {
	case <-ch:
		t.Fatal("utterance delivered after unsubscribe")
	default:
	}
}
