package speech

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kavyanshpal/kpchat/internal/config"
	"github.com/kavyanshpal/kpchat/internal/model/speech"
)

// GeminiAdapter implements Transcriber and Synthesizer over the Gemini API:
// transcription by sending the audio as an inline part, synthesis through a
// TTS-capable model with an audio response modality.
type GeminiAdapter struct {
	client   *genai.Client
	asrModel string
	ttsModel string
	voice    string
}

// NewGeminiAdapter builds the Gemini speech adapter from configuration.
func NewGeminiAdapter(ctx context.Context, cfg config.SpeechConfig) (*GeminiAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("speech api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiAdapter{
		client:   client,
		asrModel: cfg.ASRModel,
		ttsModel: cfg.TTSModel,
		voice:    cfg.Voice,
	}, nil
}

// Transcribe returns the verbatim transcript of the audio.
func (g *GeminiAdapter) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(audio, mimeType),
		genai.NewPartFromText("Transcribe the audio verbatim. Reply with the transcript only."),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.asrModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return resp.Text(), nil
}

// Synthesize returns spoken audio for the text.
func (g *GeminiAdapter) Synthesize(ctx context.Context, text string) (speech.Utterance, error) {
	if text == "" {
		return speech.Utterance{}, fmt.Errorf("nothing to synthesize")
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.ttsModel, contents, cfg)
	if err != nil {
		return speech.Utterance{}, fmt.Errorf("synthesize speech: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return speech.Utterance{
					Text:     text,
					Audio:    part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return speech.Utterance{}, fmt.Errorf("no audio in response")
}
