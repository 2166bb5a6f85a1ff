// Package render turns model-turn markdown into HTML for the UI and into
// plain text for the speech synthesizer.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown using a GFM-enabled goldmark instance.
type Renderer struct {
	md goldmark.Markdown
}

// New builds the shared renderer.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders markdown source to HTML.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// SpeechText strips markdown punctuation so spoken output does not read
// formatting characters aloud.
func SpeechText(source string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '_', '~', '`':
			return -1
		}
		return r
	}, source)
}
