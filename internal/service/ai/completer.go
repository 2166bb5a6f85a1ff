// Package ai adapts external generative-language providers behind a single
// completion contract.
package ai

import "context"

// Message is one prior turn serialized for the provider.
type Message struct {
	Role string // "user" or "model"
	Text string
}

// Request carries everything one completion call needs.
type Request struct {
	Model    string
	System   string
	History  []Message
	UserText string
}

// Completer turns a prompt plus history into response text. An empty reply
// with a nil error is valid and means the provider had nothing to say.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
