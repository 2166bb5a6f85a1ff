package chat

import "unicode/utf8"

// DefaultTitle is the placeholder title until the first turn lands.
const DefaultTitle = "New Chat"

// titleLimit caps a derived title at 30 runes before the ellipsis kicks in.
const titleLimit = 30

// Conversation is an ordered, titled sequence of turns.
type Conversation struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Turns     []Turn `json:"turns"`
	UpdatedAt int64  `json:"updatedAt"` // epoch milliseconds
}

// DeriveTitle produces a conversation title from the first turn's text:
// the text itself when it fits, otherwise the first 30 runes plus "...".
func DeriveTitle(text string) string {
	if utf8.RuneCountInString(text) <= titleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleLimit]) + "..."
}
