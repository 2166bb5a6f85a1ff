package speech

import "time"

// TranscriptChunk is one incremental speech-to-text result. Interim chunks
// may be revised; a final chunk closes the utterance.
type TranscriptChunk struct {
	Text      string    `json:"text"`
	IsFinal   bool      `json:"isFinal"`
	CreatedAt time.Time `json:"createdAt"`
}

// Utterance is synthesized audio for one piece of text.
type Utterance struct {
	Text      string    `json:"text"`
	Audio     []byte    `json:"-"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}
