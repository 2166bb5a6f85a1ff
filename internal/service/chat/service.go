// Package chat owns the per-account conversation collection: ordered
// conversations, ordered turns, the active-selection pointer, and the
// one-time title derivation rule.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kavyanshpal/kpchat/internal/model/chat"
	"github.com/kavyanshpal/kpchat/internal/store"
)

var ErrConversationNotFound = errors.New("conversation not found")

// collection is the persisted shape of one account's conversations.
// Items are ordered newest-created first.
type collection struct {
	ActiveID string              `json:"activeId"`
	Items    []chat.Conversation `json:"items"`
}

// Service encapsulates conversation state management. Every mutation is
// persisted before the call returns, so a collection observed through any
// operation always satisfies the activity invariant: when items exist,
// exactly one of them is active.
type Service struct {
	mu    sync.Mutex
	store *store.Store
}

// NewService wires the conversation store to durable storage.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns the account's conversations, newest-created first, and the
// active conversation id ("" when the collection is empty).
func (s *Service) List(accountID string) ([]chat.Conversation, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return nil, "", err
	}
	items := make([]chat.Conversation, len(col.Items))
	copy(items, col.Items)
	return items, col.ActiveID, nil
}

// Create prepends a new empty conversation with the default title and makes
// it active.
func (s *Service) Create(accountID string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(accountID)
}

// Ensure synthesizes an empty active conversation when the collection is
// empty, and otherwise repairs a dangling active pointer. It returns the
// active conversation.
func (s *Service) Ensure(accountID string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return chat.Conversation{}, err
	}
	if len(col.Items) == 0 {
		return s.createLocked(accountID)
	}

	if idx := indexOf(col.Items, col.ActiveID); idx >= 0 {
		return col.Items[idx], nil
	}

	col.ActiveID = col.Items[0].ID
	if err := s.save(accountID, col); err != nil {
		return chat.Conversation{}, err
	}
	return col.Items[0], nil
}

// Select sets the active pointer. An unknown id is a silent no-op.
func (s *Service) Select(accountID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return err
	}
	if indexOf(col.Items, conversationID) < 0 {
		return nil
	}
	col.ActiveID = conversationID
	return s.save(accountID, col)
}

// Delete removes the conversation. When the active one is deleted, the new
// head of the remaining collection becomes active, or the pointer clears if
// nothing remains (callers re-synthesize via Ensure).
func (s *Service) Delete(accountID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return err
	}

	idx := indexOf(col.Items, conversationID)
	if idx < 0 {
		return nil
	}
	col.Items = append(col.Items[:idx], col.Items[idx+1:]...)

	if col.ActiveID == conversationID {
		if len(col.Items) > 0 {
			col.ActiveID = col.Items[0].ID
		} else {
			col.ActiveID = ""
		}
	}
	return s.save(accountID, col)
}

// Active returns the currently selected conversation.
func (s *Service) Active(accountID string) (chat.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return chat.Conversation{}, false, err
	}
	idx := indexOf(col.Items, col.ActiveID)
	if idx < 0 {
		return chat.Conversation{}, false, nil
	}
	return col.Items[idx], true, nil
}

// Get returns one conversation by id.
func (s *Service) Get(accountID, conversationID string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return chat.Conversation{}, err
	}
	idx := indexOf(col.Items, conversationID)
	if idx < 0 {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return col.Items[idx], nil
}

// NewTurn mints a turn with a fresh id and the current timestamp.
func NewTurn(role chat.Role, text string) chat.Turn {
	return chat.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// AppendTurn appends the turn to the conversation's sequence, applies the
// one-time title derivation on the first turn, and bumps UpdatedAt. An
// unknown conversation id is a logic error reported as
// ErrConversationNotFound; the rest of the collection is untouched.
func (s *Service) AppendTurn(accountID, conversationID string, turn chat.Turn) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(accountID)
	if err != nil {
		return chat.Conversation{}, err
	}

	idx := indexOf(col.Items, conversationID)
	if idx < 0 {
		return chat.Conversation{}, ErrConversationNotFound
	}

	conv := &col.Items[idx]
	if len(conv.Turns) == 0 {
		conv.Title = chat.DeriveTitle(turn.Text)
	}
	conv.Turns = append(conv.Turns, turn)

	// Strictly increasing even for appends landing in the same millisecond.
	now := time.Now().UnixMilli()
	if now <= conv.UpdatedAt {
		now = conv.UpdatedAt + 1
	}
	conv.UpdatedAt = now

	if err := s.save(accountID, col); err != nil {
		return chat.Conversation{}, err
	}
	return *conv, nil
}

func (s *Service) createLocked(accountID string) (chat.Conversation, error) {
	col, err := s.load(accountID)
	if err != nil {
		return chat.Conversation{}, err
	}

	conv := chat.Conversation{
		ID:        uuid.NewString(),
		Title:     chat.DefaultTitle,
		Turns:     []chat.Turn{},
		UpdatedAt: time.Now().UnixMilli(),
	}
	col.Items = append([]chat.Conversation{conv}, col.Items...)
	col.ActiveID = conv.ID

	if err := s.save(accountID, col); err != nil {
		return chat.Conversation{}, err
	}
	return conv, nil
}

func (s *Service) load(accountID string) (collection, error) {
	var col collection
	if _, err := s.store.Get(store.ConversationsKey(accountID), &col); err != nil {
		return collection{}, err
	}
	return col, nil
}

func (s *Service) save(accountID string, col collection) error {
	return s.store.Put(store.ConversationsKey(accountID), col)
}

func indexOf(items []chat.Conversation, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
