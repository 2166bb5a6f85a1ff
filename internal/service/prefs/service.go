// Package prefs manages the per-account preference record: theme, selected
// completion model, and the voice toggle.
package prefs

import (
	"errors"

	"github.com/kavyanshpal/kpchat/internal/model/prefs"
	"github.com/kavyanshpal/kpchat/internal/store"
)

var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrUnknownModel = errors.New("unknown model")
)

// Service reads and writes preferences through the key-value store.
type Service struct {
	store *store.Store
}

// NewService wires preferences to durable storage.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Get returns the stored preferences, or defaults when nothing is stored.
func (s *Service) Get(accountID string) (prefs.Preferences, error) {
	p := prefs.Defaults()
	if _, err := s.store.Get(store.PreferencesKey(accountID), &p); err != nil {
		return prefs.Defaults(), err
	}
	return p, nil
}

// Put validates and persists the preferences.
func (s *Service) Put(accountID string, p prefs.Preferences) error {
	if p.Theme != prefs.ThemeLight && p.Theme != prefs.ThemeDark {
		return ErrUnknownTheme
	}
	if !prefs.KnownModel(p.Model) {
		return ErrUnknownModel
	}
	return s.store.Put(store.PreferencesKey(accountID), p)
}
