// Package auth implements the local credential store. Secrets are kept in
// plaintext and matched by linear scan: an intentionally minimal local-only
// stub sitting behind a service boundary, so a real identity provider could
// replace it without touching the rest of the system.
package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/kavyanshpal/kpchat/internal/model/account"
	"github.com/kavyanshpal/kpchat/internal/store"
)

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingField       = errors.New("all fields are required")
)

// Service owns account records and the single active session identity.
type Service struct {
	mu    sync.Mutex
	store *store.Store
}

// NewService wires the credential store to durable storage.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Register creates a new account and makes it the active session identity.
// Email uniqueness is case-sensitive exact match.
func (s *Service) Register(displayName, email, secret string) (account.Identity, error) {
	if displayName == "" || email == "" || secret == "" {
		return account.Identity{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts()
	if err != nil {
		return account.Identity{}, err
	}

	for _, a := range accounts {
		if a.Email == email {
			return account.Identity{}, ErrDuplicateEmail
		}
	}

	created := account.Account{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Email:       email,
		Secret:      secret,
	}
	accounts = append(accounts, created)

	if err := s.store.Put(store.KeyAccounts, accounts); err != nil {
		return account.Identity{}, err
	}

	identity := created.Identity()
	if err := s.store.Put(store.KeyCurrentSession, identity); err != nil {
		return account.Identity{}, err
	}
	return identity, nil
}

// Authenticate matches email and secret against the stored accounts and, on
// success, makes the match the active session identity.
func (s *Service) Authenticate(email, secret string) (account.Identity, error) {
	if email == "" || secret == "" {
		return account.Identity{}, ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts()
	if err != nil {
		return account.Identity{}, err
	}

	for _, a := range accounts {
		if a.Email == email && a.Secret == secret {
			identity := a.Identity()
			if err := s.store.Put(store.KeyCurrentSession, identity); err != nil {
				return account.Identity{}, err
			}
			return identity, nil
		}
	}
	return account.Identity{}, ErrInvalidCredentials
}

// Current returns the active session identity, if any. Account data itself
// survives logout; only the session pointer is cleared.
func (s *Service) Current() (account.Identity, bool, error) {
	var identity account.Identity
	ok, err := s.store.Get(store.KeyCurrentSession, &identity)
	if err != nil {
		return account.Identity{}, false, err
	}
	return identity, ok, nil
}

// Logout clears the active session identity.
func (s *Service) Logout() error {
	return s.store.Delete(store.KeyCurrentSession)
}

func (s *Service) loadAccounts() ([]account.Account, error) {
	var accounts []account.Account
	if _, err := s.store.Get(store.KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
