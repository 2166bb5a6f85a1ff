package account

// Account is a locally registered user record. The secret is stored in
// plaintext on purpose: this is an explicit local-only stub, not an identity
// provider. Never mutated after creation.
type Account struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Secret      string `json:"secret"`
}

// Identity is the redacted projection of an Account held as the current user.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Identity returns the redacted projection of the account.
func (a Account) Identity() Identity {
	return Identity{ID: a.ID, DisplayName: a.DisplayName, Email: a.Email}
}
