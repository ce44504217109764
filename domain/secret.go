package domain

// SecretStore defines the durable key/value store for the session credentials.
// Getters return ErrSecretNotFound for values that were never saved or were cleared.
type SecretStore interface {
	// SaveToken stores the authentication token.
	SaveToken(token string) error
	// GetToken returns the authentication token.
	GetToken() (string, error)
	// ClearToken removes the token, the user id and the user email.
	ClearToken() error
	// HasToken reports whether a non-empty token is stored.
	HasToken() (bool, error)

	SaveUserID(userID string) error
	GetUserID() (string, error)
	SaveUserEmail(email string) error
	GetUserEmail() (string, error)

	// IsAuthenticated reports whether the session is usable: a non-empty token and a stored user id.
	IsAuthenticated() (bool, error)
}
