package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tfkr-ae/launchbook/domain"
)

var _ domain.SecretStore = (*Repository)(nil)

const (
	secretToken     = "auth_token"
	secretUserID    = "user_id"
	secretUserEmail = "user_email"
)

// ErrSecretsNotConfigured is returned by the secret store methods when the repository was built without a master key.
var ErrSecretsNotConfigured = errors.New("secret store has no master key")

func (repo *Repository) putSecret(name, value string) error {
	if repo.secrets == nil {
		return ErrSecretsNotConfigured
	}

	sealed, err := repo.secrets.seal(name, []byte(value))
	if err != nil {
		return fmt.Errorf("sealing %s: %w", name, err)
	}

	query := `INSERT INTO secret(name, value, updated_at)
		      VALUES (?, ?, ?)
		      ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`

	_, err = repo.dbConn.Exec(query, repo.secrets.digest(name), sealed, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

func (repo *Repository) getSecret(name string) (string, error) {
	if repo.secrets == nil {
		return "", ErrSecretsNotConfigured
	}

	var sealed []byte
	query := `SELECT value FROM secret WHERE name = ?`

	err := repo.dbConn.Get(&sealed, query, repo.secrets.digest(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrSecretNotFound
		}
		return "", fmt.Errorf("getting %s: %w", name, err)
	}

	value, err := repo.secrets.open(name, sealed)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(value), nil
}

func (repo *Repository) deleteSecrets(names ...string) error {
	if repo.secrets == nil {
		return ErrSecretsNotConfigured
	}

	digests := make([]any, len(names))
	for i, name := range names {
		digests[i] = repo.secrets.digest(name)
	}

	query := `DELETE FROM secret WHERE name IN (?` + strings.Repeat(",?", len(names)-1) + `)`
	_, err := repo.dbConn.Exec(query, digests...)
	if err != nil {
		return fmt.Errorf("deleting secrets: %w", err)
	}
	return nil
}

// SaveToken stores the authentication token.
func (repo *Repository) SaveToken(token string) error {
	return repo.putSecret(secretToken, token)
}

// GetToken returns the stored authentication token.
func (repo *Repository) GetToken() (string, error) {
	return repo.getSecret(secretToken)
}

// ClearToken removes the token together with the user id and email.
func (repo *Repository) ClearToken() error {
	return repo.deleteSecrets(secretToken, secretUserID, secretUserEmail)
}

// HasToken reports whether a non-empty token is stored.
func (repo *Repository) HasToken() (bool, error) {
	token, err := repo.GetToken()
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return false, nil
		}
		return false, err
	}
	return token != "", nil
}

// SaveUserID stores the id of the logged in user.
func (repo *Repository) SaveUserID(userID string) error {
	return repo.putSecret(secretUserID, userID)
}

// GetUserID returns the id of the logged in user.
func (repo *Repository) GetUserID() (string, error) {
	return repo.getSecret(secretUserID)
}

// SaveUserEmail stores the email used to log in.
func (repo *Repository) SaveUserEmail(email string) error {
	return repo.putSecret(secretUserEmail, email)
}

// GetUserEmail returns the email used to log in.
func (repo *Repository) GetUserEmail() (string, error) {
	return repo.getSecret(secretUserEmail)
}

// IsAuthenticated reports whether both a non-empty token and a user id are stored.
func (repo *Repository) IsAuthenticated() (bool, error) {
	hasToken, err := repo.HasToken()
	if err != nil || !hasToken {
		return false, err
	}

	_, err = repo.GetUserID()
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
