package db

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// MasterKeySize is the length of the master key expected by WithMasterKey.
const MasterKeySize = 32

// ErrInvalidKeyLength is returned when the master key does not have MasterKeySize bytes.
var ErrInvalidKeyLength = errors.New("invalid key length")

// secretCipher digests secret names deterministically and seals secret values.
// Both keys are derived from the master key so a single file protects the store.
type secretCipher struct {
	nameKey []byte
	aead    cipher.AEAD
}

func deriveKey(master []byte, info string) ([]byte, error) {
	h := hkdf.New(sha256.New, master, nil, []byte(info))
	out := make([]byte, 32)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

func newSecretCipher(master []byte) (*secretCipher, error) {
	if len(master) != MasterKeySize {
		return nil, ErrInvalidKeyLength
	}

	nameKey, err := deriveKey(master, "launchbook-secret-name")
	if err != nil {
		return nil, fmt.Errorf("deriving name key: %w", err)
	}

	valueKey, err := deriveKey(master, "launchbook-secret-value")
	if err != nil {
		return nil, fmt.Errorf("deriving value key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(valueKey)
	if err != nil {
		return nil, fmt.Errorf("creating aead: %w", err)
	}

	return &secretCipher{nameKey: nameKey, aead: aead}, nil
}

// digest returns the stored form of a secret name.
func (c *secretCipher) digest(name string) string {
	mac := hmac.New(sha256.New, c.nameKey)
	mac.Write([]byte(name))
	return hex.EncodeToString(mac.Sum(nil))
}

// seal encrypts value bound to name. The output is nonce || ciphertext.
func (c *secretCipher) seal(name string, value []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(value)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, value, []byte(name)), nil
}

// open decrypts a value produced by seal for the same name.
func (c *secretCipher) open(name string, sealed []byte) ([]byte, error) {
	if len(sealed) < c.aead.NonceSize() {
		return nil, errors.New("sealed value is too short")
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	value, err := c.aead.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("opening sealed value: %w", err)
	}
	return value, nil
}
