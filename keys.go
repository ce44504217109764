package launchbook

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/tfkr-ae/launchbook/db"
)

const (
	masterKeyFile    = "launchbook_master.pem"
	masterKeyPEMType = "LAUNCHBOOK MASTER KEY"
)

// loadOrCreateMasterKey returns the master key stored in configDir, generating and saving one on first run.
func loadOrCreateMasterKey(configDir string) ([]byte, bool, error) {
	keyPath := path.Join(configDir, masterKeyFile)
	if _, err := os.Stat(keyPath); errors.Is(err, os.ErrNotExist) {
		key := make([]byte, db.MasterKeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("generating master key : %w", err)
		}
		if err := saveMasterKey(key, configDir); err != nil {
			return nil, false, fmt.Errorf("saving master key to disk : %w", err)
		}
		return key, true, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("checking master key %s : %w", keyPath, err)
	}

	key, err := loadMasterKey(configDir)
	if err != nil {
		return nil, false, fmt.Errorf("loading master key from disk : %w", err)
	}
	return key, false, nil
}

func saveMasterKey(key []byte, configDir string) error {
	keyPath := path.Join(configDir, masterKeyFile)
	keyOut, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to open key file for writing: %w", err)
	}
	defer keyOut.Close()
	if err := pem.Encode(keyOut, &pem.Block{Type: masterKeyPEMType, Bytes: key}); err != nil {
		return fmt.Errorf("failed to write data to key file: %w", err)
	}
	return nil
}

func loadMasterKey(configDir string) ([]byte, error) {
	keyPEM, err := os.ReadFile(path.Join(configDir, masterKeyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	block, _ := pem.Decode(keyPEM)
	if block == nil || block.Type != masterKeyPEMType {
		return nil, errors.New("failed to decode key PEM block")
	}
	if len(block.Bytes) != db.MasterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", db.MasterKeySize, len(block.Bytes))
	}
	return block.Bytes, nil
}

// keyFingerprint returns a short base64 SHA-256 digest identifying key without revealing it.
func keyFingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return base64.StdEncoding.EncodeToString(sum[:8])
}
