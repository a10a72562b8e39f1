package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"

	"github.com/Veraticus/pulse/internal/common"
)

// Keyring item names.
const (
	SheetsRefreshTokenKey = "google-sheets-refresh-token"
)

// SecretStore persists credentials outside the config file.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// KeyringStore is a SecretStore backed by the OS keyring.
type KeyringStore struct {
	fileDir string
}

// NewKeyringStore returns a store that falls back to an encrypted file under Dir().
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{fileDir: filepath.Join(Dir(), "credentials")}
}

func (s *KeyringStore) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: AppName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  s.fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(AppName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential. Missing items report common.ErrNotFound.
func (s *KeyringStore) Get(key string) (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("credential %q: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential.
func (s *KeyringStore) Set(key, value string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: AppName + " " + key}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential.
func (s *KeyringStore) Delete(key string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("credential %q: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// EnvVar returns the environment variable holding provider's API key.
func EnvVar(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// KeyName returns the keyring item name for provider's API key.
func KeyName(provider string) string {
	return provider + "-api-key"
}

// Credentials resolves secrets from the environment first, then the secret store.
type Credentials struct {
	store  SecretStore
	getenv func(string) string
}

// NewCredentials resolves through store. A nil store reads the environment only.
func NewCredentials(store SecretStore) *Credentials {
	return &Credentials{store: store, getenv: os.Getenv}
}

// APIKey returns provider's key, or "" when none is configured.
func (c *Credentials) APIKey(provider string) string {
	if v := strings.TrimSpace(c.getenv(EnvVar(provider))); v != "" {
		return v
	}
	return c.stored(KeyName(provider))
}

// SetAPIKey stores provider's key.
func (c *Credentials) SetAPIKey(provider, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty API key", common.ErrInvalidInput)
	}
	if c.store == nil {
		return fmt.Errorf("%w: no credential store", common.ErrMissingConfig)
	}
	return c.store.Set(KeyName(provider), strings.TrimSpace(key))
}

// RemoveAPIKey deletes provider's stored key.
func (c *Credentials) RemoveAPIKey(provider string) error {
	if c.store == nil {
		return fmt.Errorf("%w: no credential store", common.ErrMissingConfig)
	}
	return c.store.Delete(KeyName(provider))
}

// SheetsRefreshToken returns the stored Google OAuth2 refresh token.
func (c *Credentials) SheetsRefreshToken() string {
	if v := strings.TrimSpace(c.getenv("GOOGLE_SHEETS_REFRESH_TOKEN")); v != "" {
		return v
	}
	return c.stored(SheetsRefreshTokenKey)
}

// SetSheetsRefreshToken stores the Google OAuth2 refresh token.
func (c *Credentials) SetSheetsRefreshToken(token string) error {
	if c.store == nil {
		return fmt.Errorf("%w: no credential store", common.ErrMissingConfig)
	}
	return c.store.Set(SheetsRefreshTokenKey, token)
}

func (c *Credentials) stored(key string) string {
	if c.store == nil {
		return ""
	}
	v, err := c.store.Get(key)
	if err != nil {
		return ""
	}
	return v
}
