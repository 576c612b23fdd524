package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

const (
	keyringService  = "freedev-cli"
	keyringTokenKey = "api-token"
	tokenFileName   = "token"
	userFileName    = "user.json"
)

// ErrNotFound is returned when no durable session record exists
var ErrNotFound = errors.New("no stored session")

// Storage is the durable session record: the raw bearer token under one key
// and the serialized user under the other. Both must be written and cleared
// together so the durable record never diverges from the in-memory session.
type Storage interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	DeleteToken() error
	SaveUser(user *client.User) error
	LoadUser() (*client.User, error)
	DeleteUser() error
}

// ConfigDir returns the directory holding the durable session files.
// FREEDEV_CONFIG_DIR overrides the default, which tests rely on.
func ConfigDir() (string, error) {
	if dir := os.Getenv("FREEDEV_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "freedev"), nil
}

// NewDefaultStorage returns the storage used by the CLI: token in the OS
// keyring, user record on disk. FREEDEV_TOKEN_STORE=file switches to the pure
// file implementation for headless machines without a credential manager.
func NewDefaultStorage() (Storage, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	if os.Getenv("FREEDEV_TOKEN_STORE") == "file" {
		return NewFileStorage(dir), nil
	}
	return NewKeyringStorage(dir), nil
}

// FileStorage keeps both session keys as files under a directory
type FileStorage struct {
	dir string
}

// NewFileStorage creates a file-backed storage rooted at dir
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (f *FileStorage) ensureDir() error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// SaveToken persists the raw bearer token
func (f *FileStorage) SaveToken(token string) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(f.dir, tokenFileName)
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the stored bearer token
func (f *FileStorage) LoadToken() (string, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, tokenFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DeleteToken removes the stored bearer token. Deleting an absent token is
// not an error so logout stays idempotent.
func (f *FileStorage) DeleteToken() error {
	if err := os.Remove(filepath.Join(f.dir, tokenFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// SaveUser persists the serialized user record
func (f *FileStorage) SaveUser(user *client.User) error {
	if err := f.ensureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	path := filepath.Join(f.dir, userFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// LoadUser retrieves the stored user record
func (f *FileStorage) LoadUser() (*client.User, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, userFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var user client.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse stored user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes the stored user record
func (f *FileStorage) DeleteUser() error {
	if err := os.Remove(filepath.Join(f.dir, userFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// KeyringStorage keeps the token in the OS keychain/credential manager and
// the user record on disk next to the rest of the CLI state.
type KeyringStorage struct {
	files *FileStorage
}

// NewKeyringStorage creates the keyring-backed storage; dir holds the user
// record file.
func NewKeyringStorage(dir string) *KeyringStorage {
	return &KeyringStorage{files: NewFileStorage(dir)}
}

// SaveToken persists the token securely in the OS keychain
func (k *KeyringStorage) SaveToken(token string) error {
	if err := keyring.Set(keyringService, keyringTokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the token from the OS keychain
func (k *KeyringStorage) LoadToken() (string, error) {
	token, err := keyring.Get(keyringService, keyringTokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the token from the OS keychain
func (k *KeyringStorage) DeleteToken() error {
	if err := keyring.Delete(keyringService, keyringTokenKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// SaveUser persists the serialized user record
func (k *KeyringStorage) SaveUser(user *client.User) error {
	return k.files.SaveUser(user)
}

// LoadUser retrieves the stored user record
func (k *KeyringStorage) LoadUser() (*client.User, error) {
	return k.files.LoadUser()
}

// DeleteUser removes the stored user record
func (k *KeyringStorage) DeleteUser() error {
	return k.files.DeleteUser()
}
