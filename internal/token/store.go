// Package token manages the persisted bearer token and its decoded payload.
//
// The token file is the client-side analog of the browser's storage key: its
// presence is the sole persistent source of truth for "is someone logged in"
// across process restarts.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextreadapp/nextread-client/internal/errors"
)

// Store persists the bearer token as a single file with restricted permissions.
type Store struct {
	path string
}

// NewStore creates a token store rooted at the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the token, creating the parent directory if needed.
func (s *Store) Save(raw string) error {
	if raw == "" {
		return errors.Validation("token cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(raw), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Load returns the persisted token, or ("", false) if none is stored.
func (s *Store) Load() (string, bool) {
	raw, err := os.ReadFile(s.path) //#nosec G304 -- Token path comes from validated config
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", false
	}
	return tok, true
}

// Clear removes the persisted token. Missing files are not an error; the
// caller only cares that no token remains afterwards.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Token implements the api.TokenSource interface.
func (s *Store) Token() (string, bool) {
	return s.Load()
}
