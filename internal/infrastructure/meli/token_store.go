// Package meli handles the MercadoLibre OAuth integration: a persistent
// token store plus a client that exchanges and refreshes credentials. The
// store is injected into whatever needs it; there is no package-level
// token state.
package meli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/comparaprecios/backend/internal/domain"
)

// FileTokenStore persists the MercadoLibre token as a JSON file on disk so
// it survives restarts.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store writing to the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the stored token. Returns ErrTokenUnavailable when no token has
// been saved yet.
func (s *FileTokenStore) Load() (*domain.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrTokenUnavailable
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token domain.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return &token, nil
}

// Save writes the token to disk, creating parent directories as needed.
func (s *FileTokenStore) Save(token *domain.Token) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
