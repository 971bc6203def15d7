package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SavedSession is what a SessionFile keeps between runs.
type SavedSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
}

// Expired reports whether the token is past its expiry at now.
func (s SavedSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionFile persists the session token. The file is readable by the owner only.
type SessionFile struct {
	Path string
}

// Load returns the saved session. A missing file is an empty session.
func (f *SessionFile) Load() (SavedSession, error) {
	var s SavedSession
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return SavedSession{}, fmt.Errorf("decode session file: %w", err)
	}
	return s, nil
}

// Save writes s, replacing the previous session.
func (f *SessionFile) Save(s SavedSession) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the saved session.
func (f *SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
