// Package session holds the current auth token and user identity, persisted
// as a JSON file in the client data directory.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"arifmusic/model"
)

// Session is the persisted login state.
type Session struct {
	Token    string         `json:"token,omitempty"`
	UserID   string         `json:"userId"`
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	UserType model.UserType `json:"userType"`
}

// Manager loads, serves and persists the session. All methods are safe for
// concurrent use.
type Manager struct {
	path string

	mu      sync.Mutex
	current *Session
}

// NewManager creates a Manager backed by the given file, loading any existing
// session from disk.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	m.current = &s
	return m, nil
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Token returns the active bearer token, empty when logged out or offline.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// UserID returns the active user id, empty when logged out.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.UserID
}

// Save replaces the session and persists it. Written to a temp file first so
// a crash never leaves a torn session on disk.
func (m *Manager) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	m.current = &s
	return nil
}

// Clear logs out: forgets the in-memory session and removes the file.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
