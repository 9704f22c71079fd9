package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session is the explicit identity handed to the client. It replaces any
// ambient token storage: whoever builds the client decides which session it
// carries.
type Session struct {
	mu       sync.RWMutex
	token    string
	userName string
}

// NewSession builds a session from a bearer token.
func NewSession(token, userName string) *Session {
	return &Session{token: strings.TrimSpace(token), userName: userName}
}

// Token returns the bearer token.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserName returns the display name captured at login.
func (s *Session) UserName() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the session identity, for example after login.
func (s *Session) Set(token, userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	s.userName = userName
}

// Clear logs the session out.
func (s *Session) Clear() {
	s.Set("", "")
}

type sessionFile struct {
	Token    string `json:"token"`
	UserName string `json:"userName"`
}

// LoadSession reads a session saved by Save. A missing file yields an empty
// session.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client: read session: %w", err)
	}
	var raw sessionFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("client: decode session: %w", err)
	}
	return NewSession(raw.Token, raw.UserName), nil
}

// Save writes the session to path with owner-only permissions.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(sessionFile{Token: s.Token(), UserName: s.UserName()}, "", "  ")
	if err != nil {
		return fmt.Errorf("client: encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("client: create session dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("client: write session: %w", err)
	}
	return nil
}
