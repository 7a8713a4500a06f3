// Package session keeps server-side login sessions. The browser only holds a
// sealed session id; the identity lives in badger or redis and expires with
// the configured TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Session is a logged-in browser.
type Session struct {
	ID        string             `json:"id"`
	User      domain.SessionUser `json:"user"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Store persists sessions with expiry.
type Store interface {
	// Create starts a session for user and returns it with a fresh id.
	Create(ctx context.Context, user domain.SessionUser) (*Session, error)
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

func newSession(user domain.SessionUser, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

func encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	// Backends expire entries lazily; never hand out a stale one.
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &s, nil
}
