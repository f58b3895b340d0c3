package session

import (
	"context"
	"errors"
	"time"
)

// ErrInvalid is returned when a session is missing required fields or is
// already expired at write time.
var ErrInvalid = errors.New("session: invalid")

// Session is the persisted half of an authenticated session. It stores only
// a pointer to the user; the user record itself lives in user storage.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Device is a short user agent summary, e.g. "Chrome/desktop".
	Device string `json:"device,omitempty"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) validate(now time.Time) (time.Duration, error) {
	if s.SessionID == "" || s.UserID == "" {
		return 0, ErrInvalid
	}
	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, ErrInvalid
	}
	return ttl, nil
}

// Store defines how sessions are stored and retrieved. Get returns
// (nil, nil) when no session exists.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
