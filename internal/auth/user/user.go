package user

import (
	"context"
	"errors"
	"time"

	"auth-gateway/internal/auth/credentials"
)

var (
	ErrNotFound = errors.New("user: not found")
	ErrConflict = errors.New("user: already exists")
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is a persisted account. The gateway only ever holds a pointer to one
// of these; the store owns the record.
type User struct {
	ID            string
	Email         string
	Username      string
	EmailVerified bool
	Status        string
	Role          string
	LastLoginAt   time.Time
	CreatedAt     time.Time

	// PasswordHash is empty for accounts created through an OAuth provider.
	PasswordHash string
	HashVersion  string
}

// Active reports whether the account may hold a session.
func (u *User) Active() bool {
	return u != nil && u.ID != "" && u.Status == StatusActive
}

// IsAdmin reports whether the account may see the user directory.
func (u *User) IsAdmin() bool {
	return u.Active() && u.Role == RoleAdmin
}

// Provider is the user storage contract the auth gateway consumes.
type Provider interface {
	// RetrieveByID returns ErrNotFound when no user has the id.
	RetrieveByID(ctx context.Context, id string) (*User, error)

	// RetrieveByCredentials finds a user by the identifying fields of c,
	// ignoring the secret. Returns ErrNotFound on a miss.
	RetrieveByCredentials(ctx context.Context, c credentials.Credentials) (*User, error)

	// ValidateCredentials checks the secret in c against the stored hash.
	// u may be nil, after a lookup miss; the check then fails but takes as
	// long as a real one.
	ValidateCredentials(u *User, c credentials.Credentials) bool

	// MarkLoggedIn records a successful login on the user record.
	MarkLoggedIn(ctx context.Context, id string) error
}
