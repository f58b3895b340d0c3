// Package resolver maps identities asserted by OAuth providers onto local
// user accounts.
//
// Resolution order:
//  1. an identity already linked by (provider, subject) returns its user
//  2. an existing account with the same email is linked, if the provider
//     verified the address and the account's own email is verified or it
//     has no password
//  3. otherwise a new account is created and linked
package resolver

import (
	"context"
	"errors"

	"auth-gateway/internal/auth"
	"auth-gateway/internal/auth/user"
)

var (
	ErrUnverifiedEmail = errors.New("resolver: email not verified by provider")

	// ErrUnverifiedAccount is returned when the matching local account was
	// registered with a password but never proved it owns the address.
	ErrUnverifiedAccount = errors.New("resolver: existing account email not verified")
)

// Resolver determines which internal user an external identity belongs to.
// It is the only place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.Identity) (*user.User, error)
}
