// Package auth holds the types shared by the OAuth providers and the
// identity resolver.
package auth

import "errors"

var ErrIncompleteIdentity = errors.New("auth: identity requires provider, subject and email")

// Identity is what an OAuth provider asserts about the person who signed
// in. It carries facts only; linking and session decisions are made by the
// resolver and the gateway.
type Identity struct {
	Provider       string // registry name, e.g. "google"
	ProviderUserID string // the id_token subject, unique per provider
	Email          string
	EmailVerified  bool
}

// Validate reports ErrIncompleteIdentity when any field needed to resolve
// the identity is empty.
func (i *Identity) Validate() error {
	if i == nil || i.Provider == "" || i.ProviderUserID == "" || i.Email == "" {
		return ErrIncompleteIdentity
	}
	return nil
}

// Key identifies the external account as "provider:subject".
func (i *Identity) Key() string {
	return i.Provider + ":" + i.ProviderUserID
}
