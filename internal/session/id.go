package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// idBytes gives ids 256 bits of entropy.
const idBytes = 32

var idEncoding = base64.RawURLEncoding

// GenerateID returns a random, URL safe session id.
func GenerateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return idEncoding.EncodeToString(b), nil
}

// ValidID reports whether s has the shape of an id from GenerateID. Values
// that fail are never looked up in a store.
func ValidID(s string) bool {
	if len(s) != idEncoding.EncodedLen(idBytes) {
		return false
	}
	_, err := idEncoding.DecodeString(s)
	return err == nil
}
