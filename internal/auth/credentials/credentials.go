package credentials

import (
	"maps"
	"slices"
	"strings"

	"github.com/shoenig/go-conceal"
)

// SecretField is the credentials key holding the plaintext password.
const SecretField = "password"

// Credentials is a transient set of fields submitted for a login attempt,
// e.g. {"email": ..., "password": ...}. It is never persisted.
type Credentials map[string]string

// Identifiers returns every field except the secret.
func (c Credentials) Identifiers() map[string]string {
	out := maps.Clone(map[string]string(c))
	delete(out, SecretField)
	return out
}

// Secret returns the password wrapped so it cannot leak through formatting.
func (c Credentials) Secret() *conceal.Text {
	return conceal.New(c[SecretField])
}

// String redacts the secret.
func (c Credentials) String() string {
	ids := c.Identifiers()
	if _, ok := c[SecretField]; ok {
		ids[SecretField] = "<redacted>"
	}
	return formatFields(ids)
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	b.WriteByte('}')
	return b.String()
}
