package auth

import (
	"testing"

	"github.com/shoenig/test/must"
)

func TestIdentity_Validate(t *testing.T) {
	t.Parallel()

	full := Identity{Provider: "google", ProviderUserID: "sub-1", Email: "a@example.com"}
	must.NoError(t, full.Validate())
	must.Eq(t, "google:sub-1", full.Key())

	var missing *Identity
	must.ErrorIs(t, missing.Validate(), ErrIncompleteIdentity)

	for _, broken := range []Identity{
		{ProviderUserID: "sub-1", Email: "a@example.com"},
		{Provider: "google", Email: "a@example.com"},
		{Provider: "google", ProviderUserID: "sub-1"},
	} {
		must.ErrorIs(t, broken.Validate(), ErrIncompleteIdentity)
	}
}
