package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shoenig/test/must"
)

const (
	testKID      = "test-kid"
	testClientID = "test-client"
)

// issuer is a minimal OpenID Connect issuer: discovery, keys and a token
// endpoint that always returns the configured id_token claims.
type issuer struct {
	server *httptest.Server
	key    *rsa.PrivateKey
	claims map[string]any
}

func newIssuer(t *testing.T) *issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	must.NoError(t, err)

	is := &issuer{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"issuer":                                is.server.URL,
			"authorization_endpoint":                is.server.URL + "/auth",
			"token_endpoint":                        is.server.URL + "/token",
			"jwks_uri":                              is.server.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": testKID,
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		must.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" || r.Form.Get("code_verifier") != "verifier" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		writeJSON(t, w, map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     is.sign(t, is.claims),
		})
	})

	is.server = httptest.NewServer(mux)
	t.Cleanup(is.server.Close)

	now := time.Now()
	is.claims = map[string]any{
		"iss":            is.server.URL,
		"aud":            testClientID,
		"sub":            "subject-123",
		"email":          "tester@example.com",
		"email_verified": true,
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}

	return is
}

func (is *issuer) sign(t *testing.T, claims map[string]any) string {
	header, err := json.Marshal(map[string]string{"alg": "RS256", "kid": testKID, "typ": "JWT"})
	must.NoError(t, err)
	payload, err := json.Marshal(claims)
	must.NoError(t, err)

	input := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	digest := sha256.Sum256([]byte(input))

	sig, err := rsa.SignPKCS1v15(rand.Reader, is.key, crypto.SHA256, digest[:])
	must.NoError(t, err)

	return input + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	must.NoError(t, json.NewEncoder(w).Encode(v))
}

func newProvider(t *testing.T, is *issuer, publicBase string) *Provider {
	t.Helper()

	p, err := New(context.Background(), Config{
		Name:          "keycloak",
		Issuer:        is.server.URL,
		ClientID:      testClientID,
		RedirectURL:   "https://app.example.com/oauth/callback/keycloak",
		PublicBaseURL: publicBase,
	})
	must.NoError(t, err)
	return p
}

func TestNew_missingFields(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Name: "google"})
	must.ErrorContains(t, err, "missing required fields")
}

func TestProvider_AuthCodeURL(t *testing.T) {
	t.Parallel()

	is := newIssuer(t)
	p := newProvider(t, is, "https://login.example.com")
	must.Eq(t, "keycloak", p.Name())

	u, err := url.Parse(p.AuthCodeURL("the-state", "the-challenge"))
	must.NoError(t, err)
	must.Eq(t, "https", u.Scheme)
	must.Eq(t, "login.example.com", u.Host)
	must.Eq(t, "/auth", u.Path)

	q := u.Query()
	must.Eq(t, "the-state", q.Get("state"))
	must.Eq(t, "the-challenge", q.Get("code_challenge"))
	must.Eq(t, "S256", q.Get("code_challenge_method"))
	must.Eq(t, testClientID, q.Get("client_id"))
	must.StrContains(t, q.Get("scope"), "openid")
}

func TestProvider_ExchangeCode(t *testing.T) {
	t.Parallel()

	is := newIssuer(t)
	p := newProvider(t, is, "")

	identity, err := p.ExchangeCode(context.Background(), "good-code", "verifier")
	must.NoError(t, err)
	must.Eq(t, "keycloak", identity.Provider)
	must.Eq(t, "subject-123", identity.ProviderUserID)
	must.Eq(t, "tester@example.com", identity.Email)
	must.True(t, identity.EmailVerified)
}

func TestProvider_ExchangeCode_failures(t *testing.T) {
	t.Parallel()

	t.Run("bad code", func(t *testing.T) {
		is := newIssuer(t)
		p := newProvider(t, is, "")

		_, err := p.ExchangeCode(context.Background(), "bad-code", "verifier")
		must.ErrorContains(t, err, "token exchange failed")
	})

	t.Run("wrong audience", func(t *testing.T) {
		is := newIssuer(t)
		is.claims["aud"] = "someone-else"
		p := newProvider(t, is, "")

		_, err := p.ExchangeCode(context.Background(), "good-code", "verifier")
		must.ErrorContains(t, err, "verification failed")
	})

	t.Run("missing email", func(t *testing.T) {
		is := newIssuer(t)
		delete(is.claims, "email")
		p := newProvider(t, is, "")

		_, err := p.ExchangeCode(context.Background(), "good-code", "verifier")
		must.ErrorContains(t, err, "missing required claims")
	})
}

func TestRebase(t *testing.T) {
	t.Parallel()

	out, err := rebase("http://keycloak:8080/realms/app/protocol/openid-connect/auth", "https://sso.example.com")
	must.NoError(t, err)
	must.Eq(t, "https://sso.example.com/realms/app/protocol/openid-connect/auth", out)

	_, err = rebase("http://keycloak:8080/auth", "sso.example.com")
	must.Error(t, err)
}
