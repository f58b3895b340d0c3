// Package oidc implements provider.OAuthProvider for any OpenID Connect
// issuer supporting discovery, such as Google or a Keycloak realm.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"auth-gateway/internal/auth"
	"auth-gateway/internal/logger"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const GoogleIssuer = "https://accounts.google.com"

type Config struct {
	// Name is the registry key, e.g. "google".
	Name string

	Issuer       string
	ClientID     string
	ClientSecret string // empty for public clients
	RedirectURL  string

	// PublicBaseURL replaces the scheme and host of the discovered
	// authorization endpoint. Used when the issuer is reached on an
	// internal address that browsers cannot resolve.
	PublicBaseURL string
}

// Provider returns identity facts only; no user or session decisions are
// made here.
type Provider struct {
	name        string
	oauthConfig *oauth2.Config
	verifier    *gooidc.IDTokenVerifier
}

// New initializes the provider using OIDC discovery against cfg.Issuer.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Name == "" || cfg.Issuer == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("oidc: config missing required fields")
	}

	discovered, err := gooidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc: %s discovery failed: %w", cfg.Name, err)
	}

	endpoint := discovered.Endpoint()
	if cfg.PublicBaseURL != "" {
		endpoint.AuthURL, err = rebase(endpoint.AuthURL, cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("oidc: %s public base url: %w", cfg.Name, err)
		}
	}

	return &Provider{
		name: cfg.Name,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes: []string{
				gooidc.ScopeOpenID,
				"profile",
				"email",
			},
		},
		verifier: discovered.Verifier(&gooidc.Config{
			ClientID: cfg.ClientID,
		}),
	}, nil
}

func rebase(endpoint, base string) (string, error) {
	e, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if b.Scheme == "" || b.Host == "" {
		return "", fmt.Errorf("not an absolute url: %q", base)
	}
	e.Scheme = b.Scheme
	e.Host = b.Host
	return e.String(), nil
}

func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("oidc: %s token exchange failed: %w", p.name, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("oidc: %s did not return id_token", p.name)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("oidc: %s id_token verification failed: %w", p.name, err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc: %s id_token claims parse failed: %w", p.name, err)
	}

	identity := &auth.Identity{
		Provider:       p.name,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
	}

	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("oidc: %s id_token missing required claims: %w", p.name, err)
	}

	logger.Info("oidc verified", map[string]any{
		"identity":       identity.Key(),
		"issuer":         idToken.Issuer,
		"email_verified": claims.EmailVerified,
		"expiry_unix":    idToken.Expiry.Unix(),
	})

	return identity, nil
}
