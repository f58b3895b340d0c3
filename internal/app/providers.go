package app

import (
	"context"

	"auth-gateway/internal/auth/provider"
	"auth-gateway/internal/auth/provider/oidc"
	"auth-gateway/internal/config"
	"auth-gateway/internal/logger"
)

// setupProviders registers every OAuth provider that has configuration.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		google, err := oidc.New(ctx, oidc.Config{
			Name:         "google",
			Issuer:       oidc.GoogleIssuer,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, google)
	}

	if cfg.KeycloakEnabled() {
		keycloak, err := oidc.New(ctx, oidc.Config{
			Name:          "keycloak",
			Issuer:        cfg.KeycloakIssuer,
			ClientID:      cfg.KeycloakClientID,
			RedirectURL:   cfg.KeycloakRedirectURL,
			PublicBaseURL: cfg.KeycloakPublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		list = append(list, keycloak)
	}

	registry := provider.NewRegistry(list...)

	logger.Info("oauth providers ready", map[string]any{
		"providers": registry.Names(),
	})

	return registry, nil
}
