// Package app wires configuration, storage and the HTTP router into a
// runnable server.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"auth-gateway/internal/config"
)

type App struct {
	infra  *Infra
	server *http.Server
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router, err := setupHTTP(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	return &App{
		infra: infra,
		server: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler exposes the router, e.g. for httptest.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until Shutdown is called.
func (a *App) Run() error {
	if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases storage connections.
func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(
		a.server.Shutdown(ctx),
		a.infra.Close(),
	)
}
