package db

import (
	"context"
	"fmt"
	"time"

	"auth-gateway/internal/logger"
)

// migrations are applied in order; each entry is one version. The DDL is
// kept to the subset understood by both postgres and sqlite.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS users (
			id text PRIMARY KEY,
			email text NOT NULL,
			username text,
			email_verified boolean NOT NULL DEFAULT false,
			status text NOT NULL DEFAULT 'active',
			last_login_at bigint,
			created_at bigint NOT NULL,
			updated_at bigint NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
			ON users (LOWER(email))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_unique
			ON users (LOWER(username))`,
		`CREATE TABLE IF NOT EXISTS credentials (
			id text PRIMARY KEY,
			user_id text NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			password_hash text NOT NULL,
			hash_version text NOT NULL,
			created_at bigint NOT NULL,
			updated_at bigint NOT NULL
		)`,
	},
	{
		`CREATE TABLE IF NOT EXISTS identities (
			id text PRIMARY KEY,
			user_id text NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			provider text NOT NULL,
			provider_user_id text NOT NULL,
			created_at bigint NOT NULL,
			CONSTRAINT identities_provider_unique
				UNIQUE (provider, provider_user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS identities_user_id_idx
			ON identities (user_id)`,
	},
	{
		`ALTER TABLE users ADD COLUMN role text NOT NULL DEFAULT 'member'`,
	},
}

// Migrate applies every migration not yet recorded in schema_migrations.
func Migrate(ctx context.Context, d *DB) error {
	if _, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version integer PRIMARY KEY,
			applied_at bigint NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("db: create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)

	rows, err := d.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("db: read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return fmt.Errorf("db: scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for i, stmts := range migrations {
		version := i + 1
		if applied[version] {
			continue
		}

		if err := apply(ctx, d, version, stmts); err != nil {
			return fmt.Errorf("db: migration %d: %w", version, err)
		}

		logger.Info("migration applied", map[string]any{
			"version": version,
		})
	}

	return nil
}

func apply(ctx context.Context, d *DB, version int, stmts []string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		d.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
		version, time.Now().Unix(),
	); err != nil {
		return err
	}

	return tx.Commit()
}
