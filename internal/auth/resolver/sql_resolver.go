package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auth-gateway/internal/auth"
	"auth-gateway/internal/auth/user"
	"auth-gateway/internal/db"

	"github.com/google/uuid"
)

// SQLResolver resolves identities through the identities table, linking
// and creating users in the user store as needed.
type SQLResolver struct {
	db    *db.DB
	users *user.SQLStore
	clock func() time.Time
}

func NewSQLResolver(d *db.DB, users *user.SQLStore) *SQLResolver {
	return &SQLResolver{db: d, users: users, clock: time.Now}
}

func (r *SQLResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (*user.User, error) {

	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}

	// 1. Known identity (provider + provider_user_id)
	var userID string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = ?
		  AND provider_user_id = ?
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return r.users.RetrieveByID(ctx, userID)
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolver: identity lookup: %w", err)
	}

	// 2. Existing user with the same email, new provider; only linked when
	// the provider has verified the address. A password account nobody has
	// verified may have been registered by someone else.
	existing, err := r.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !identity.EmailVerified {
			return nil, ErrUnverifiedEmail
		}
		if existing.PasswordHash != "" && !existing.EmailVerified {
			return nil, ErrUnverifiedAccount
		}
		if err := r.link(ctx, existing.ID, identity); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, user.ErrNotFound):
		return nil, err
	}

	// 3. New user
	created := &user.User{
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
	}
	if err := r.users.Create(ctx, created); err != nil {
		return nil, err
	}

	if err := r.link(ctx, created.ID, identity); err != nil {
		return nil, err
	}

	return r.users.RetrieveByID(ctx, created.ID)
}

func (r *SQLResolver) link(ctx context.Context, userID string, identity *auth.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (id, user_id, provider, provider_user_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		userID,
		identity.Provider,
		identity.ProviderUserID,
		r.clock().Unix(),
	)
	if err != nil {
		return fmt.Errorf("resolver: link identity: %w", err)
	}
	return nil
}
