package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"auth-gateway/internal/auth/credentials"
	"auth-gateway/internal/db"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"
)

// identifierColumns are the credential fields that may be used to look up a
// user. Anything else in a credentials map is rejected rather than
// interpolated into SQL.
var identifierColumns = set.From([]string{"email", "username"})

var roles = set.From([]string{RoleMember, RoleAdmin})

const selectUser = `
	SELECT u.id, u.email, u.username, u.email_verified, u.status, u.role,
	       u.last_login_at, u.created_at,
	       c.password_hash, c.hash_version
	FROM users u
	LEFT JOIN credentials c ON c.user_id = u.id
`

type SQLStore struct {
	db    *db.DB
	clock func() time.Time
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d, clock: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u           User
		username    sql.NullString
		lastLogin   sql.NullInt64
		createdAt   int64
		hash        sql.NullString
		hashVersion sql.NullString
	)

	if err := row.Scan(
		&u.ID, &u.Email, &username, &u.EmailVerified, &u.Status, &u.Role,
		&lastLogin, &createdAt,
		&hash, &hashVersion,
	); err != nil {
		return nil, err
	}

	u.Username = username.String
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	if lastLogin.Valid {
		u.LastLoginAt = time.Unix(lastLogin.Int64, 0).UTC()
	}
	u.PasswordHash = hash.String
	u.HashVersion = hashVersion.String

	return &u, nil
}

func (s *SQLStore) one(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: query: %w", err)
	}
	return u, nil
}

func (s *SQLStore) RetrieveByID(ctx context.Context, id string) (*User, error) {
	return s.one(ctx, selectUser+` WHERE u.id = ?`, id)
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.one(ctx, selectUser+` WHERE LOWER(u.email) = LOWER(?)`, email)
}

func (s *SQLStore) RetrieveByCredentials(ctx context.Context, c credentials.Credentials) (*User, error) {
	ids := c.Identifiers()
	if len(ids) == 0 {
		return nil, ErrNotFound
	}

	fields := make([]string, 0, len(ids))
	for field := range ids {
		if !identifierColumns.Contains(field) {
			return nil, ErrNotFound
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)

	clauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, "LOWER(u."+field+") = LOWER(?)")
		args = append(args, ids[field])
	}

	return s.one(ctx, selectUser+" WHERE "+strings.Join(clauses, " AND "), args...)
}

// ValidateCredentials checks the secret in c against the stored hash. A nil
// user or one without a password costs a full comparison all the same.
func (s *SQLStore) ValidateCredentials(u *User, c credentials.Credentials) bool {
	if u == nil || u.PasswordHash == "" {
		_ = credentials.VerifyNothing(c.Secret())
		return false
	}
	return credentials.VerifyPassword(u.PasswordHash, c.Secret()) == nil
}

func (s *SQLStore) MarkLoggedIn(ctx context.Context, id string) error {
	now := s.clock().Unix()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ?
		WHERE id = ?
	`, now, now, id)
	if err != nil {
		return fmt.Errorf("user: mark logged in: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// Create inserts a new user without credentials.
func (s *SQLStore) Create(ctx context.Context, u *User) error {
	if u.Email == "" {
		return fmt.Errorf("user: email required")
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	u.CreatedAt = s.clock().UTC().Truncate(time.Second)

	var username any
	if u.Username != "" {
		username = u.Username
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, email_verified, status, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, username, u.EmailVerified, u.Status, u.Role, u.CreatedAt.Unix(), u.CreatedAt.Unix())
	if err != nil {
		if _, ferr := s.FindByEmail(ctx, u.Email); ferr == nil {
			return ErrConflict
		}
		return fmt.Errorf("user: insert: %w", err)
	}

	return nil
}

// CreateWithPassword creates a user holding email together with its
// password credentials, both or neither. It returns
// credentials.ErrAlreadyRegistered when any account already has the email,
// whether or not that account has a password.
func (s *SQLStore) CreateWithPassword(ctx context.Context, email, hash, version string) (string, error) {
	switch _, err := s.FindByEmail(ctx, email); {
	case err == nil:
		return "", credentials.ErrAlreadyRegistered
	case !errors.Is(err, ErrNotFound):
		return "", err
	}

	id := uuid.NewString()
	now := s.clock().Unix()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO users (id, email, email_verified, status, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), id, email, false, StatusActive, RoleMember, now, now); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO credentials (id, user_id, password_hash, hash_version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`), uuid.NewString(), id, hash, version, now, now)
		return err
	})
	if err != nil {
		// lost a race with another registration of the same email
		if _, ferr := s.FindByEmail(ctx, email); ferr == nil {
			return "", credentials.ErrAlreadyRegistered
		}
		return "", fmt.Errorf("user: create with password: %w", err)
	}

	return id, nil
}

// inTx runs fn in a transaction, committing when it returns nil. The
// connection is released before inTx returns.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// SetRole changes the role of the user with the given email.
func (s *SQLStore) SetRole(ctx context.Context, email, role string) error {
	if !roles.Contains(role) {
		return fmt.Errorf("user: unknown role %q", role)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET role = ?, updated_at = ?
		WHERE LOWER(email) = LOWER(?)
	`, role, s.clock().Unix(), email)
	if err != nil {
		return fmt.Errorf("user: set role: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasPassword reports whether credentials exist for the user.
func (s *SQLStore) HasPassword(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = ?
		)
	`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user: check credentials: %w", err)
	}
	return exists, nil
}

// SetPassword stores a password hash for the user.
func (s *SQLStore) SetPassword(ctx context.Context, userID, hash, version string) error {
	now := s.clock().Unix()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, user_id, password_hash, hash_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), userID, hash, version, now, now)
	if err != nil {
		return fmt.Errorf("user: insert credentials: %w", err)
	}

	return nil
}

// List returns a page of users ordered by creation time.
func (s *SQLStore) List(ctx context.Context, limit, offset int) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		selectUser+` ORDER BY u.created_at, u.email LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("user: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user: scan: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("user: count: %w", err)
	}
	return n, nil
}
