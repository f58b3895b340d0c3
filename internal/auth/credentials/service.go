package credentials

import (
	"context"
	"errors"

	"github.com/shoenig/go-conceal"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

// Accounts is the slice of user storage needed to manage passwords.
type Accounts interface {
	// CreateWithPassword returns ErrAlreadyRegistered when any account
	// already holds email.
	CreateWithPassword(ctx context.Context, email, hash, version string) (userID string, err error)
	HasPassword(ctx context.Context, userID string) (bool, error)
	SetPassword(ctx context.Context, userID, hash, version string) error
}

type Service struct {
	accounts Accounts
}

func NewService(accounts Accounts) *Service {
	return &Service{accounts: accounts}
}

// Register creates a new account for email protected by password and
// returns its id. An email that already belongs to any account, including
// one created through an OAuth provider, is ErrAlreadyRegistered.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password *conceal.Text,
) (string, error) {

	// weak passwords must not create an account
	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	return s.accounts.CreateWithPassword(ctx, email, hash, version)
}

// AddPassword gives an account without a password one. The caller must
// already hold an authenticated session for userID.
func (s *Service) AddPassword(
	ctx context.Context,
	userID string,
	password *conceal.Text,
) error {

	hash, version, err := HashPassword(password)
	if err != nil {
		return err
	}

	exists, err := s.accounts.HasPassword(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyRegistered
	}

	return s.accounts.SetPassword(ctx, userID, hash, version)
}
