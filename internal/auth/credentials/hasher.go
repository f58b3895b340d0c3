package credentials

import (
	"errors"
	"sync"

	"github.com/shoenig/go-conceal"
	"golang.org/x/crypto/bcrypt"
)

const (
	HashVersionBcrypt = "bcrypt"

	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
)

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password *conceal.Text) (hash string, version string, err error) {
	plain := password.Unveil()

	switch {
	case len(plain) < minPasswordLen:
		return "", "", ErrPasswordTooShort
	case len(plain) > maxPasswordLen:
		return "", "", ErrPasswordTooLong
	}

	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(plain),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", "", err
	}

	return string(bytes), HashVersionBcrypt, nil
}

// compare is swapped in tests to count comparisons.
var compare = bcrypt.CompareHashAndPassword

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash string, password *conceal.Text) error {
	return compare(
		[]byte(hash),
		[]byte(password.Unveil()),
	)
}

var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("no account has this password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// VerifyNothing compares password against a fixed hash at the same cost as
// VerifyPassword and always fails. Lookups that find no stored hash call it
// so they take as long as a wrong password.
func VerifyNothing(password *conceal.Text) error {
	_ = compare(dummyHash(), []byte(password.Unveil()))
	return ErrInvalidCredentials
}
