// Package user handles account registration, credential checks, and session
// tokens. Every repository operation takes an explicit owner id; this package
// is how the front ends turn a credential or token into that id.
package user

import (
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// RegisterInput contains parameters for the Register operation.
type RegisterInput struct {
	Email    string
	Password string
}

// Register creates a new account with a bcrypt credential hash.
func Register(database *sql.DB, input RegisterInput) (*note.User, error) {
	email := note.NormalizeEmail(input.Email)
	if email == "" {
		return nil, errors.NewValidation("email", "must not be empty")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, errors.NewValidation("password", "must be at least 8 characters")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	u := &note.User{
		EmailAddress:   email,
		PasswordDigest: string(digest),
	}
	if err := db.InsertUser(database, u); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewValidation("email", "has already been taken")
		}
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a credential pair and returns the account.
// Failures are indistinguishable between unknown email and wrong password.
func Authenticate(database *sql.DB, email, password string) (*note.User, error) {
	u, err := db.GetUserByEmail(database, note.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewUnauthorized()
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(password)) != nil {
		return nil, errors.NewUnauthorized()
	}
	return u, nil
}

// FindByEmail resolves an email address to the account, for front ends that
// select the acting user by name (CLI --user, MCP default_user).
func FindByEmail(database *sql.DB, email string) (*note.User, error) {
	return db.GetUserByEmail(database, note.NormalizeEmail(email))
}

// StartSession creates a session token for a user.
func StartSession(database *sql.DB, userID int64) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	token := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	if err := db.InsertSession(database, token, userID); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveSession maps a session token back to the owner id.
func ResolveSession(database *sql.DB, token string) (int64, error) {
	if token == "" {
		return 0, errors.NewUnauthorized()
	}
	return db.GetSessionUser(database, token)
}

// EndSession invalidates a session token.
func EndSession(database *sql.DB, token string) error {
	return db.DeleteSession(database, token)
}
