package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.LedgerError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertUser stores a new user. EmailAddress must already be normalized.
func InsertUser(q Queryer, u *note.User) error {
	now := time.Now().Unix()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := q.Exec(
		`INSERT INTO users (email_address, password_digest, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		u.EmailAddress, u.PasswordDigest, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	u.ID = id
	return nil
}

// GetUserByEmail retrieves a user by normalized email address.
func GetUserByEmail(q Queryer, email string) (*note.User, error) {
	row := q.QueryRow(
		`SELECT id, email_address, password_digest, created_at, updated_at
		 FROM users WHERE email_address = ?`, email,
	)

	var u note.User
	err := row.Scan(&u.ID, &u.EmailAddress, &u.PasswordDigest, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("user", email)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &u, nil
}

// InsertSession stores a session token for a user.
func InsertSession(q Queryer, token string, userID int64) error {
	_, err := q.Exec(
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSessionUser resolves a session token to the owning user id.
func GetSessionUser(q Queryer, token string) (int64, error) {
	var userID int64
	err := q.QueryRow(`SELECT user_id FROM sessions WHERE token = ?`, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, errors.NewUnauthorized()
	}
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return userID, nil
}

// DeleteSession removes a session token. Unknown tokens are a no-op.
func DeleteSession(q Queryer, token string) error {
	if _, err := q.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
