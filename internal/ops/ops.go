// Package ops implements the repository operations: category and note CRUD,
// position sequencing, and the import/export reconciler. Every operation takes
// an explicit owner id and runs its writes in a single transaction.
package ops

import (
	"database/sql"
	"strings"

	"github.com/hpungsan/noteledger/internal/errors"
)

// withTx runs fn inside a transaction, committing on success and rolling back
// on any error. Partial application is never observable outside the callback.
func withTx(database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// requirePresent validates that a required text field is non-blank.
func requirePresent(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidation(field, "can't be blank")
	}
	return nil
}
