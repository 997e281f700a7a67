package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

// UpdateCategoryInput contains parameters for the UpdateCategory operation.
type UpdateCategoryInput struct {
	OwnerID    int64
	CategoryID int64
	Name       string
}

// UpdateCategory renames a category, enforcing the same per-owner
// case-insensitive uniqueness as create but excluding the category's own row,
// so re-saving the current name (or recasing it) is allowed.
func UpdateCategory(database *sql.DB, input UpdateCategoryInput) (*note.Category, error) {
	if err := requirePresent("name", input.Name); err != nil {
		return nil, err
	}

	var c *note.Category
	err := withTx(database, func(tx *sql.Tx) error {
		var err error
		c, err = db.GetCategory(tx, input.OwnerID, input.CategoryID)
		if err != nil {
			return err
		}

		taken, err := db.CategoryNameTaken(tx, input.OwnerID, input.Name, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return nameTakenError()
		}

		if err := db.UpdateCategoryName(tx, c, input.Name); err != nil {
			if err == db.ErrUniqueConstraint {
				return nameTakenError()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// nameTakenError is the validation error for a per-owner name collision.
func nameTakenError() error {
	return errors.NewValidation("name", "has already been taken")
}
