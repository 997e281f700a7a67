package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// CreateCategoryInput contains parameters for the CreateCategory operation.
type CreateCategoryInput struct {
	OwnerID int64
	Name    string
}

// CreateCategory creates a category for an owner. Names are unique per owner,
// case-insensitively; the stored name keeps the caller's casing.
func CreateCategory(database *sql.DB, input CreateCategoryInput) (*note.Category, error) {
	if err := requirePresent("name", input.Name); err != nil {
		return nil, err
	}

	c := &note.Category{
		OwnerID: input.OwnerID,
		Name:    input.Name,
	}

	err := withTx(database, func(tx *sql.Tx) error {
		taken, err := db.CategoryNameTaken(tx, input.OwnerID, input.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return nameTakenError()
		}
		if err := db.InsertCategory(tx, c); err != nil {
			// Unique index backstop for writers racing past the check above.
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
