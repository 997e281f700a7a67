package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
)

// DestroyCategoryInput contains parameters for the DestroyCategory operation.
type DestroyCategoryInput struct {
	OwnerID    int64
	CategoryID int64
}

// DestroyCategoryOutput contains the result of the DestroyCategory operation.
type DestroyCategoryOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// DestroyCategory removes a category and, through the foreign key cascade,
// every note it owns. No counter or position maintenance is needed elsewhere;
// the whole subtree is gone.
func DestroyCategory(database *sql.DB, input DestroyCategoryInput) (*DestroyCategoryOutput, error) {
	err := withTx(database, func(tx *sql.Tx) error {
		if _, err := db.GetCategory(tx, input.OwnerID, input.CategoryID); err != nil {
			return err
		}
		return db.DeleteCategory(tx, input.CategoryID)
	})
	if err != nil {
		return nil, err
	}
	return &DestroyCategoryOutput{Deleted: true, ID: input.CategoryID}, nil
}
