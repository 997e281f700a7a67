package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// ListCategoriesInput contains parameters for the ListCategories operation.
type ListCategoriesInput struct {
	OwnerID int64
}

// ListCategoriesOutput contains the result of the ListCategories operation.
type ListCategoriesOutput struct {
	Items []note.Category `json:"items"`
}

// ListCategories returns all of an owner's categories in name order,
// including the live notes_count for each.
func ListCategories(database *sql.DB, input ListCategoriesInput) (*ListCategoriesOutput, error) {
	categories, err := db.ListCategories(database, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []note.Category{}
	}
	return &ListCategoriesOutput{Items: categories}, nil
}
