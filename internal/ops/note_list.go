package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// ListNotesInput contains parameters for the ListNotes operation.
type ListNotesInput struct {
	OwnerID    int64
	CategoryID int64
}

// ListNotesOutput contains the result of the ListNotes operation.
type ListNotesOutput struct {
	Category *note.Category `json:"category"`
	Items    []note.Note    `json:"items"`
}

// ListNotes returns a category's notes in ascending position order, with
// insertion id breaking ties deterministically.
func ListNotes(database *sql.DB, input ListNotesInput) (*ListNotesOutput, error) {
	c, err := db.GetCategory(database, input.OwnerID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	notes, err := db.ListNotes(database, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []note.Note{}
	}

	return &ListNotesOutput{Category: c, Items: notes}, nil
}
