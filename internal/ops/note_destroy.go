package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
)

// DestroyNoteInput contains parameters for the DestroyNote operation.
type DestroyNoteInput struct {
	OwnerID    int64
	CategoryID int64
	NoteID     int64
}

// DestroyNoteOutput contains the result of the DestroyNote operation.
type DestroyNoteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// DestroyNote removes a note and decrements its category's notes_count in one
// transaction. Sibling positions are left untouched; the gap stays.
func DestroyNote(database *sql.DB, input DestroyNoteInput) (*DestroyNoteOutput, error) {
	err := withTx(database, func(tx *sql.Tx) error {
		if _, err := db.GetCategory(tx, input.OwnerID, input.CategoryID); err != nil {
			return err
		}
		if _, err := db.GetNote(tx, input.CategoryID, input.NoteID); err != nil {
			return err
		}
		if err := db.DeleteNote(tx, input.NoteID); err != nil {
			return err
		}
		return db.BumpNotesCount(tx, input.CategoryID, -1)
	})
	if err != nil {
		return nil, err
	}
	return &DestroyNoteOutput{Deleted: true, ID: input.NoteID}, nil
}
