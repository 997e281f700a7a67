package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// CreateNoteInput contains parameters for the CreateNote operation.
type CreateNoteInput struct {
	OwnerID    int64
	CategoryID int64
	Title      string
	Content    string
	Position   *int // nil: append at max(position)+1
}

// CreateNote inserts a note into one of the owner's categories.
//
// The insert, the sibling shift (when an explicit position is given), and the
// notes_count bump are one transaction. The returned note is fully
// materialized from the values written; no re-read is needed.
func CreateNote(database *sql.DB, input CreateNoteInput) (*note.Note, error) {
	if err := requirePresent("title", input.Title); err != nil {
		return nil, err
	}
	if err := requirePresent("content", input.Content); err != nil {
		return nil, err
	}

	n := &note.Note{
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Content:    note.RichText{Body: input.Content},
	}

	err := withTx(database, func(tx *sql.Tx) error {
		// Ownership filter before anything else.
		if _, err := db.GetCategory(tx, input.OwnerID, input.CategoryID); err != nil {
			return err
		}

		if input.Position == nil {
			pos, err := defaultPosition(tx, input.CategoryID)
			if err != nil {
				return err
			}
			n.Position = pos
		} else {
			// An explicit position claims that slot and pushes the notes at
			// or after it forward, same as a move.
			if err := placeAt(tx, input.CategoryID, 0, *input.Position); err != nil {
				return err
			}
			n.Position = *input.Position
		}

		if err := db.InsertNote(tx, n); err != nil {
			return err
		}
		return db.BumpNotesCount(tx, input.CategoryID, 1)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}
