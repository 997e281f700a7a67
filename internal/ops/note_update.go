package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// UpdateNoteInput contains parameters for the UpdateNote operation.
// Nil fields are left unchanged.
type UpdateNoteInput struct {
	OwnerID    int64
	CategoryID int64
	NoteID     int64

	Title    *string
	Content  *string
	Position *int
}

// UpdateNote edits a note in place. When the position field is set and
// differs from the stored value, the note takes the new position and its
// siblings shift within the same transaction as the field update.
func UpdateNote(database *sql.DB, input UpdateNoteInput) (*note.Note, error) {
	if input.Title != nil {
		if err := requirePresent("title", *input.Title); err != nil {
			return nil, err
		}
	}
	if input.Content != nil {
		if err := requirePresent("content", *input.Content); err != nil {
			return nil, err
		}
	}

	var n *note.Note
	err := withTx(database, func(tx *sql.Tx) error {
		if _, err := db.GetCategory(tx, input.OwnerID, input.CategoryID); err != nil {
			return err
		}

		var err error
		n, err = db.GetNote(tx, input.CategoryID, input.NoteID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			n.Title = *input.Title
		}
		if input.Content != nil {
			n.Content.Body = *input.Content
		}
		if input.Position != nil && *input.Position != n.Position {
			if err := placeAt(tx, input.CategoryID, n.ID, *input.Position); err != nil {
				return err
			}
			n.Position = *input.Position
		}

		return db.UpdateNote(tx, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}
