package ops

import (
	"database/sql"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// MoveNoteInput contains parameters for the MoveNote operation.
type MoveNoteInput struct {
	OwnerID     int64
	CategoryID  int64
	NoteID      int64
	NewPosition int
}

// MoveNote places a note at NewPosition and pushes every other note at or
// after that slot forward by one. The shift is unconditional: moving a note
// onto its current position still shifts the siblings (see the sequencing
// policy note in sequence.go). A position past the current maximum simply
// makes the note last.
func MoveNote(database *sql.DB, input MoveNoteInput) (*note.Note, error) {
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

		if err := placeAt(tx, input.CategoryID, n.ID, input.NewPosition); err != nil {
			return err
		}
		n.Position = input.NewPosition
		return db.UpdateNote(tx, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}
