package ops

import (
	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/errors"
)

// Position sequencing policy: shift-on-move.
//
// A note placed at position p pushes every other note at position >= p
// forward by one slot. Nothing is ever compacted afterward, so repeated moves
// and deletes leave gaps; gaps are accepted, duplicates are not. Placing the
// same note at the same position twice shifts its siblings twice; the
// operation is not idempotent and must not be retried blindly.

// defaultPosition returns the position for a note appended to a category:
// max(existing positions) + 1, or BasePosition for an empty category.
func defaultPosition(q db.Queryer, categoryID int64) (int, error) {
	max, err := db.MaxPosition(q, categoryID)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// placeAt assigns position to the note and shifts every other note in the
// category at >= position up by one. Both writes must share the caller's
// transaction so concurrent movers cannot interleave.
func placeAt(q db.Queryer, categoryID, noteID int64, position int) error {
	if position < 0 {
		return errors.NewValidation("position", "must be a non-negative integer")
	}
	if err := db.ShiftPositionsFrom(q, categoryID, noteID, position); err != nil {
		return err
	}
	return nil
}
