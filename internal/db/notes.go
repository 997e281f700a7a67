package db

import (
	"database/sql"
	"time"

	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

const noteColumns = `id, category_id, title, content, position, created_at, updated_at`

// scanNote scans a single note row.
func scanNote(row *sql.Row) (*note.Note, error) {
	var n note.Note
	err := row.Scan(&n.ID, &n.CategoryID, &n.Title, &n.Content.Body, &n.Position, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// InsertNote stores a new note. Position must already be assigned.
func InsertNote(q Queryer, n *note.Note) error {
	now := time.Now().Unix()
	n.CreatedAt = now
	n.UpdatedAt = now

	res, err := q.Exec(
		`INSERT INTO notes (category_id, title, content, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.CategoryID, n.Title, n.Content.Body, n.Position, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	n.ID = id
	return nil
}

// GetNote retrieves a note by id within a category.
func GetNote(q Queryer, categoryID, noteID int64) (*note.Note, error) {
	row := q.QueryRow(
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND category_id = ?`,
		noteID, categoryID,
	)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("note", noteID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// GetNoteByTitle retrieves a note in a category by exact title match.
// Returns nil (no error) when no match exists. Ties on title resolve to the
// oldest row, matching the importer's lookup semantics.
func GetNoteByTitle(q Queryer, categoryID int64, title string) (*note.Note, error) {
	row := q.QueryRow(
		`SELECT `+noteColumns+` FROM notes
		 WHERE category_id = ? AND title = ? ORDER BY id ASC LIMIT 1`,
		categoryID, title,
	)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// ListNotes returns all notes in a category ordered by position, with
// insertion id as the deterministic tie-breaker.
func ListNotes(q Queryer, categoryID int64) ([]note.Note, error) {
	rows, err := q.Query(
		`SELECT `+noteColumns+` FROM notes
		 WHERE category_id = ? ORDER BY position ASC, id ASC`,
		categoryID,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var notes []note.Note
	for rows.Next() {
		var n note.Note
		if err := rows.Scan(&n.ID, &n.CategoryID, &n.Title, &n.Content.Body, &n.Position, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return notes, nil
}

// UpdateNote persists title, content, and position for an existing note.
func UpdateNote(q Queryer, n *note.Note) error {
	n.UpdatedAt = time.Now().Unix()

	_, err := q.Exec(
		`UPDATE notes SET title = ?, content = ?, position = ?, updated_at = ? WHERE id = ?`,
		n.Title, n.Content.Body, n.Position, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteNote removes a note row.
func DeleteNote(q Queryer, noteID int64) error {
	if _, err := q.Exec(`DELETE FROM notes WHERE id = ?`, noteID); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// MaxPosition returns the highest position in a category, or 0 when empty.
func MaxPosition(q Queryer, categoryID int64) (int, error) {
	var max int
	err := q.QueryRow(
		`SELECT COALESCE(MAX(position), 0) FROM notes WHERE category_id = ?`,
		categoryID,
	).Scan(&max)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return max, nil
}

// ShiftPositionsFrom increments the position of every note in the category
// other than excludeNoteID whose position is >= from. The single UPDATE keeps
// the shift atomic with respect to the enclosing transaction.
func ShiftPositionsFrom(q Queryer, categoryID, excludeNoteID int64, from int) error {
	_, err := q.Exec(
		`UPDATE notes SET position = position + 1, updated_at = ?
		 WHERE category_id = ? AND id <> ? AND position >= ?`,
		time.Now().Unix(), categoryID, excludeNoteID, from,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
