package db

import (
	"database/sql"
	"time"

	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

const categoryColumns = `id, user_id, name, notes_count, created_at, updated_at`

// scanCategory scans a single category row.
func scanCategory(row *sql.Row) (*note.Category, error) {
	var c note.Category
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.NotesCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCategory stores a new category for an owner.
func InsertCategory(q Queryer, c *note.Category) error {
	now := time.Now().Unix()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := q.Exec(
		`INSERT INTO categories (user_id, name, notes_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.OwnerID, c.Name, c.NotesCount, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	c.ID = id
	return nil
}

// GetCategory retrieves a category by id, filtered to the owner. The owner
// filter is part of the lookup itself so other owners' rows read as absent.
func GetCategory(q Queryer, ownerID, categoryID int64) (*note.Category, error) {
	row := q.QueryRow(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`,
		categoryID, ownerID,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("category", categoryID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// GetCategoryByName retrieves an owner's category by case-insensitive name
// match. Returns nil (no error) when no match exists.
func GetCategoryByName(q Queryer, ownerID int64, name string) (*note.Category, error) {
	row := q.QueryRow(
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id = ? AND name = ? COLLATE NOCASE`,
		ownerID, name,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// CategoryNameTaken reports whether an owner already has a category with the
// given name (case-insensitive), excluding excludeID (0 to exclude nothing).
func CategoryNameTaken(q Queryer, ownerID int64, name string, excludeID int64) (bool, error) {
	var n int
	err := q.QueryRow(
		`SELECT COUNT(1) FROM categories
		 WHERE user_id = ? AND name = ? COLLATE NOCASE AND id <> ?`,
		ownerID, name, excludeID,
	).Scan(&n)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListCategories returns all categories for an owner, ordered by name.
func ListCategories(q Queryer, ownerID int64) ([]note.Category, error) {
	rows, err := q.Query(
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id = ? ORDER BY name COLLATE NOCASE ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var categories []note.Category
	for rows.Next() {
		var c note.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.NotesCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return categories, nil
}

// UpdateCategoryName renames a category.
func UpdateCategoryName(q Queryer, c *note.Category, name string) error {
	c.Name = name
	c.UpdatedAt = time.Now().Unix()

	_, err := q.Exec(
		`UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteCategory removes a category row. Notes cascade via the foreign key.
func DeleteCategory(q Queryer, categoryID int64) error {
	if _, err := q.Exec(`DELETE FROM categories WHERE id = ?`, categoryID); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// BumpNotesCount adjusts the denormalized live-note counter by delta.
// Must run in the same transaction as the note insert/delete it mirrors.
func BumpNotesCount(q Queryer, categoryID int64, delta int) error {
	_, err := q.Exec(
		`UPDATE categories SET notes_count = notes_count + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now().Unix(), categoryID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
