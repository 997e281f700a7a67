// Package note defines the domain types shared across the repositories,
// the importer/exporter, and the front ends.
package note

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// BasePosition is the position assigned to the first note in a category.
const BasePosition = 1

// User is an account that owns categories.
type User struct {
	// ID is the internal row id; never accepted from a client
	ID int64 `json:"id"`

	// EmailAddress is stored normalized (trimmed, lowercased)
	EmailAddress string `json:"email_address"`

	// PasswordDigest is the bcrypt hash of the password
	PasswordDigest string `json:"-"`

	// CreatedAt is the Unix timestamp when the user was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp when the user was last updated
	UpdatedAt int64 `json:"updated_at"`
}

// Category groups an ordered list of notes under one owner.
type Category struct {
	ID int64 `json:"id"`

	// OwnerID is the id of the owning user
	OwnerID int64 `json:"owner_id"`

	// Name is unique per owner, case-insensitively
	Name string `json:"name"`

	// NotesCount is a denormalized count of live notes, maintained in the
	// same transaction as every note insert/delete
	NotesCount int `json:"notes_count"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Note is a titled rich-text entry at a position within its category.
type Note struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"category_id"`

	Title   string   `json:"title"`
	Content RichText `json:"content"`

	// Position orders notes within the category; lower sorts first.
	// Positions are duplicate-free but may contain gaps after moves and
	// deletes (shift-on-move policy, no compaction).
	Position int `json:"position"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// RichText is the opaque rich-text blob attached to a note. Only the body
// string is modeled here; rendering is left to the presentation layer.
type RichText struct {
	Body string `json:"body" yaml:"body"`
}

// CategoryDoc is one category record in the import/export document.
type CategoryDoc struct {
	Name  string    `yaml:"name" json:"name"`
	Notes []NoteDoc `yaml:"notes" json:"notes"`
}

// NoteDoc is one note record in the import/export document.
type NoteDoc struct {
	Title   string   `yaml:"title" json:"title"`
	Content RichText `yaml:"content" json:"content"`
}

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName normalizes a category name for comparison:
// trim, lowercase, collapse internal whitespace to single spaces.
// The stored name keeps its original casing.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// NormalizeEmail normalizes an email address before storage or lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ExportFilename builds the conventional export artifact name:
// notes_export_<host>_<numeric-timestamp>.yml
func ExportFilename(host string, now time.Time) string {
	if host == "" {
		host = "localhost"
	}
	// Strip a port and anything else unfit for a filename.
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = sanitizeForFilename(host)
	return fmt.Sprintf("notes_export_%s_%s.yml", host, now.Format("20060102150405"))
}

// sanitizeForFilename keeps letters, digits, dots, and dashes.
func sanitizeForFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
