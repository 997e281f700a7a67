package ops

import (
	"database/sql"
	"testing"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/note"
)

// newTestDB opens a fresh database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// newTestOwner inserts an account directly and returns its id.
func newTestOwner(t *testing.T, database *sql.DB, email string) int64 {
	t.Helper()
	u := &note.User{EmailAddress: email, PasswordDigest: "x"}
	if err := db.InsertUser(database, u); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	return u.ID
}

// newTestCategory creates a category for the owner.
func newTestCategory(t *testing.T, database *sql.DB, ownerID int64, name string) *note.Category {
	t.Helper()
	c, err := CreateCategory(database, CreateCategoryInput{OwnerID: ownerID, Name: name})
	if err != nil {
		t.Fatalf("CreateCategory(%q) failed: %v", name, err)
	}
	return c
}

// addNote appends a note with default position.
func addNote(t *testing.T, database *sql.DB, ownerID, categoryID int64, title string) *note.Note {
	t.Helper()
	n, err := CreateNote(database, CreateNoteInput{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Title:      title,
		Content:    "content of " + title,
	})
	if err != nil {
		t.Fatalf("CreateNote(%q) failed: %v", title, err)
	}
	return n
}

// positionsByTitle lists the category and maps titles to positions.
func positionsByTitle(t *testing.T, database *sql.DB, ownerID, categoryID int64) map[string]int {
	t.Helper()
	out, err := ListNotes(database, ListNotesInput{OwnerID: ownerID, CategoryID: categoryID})
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	m := make(map[string]int, len(out.Items))
	for _, n := range out.Items {
		m[n.Title] = n.Position
	}
	return m
}

// assertNoDuplicatePositions checks the duplicate-free invariant.
func assertNoDuplicatePositions(t *testing.T, database *sql.DB, ownerID, categoryID int64) {
	t.Helper()
	out, err := ListNotes(database, ListNotesInput{OwnerID: ownerID, CategoryID: categoryID})
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	seen := make(map[int]string)
	for _, n := range out.Items {
		if other, ok := seen[n.Position]; ok {
			t.Errorf("duplicate position %d held by %q and %q", n.Position, other, n.Title)
		}
		seen[n.Position] = n.Title
	}
}

// notesCount reads the denormalized counter straight from the row.
func notesCount(t *testing.T, database *sql.DB, ownerID, categoryID int64) int {
	t.Helper()
	c, err := db.GetCategory(database, ownerID, categoryID)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	return c.NotesCount
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
