package ops

import (
	"testing"

	"github.com/hpungsan/noteledger/internal/errors"
)

func TestCreateNote_DefaultPosition_EmptyCategory(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	n := addNote(t, database, owner, cat.ID, "first")
	if n.Position != 1 {
		t.Errorf("position = %d, want 1", n.Position)
	}
}

func TestCreateNote_DefaultPosition_Appends(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	addNote(t, database, owner, cat.ID, "a") // 1
	addNote(t, database, owner, cat.ID, "b") // 2
	addNote(t, database, owner, cat.ID, "c") // 3

	n := addNote(t, database, owner, cat.ID, "d")
	if n.Position != 4 {
		t.Errorf("position = %d, want 4", n.Position)
	}
}

func TestCreateNote_DefaultPosition_AfterGap(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	addNote(t, database, owner, cat.ID, "a")
	b := addNote(t, database, owner, cat.ID, "b")
	addNote(t, database, owner, cat.ID, "c")

	// Delete the middle note; the gap stays.
	if _, err := DestroyNote(database, DestroyNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: b.ID}); err != nil {
		t.Fatalf("DestroyNote failed: %v", err)
	}

	// Default position still comes from the max, not the count.
	n := addNote(t, database, owner, cat.ID, "d")
	if n.Position != 4 {
		t.Errorf("position = %d, want 4 (max+1, gaps ignored)", n.Position)
	}
}

func TestMoveNote_ShiftsAtAndAfterTarget(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	addNote(t, database, owner, cat.ID, "a") // 1
	addNote(t, database, owner, cat.ID, "b") // 2
	c := addNote(t, database, owner, cat.ID, "c")
	addNote(t, database, owner, cat.ID, "d") // 4

	moved, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: c.ID, NewPosition: 1})
	if err != nil {
		t.Fatalf("MoveNote failed: %v", err)
	}
	if moved.Position != 1 {
		t.Errorf("moved position = %d, want 1", moved.Position)
	}

	// Exactly the notes previously at >= 1 (other than c) shift up by one.
	got := positionsByTitle(t, database, owner, cat.ID)
	want := map[string]int{"c": 1, "a": 2, "b": 3, "d": 5}
	for title, pos := range want {
		if got[title] != pos {
			t.Errorf("%q position = %d, want %d", title, got[title], pos)
		}
	}
	assertNoDuplicatePositions(t, database, owner, cat.ID)
}

func TestMoveNote_NotesBeforeTargetUnchanged(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	addNote(t, database, owner, cat.ID, "a") // 1
	addNote(t, database, owner, cat.ID, "b") // 2
	addNote(t, database, owner, cat.ID, "c") // 3
	d := addNote(t, database, owner, cat.ID, "d")

	if _, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: d.ID, NewPosition: 3}); err != nil {
		t.Fatalf("MoveNote failed: %v", err)
	}

	got := positionsByTitle(t, database, owner, cat.ID)
	want := map[string]int{"a": 1, "b": 2, "d": 3, "c": 4}
	for title, pos := range want {
		if got[title] != pos {
			t.Errorf("%q position = %d, want %d", title, got[title], pos)
		}
	}
}

func TestMoveNote_BeyondMaxBecomesLast(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	a := addNote(t, database, owner, cat.ID, "a")
	addNote(t, database, owner, cat.ID, "b")

	moved, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: a.ID, NewPosition: 99})
	if err != nil {
		t.Fatalf("MoveNote failed: %v", err)
	}
	if moved.Position != 99 {
		t.Errorf("position = %d, want 99", moved.Position)
	}

	out, err := ListNotes(database, ListNotesInput{OwnerID: owner, CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if last := out.Items[len(out.Items)-1]; last.Title != "a" {
		t.Errorf("last note = %q, want %q", last.Title, "a")
	}
}

func TestMoveNote_NotIdempotent(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	a := addNote(t, database, owner, cat.ID, "a") // 1
	addNote(t, database, owner, cat.ID, "b")      // 2

	// Each call shifts the sibling again, even with an unchanged target.
	for i := 0; i < 2; i++ {
		if _, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: a.ID, NewPosition: 1}); err != nil {
			t.Fatalf("MoveNote failed: %v", err)
		}
	}

	got := positionsByTitle(t, database, owner, cat.ID)
	if got["b"] != 4 {
		t.Errorf("b position = %d, want 4 (2 + one shift per call)", got["b"])
	}
	if got["a"] != 1 {
		t.Errorf("a position = %d, want 1", got["a"])
	}
}

func TestMoveNote_RejectsNegativePosition(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")
	a := addNote(t, database, owner, cat.ID, "a")

	_, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: a.ID, NewPosition: -1})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION", err)
	}
}

func TestPositions_NoDuplicatesUnderMixedOperations(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	a := addNote(t, database, owner, cat.ID, "a")
	b := addNote(t, database, owner, cat.ID, "b")
	c := addNote(t, database, owner, cat.ID, "c")
	addNote(t, database, owner, cat.ID, "d")

	steps := []func() error{
		func() error {
			_, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: c.ID, NewPosition: 1})
			return err
		},
		func() error {
			_, err := UpdateNote(database, UpdateNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: a.ID, Position: intPtr(2)})
			return err
		},
		func() error {
			_, err := DestroyNote(database, DestroyNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: b.ID})
			return err
		},
		func() error {
			_, err := CreateNote(database, CreateNoteInput{OwnerID: owner, CategoryID: cat.ID, Title: "e", Content: "e", Position: intPtr(2)})
			return err
		},
		func() error {
			_, err := MoveNote(database, MoveNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: c.ID, NewPosition: 7})
			return err
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		assertNoDuplicatePositions(t, database, owner, cat.ID)
	}
}

func TestDestroyNote_LeavesGap(t *testing.T) {
	database := newTestDB(t)
	owner := newTestOwner(t, database, "seq@example.com")
	cat := newTestCategory(t, database, owner, "Work")

	addNote(t, database, owner, cat.ID, "a") // 1
	b := addNote(t, database, owner, cat.ID, "b")
	addNote(t, database, owner, cat.ID, "c") // 3

	if _, err := DestroyNote(database, DestroyNoteInput{OwnerID: owner, CategoryID: cat.ID, NoteID: b.ID}); err != nil {
		t.Fatalf("DestroyNote failed: %v", err)
	}

	got := positionsByTitle(t, database, owner, cat.ID)
	want := map[string]int{"a": 1, "c": 3}
	for title, pos := range want {
		if got[title] != pos {
			t.Errorf("%q position = %d, want %d (no compaction on delete)", title, got[title], pos)
		}
	}
}
