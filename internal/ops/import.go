package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	OwnerID int64
	Data    []byte // YAML document: sequence of {name, notes: [{title, content: {body}}]}
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	CategoriesCreated int `json:"categories_created"`
	NotesCreated      int `json:"notes_created"`
	NotesSkipped      int `json:"notes_skipped"`
}

// Import merges an exported document into the owner's data.
//
// The merge is non-destructive: a note whose exact title already exists in
// the target category is skipped, never overwritten. Categories are matched
// case-insensitively by name and created when missing. The whole merge is one
// transaction; any failure rolls every created row back and surfaces the
// cause to the caller.
func Import(database *sql.DB, input ImportInput) (*ImportOutput, error) {
	doc, err := parseImportDoc(input.Data)
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{}
	err = withTx(database, func(tx *sql.Tx) error {
		for _, record := range doc {
			category, created, err := findOrCreateCategory(tx, input.OwnerID, record.Name)
			if err != nil {
				return importFailure(err)
			}
			if created {
				out.CategoriesCreated++
			}

			for _, nd := range record.Notes {
				existing, err := db.GetNoteByTitle(tx, category.ID, nd.Title)
				if err != nil {
					return importFailure(err)
				}
				if existing != nil {
					// Existing content always wins over imported content.
					out.NotesSkipped++
					continue
				}

				if err := requirePresent("title", nd.Title); err != nil {
					return importFailure(err)
				}
				if err := requirePresent("content", nd.Content.Body); err != nil {
					return importFailure(err)
				}

				pos, err := defaultPosition(tx, category.ID)
				if err != nil {
					return importFailure(err)
				}
				n := &note.Note{
					CategoryID: category.ID,
					Title:      nd.Title,
					Content:    nd.Content,
					Position:   pos,
				}
				if err := db.InsertNote(tx, n); err != nil {
					return importFailure(err)
				}
				if err := db.BumpNotesCount(tx, category.ID, 1); err != nil {
					return importFailure(err)
				}
				out.NotesCreated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseImportDoc decodes the document and rejects anything whose top level is
// not a sequence of category-like records. The input is only ever decoded as
// data; nothing in it is interpreted beyond these fields.
func parseImportDoc(data []byte) ([]note.CategoryDoc, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewImportFormat("import document is empty")
	}

	var doc []note.CategoryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewImportFormat(fmt.Sprintf("expected a sequence of categories: %v", err))
	}
	if doc == nil {
		return nil, errors.NewImportFormat("expected a sequence of categories")
	}
	return doc, nil
}

// findOrCreateCategory returns the owner's case-insensitive name match
// untouched, or creates the category when no match exists. It never edits an
// existing row as a side effect of lookup.
func findOrCreateCategory(q db.Queryer, ownerID int64, name string) (*note.Category, bool, error) {
	existing, err := db.GetCategoryByName(q, ownerID, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if err := requirePresent("name", name); err != nil {
		return nil, false, err
	}

	c := &note.Category{OwnerID: ownerID, Name: name}
	if err := db.InsertCategory(q, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// importFailure wraps a mid-merge error in the import taxonomy, keeping the
// underlying cause message. Format errors never reach here; they are raised
// before the transaction starts.
func importFailure(err error) error {
	return errors.NewImportFailed(err)
}
