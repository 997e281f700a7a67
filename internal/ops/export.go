package ops

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	OwnerID int64
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Document []note.CategoryDoc `json:"document"`
	YAML     []byte             `json:"-"`
}

// Export serializes every category the owner has, each with its notes in
// position order, into the same document shape the importer reads. It is a
// read-only projection; exporting then importing into a fresh account
// reproduces the same categories and notes.
func Export(database *sql.DB, input ExportInput) (*ExportOutput, error) {
	categories, err := db.ListCategories(database, input.OwnerID)
	if err != nil {
		return nil, err
	}

	doc := make([]note.CategoryDoc, 0, len(categories))
	for _, c := range categories {
		notes, err := db.ListNotes(database, c.ID)
		if err != nil {
			return nil, err
		}

		// notes is always present in the document, even when empty.
		noteDocs := make([]note.NoteDoc, 0, len(notes))
		for _, n := range notes {
			noteDocs = append(noteDocs, note.NoteDoc{Title: n.Title, Content: n.Content})
		}
		doc = append(doc, note.CategoryDoc{Name: c.Name, Notes: noteDocs})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{Document: doc, YAML: data}, nil
}

// ExportFileInput contains parameters for the ExportToFile operation.
type ExportFileInput struct {
	OwnerID int64
	Path    string // optional; default: <exportsDir>/notes_export_<host>_<timestamp>.yml
	Host    string // used in the default filename; defaults to the local hostname
}

// ExportFileOutput contains the result of the ExportToFile operation.
type ExportFileOutput struct {
	Path       string `json:"path"`
	Categories int    `json:"categories"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportToFile writes the export document to disk. The file is written to a
// temp path first and renamed into place so a failure never clobbers an
// existing export.
func ExportToFile(database *sql.DB, exportsDir string, input ExportFileInput) (*ExportFileOutput, error) {
	now := time.Now()

	out, err := Export(database, ExportInput{OwnerID: input.OwnerID})
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		host := input.Host
		if host == "" {
			host, _ = os.Hostname()
		}
		exportPath = filepath.Join(exportsDir, note.ExportFilename(host, now))
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, out.YAML, 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	return &ExportFileOutput{
		Path:       exportPath,
		Categories: len(out.Document),
		ExportedAt: now.Unix(),
	}, nil
}
