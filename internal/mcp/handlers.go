package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/noteledger/internal/config"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/ops"
	"github.com/hpungsan/noteledger/internal/user"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db         *sql.DB
	cfg        *config.Config
	exportsDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, exportsDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, exportsDir: exportsDir}
}

// owner resolves the acting account from config. MCP clients never pass an
// owner id; everything runs as default_user.
func (h *Handlers) owner() (int64, error) {
	if h.cfg.DefaultUser == "" {
		return 0, errors.NewInvalidRequest("no default_user configured; set default_user in config.json")
	}
	u, err := user.FindByEmail(h.db, h.cfg.DefaultUser)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Request types for each tool

// CategoryCreateRequest represents the arguments for category_create.
type CategoryCreateRequest struct {
	Name string `json:"name"`
}

// CategoryRenameRequest represents the arguments for category_rename.
type CategoryRenameRequest struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

// CategoryDeleteRequest represents the arguments for category_delete.
type CategoryDeleteRequest struct {
	CategoryID int64 `json:"category_id"`
}

// NoteCreateRequest represents the arguments for note_create.
type NoteCreateRequest struct {
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Position   *int   `json:"position,omitempty"`
}

// NoteUpdateRequest represents the arguments for note_update.
type NoteUpdateRequest struct {
	CategoryID int64   `json:"category_id"`
	NoteID     int64   `json:"note_id"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Position   *int    `json:"position,omitempty"`
}

// NoteMoveRequest represents the arguments for note_move.
type NoteMoveRequest struct {
	CategoryID int64 `json:"category_id"`
	NoteID     int64 `json:"note_id"`
	Position   int   `json:"position"`
}

// NoteDeleteRequest represents the arguments for note_delete.
type NoteDeleteRequest struct {
	CategoryID int64 `json:"category_id"`
	NoteID     int64 `json:"note_id"`
}

// NoteListRequest represents the arguments for note_list.
type NoteListRequest struct {
	CategoryID int64 `json:"category_id"`
}

// ImportRequest represents the arguments for notes_import.
type ImportRequest struct {
	Document string `json:"document"`
}

// ExportRequest represents the arguments for notes_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// Handler implementations

// HandleCategoryCreate handles the category_create tool call.
func (h *Handlers) HandleCategoryCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.CreateCategory(h.db, ops.CreateCategoryInput{
		OwnerID: ownerID,
		Name:    input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryRename handles the category_rename tool call.
func (h *Handlers) HandleCategoryRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryRenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.UpdateCategory(h.db, ops.UpdateCategoryInput{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
		Name:       input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryDelete handles the category_delete tool call.
func (h *Handlers) HandleCategoryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DestroyCategory(h.db, ops.DestroyCategoryInput{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryList handles the category_list tool call.
func (h *Handlers) HandleCategoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListCategories(h.db, ops.ListCategoriesInput{OwnerID: ownerID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteCreate handles the note_create tool call.
func (h *Handlers) HandleNoteCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.CreateNote(h.db, ops.CreateNoteInput{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Content:    input.Content,
		Position:   input.Position,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteUpdate handles the note_update tool call.
func (h *Handlers) HandleNoteUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.UpdateNote(h.db, ops.UpdateNoteInput{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
		NoteID:     input.NoteID,
		Title:      input.Title,
		Content:    input.Content,
		Position:   input.Position,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteMove handles the note_move tool call.
func (h *Handlers) HandleNoteMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteMoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.MoveNote(h.db, ops.MoveNoteInput{
		OwnerID:     ownerID,
		CategoryID:  input.CategoryID,
		NoteID:      input.NoteID,
		NewPosition: input.Position,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteDelete handles the note_delete tool call.
func (h *Handlers) HandleNoteDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DestroyNote(h.db, ops.DestroyNoteInput{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
		NoteID:     input.NoteID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteList handles the note_list tool call.
func (h *Handlers) HandleNoteList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListNotes(h.db, ops.ListNotesInput{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the notes_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Import(h.db, ops.ImportInput{
		OwnerID: ownerID,
		Data:    []byte(input.Document),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the notes_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ownerID, err := h.owner()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ExportToFile(h.db, h.exportsDir, ops.ExportFileInput{
		OwnerID: ownerID,
		Path:    input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if lerr, ok := err.(*errors.LedgerError); ok {
		errorObj := map[string]any{
			"code":    lerr.Code,
			"message": lerr.Message,
			"status":  lerr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if lerr.Code != errors.ErrInternal && lerr.Details != nil {
			errorObj["details"] = lerr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
