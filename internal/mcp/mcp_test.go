package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/noteledger/internal/config"
	"github.com/hpungsan/noteledger/internal/db"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/user"
)

// testSetup creates a temporary database with one registered account wired up
// as the MCP default user.
func testSetup(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := user.Register(database, user.RegisterInput{
		Email:    "agent@example.com",
		Password: "correct horse",
	}); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.DefaultUser = "agent@example.com"

	return database, cfg, filepath.Join(tmpDir, "exports")
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// createCategory is setup shorthand; fails the test on any error.
func createCategory(t *testing.T, h *Handlers, name string) int64 {
	t.Helper()

	result, err := h.HandleCategoryCreate(context.Background(), makeRequest(map[string]any{"name": name}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("category_create failed: %v", extractErrorMessage(result))
	}
	output := parseOutput(t, result)
	return int64(output["id"].(float64))
}

// TestHandleCategoryCreate tests the category_create handler.
func TestHandleCategoryCreate(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)
	h := NewHandlers(database, cfg, exportsDir)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "create valid category",
			args:      map[string]any{"name": "Work"},
			wantError: false,
		},
		{
			name:      "blank name",
			args:      map[string]any{"name": "   "},
			wantError: true,
			errorCode: "VALIDATION",
		},
		{
			name:      "duplicate name differing only in case",
			args:      map[string]any{"name": "WORK"},
			wantError: true,
			errorCode: "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCategoryCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

// TestHandleNoteFlow walks a note through create, move, update, list, delete.
func TestHandleNoteFlow(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)
	h := NewHandlers(database, cfg, exportsDir)
	ctx := context.Background()

	catID := createCategory(t, h, "Projects")

	// Create three notes; they append in order.
	for _, title := range []string{"alpha", "beta", "gamma"} {
		result, err := h.HandleNoteCreate(ctx, makeRequest(map[string]any{
			"category_id": catID,
			"title":       title,
			"content":     "body of " + title,
		}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if result.IsError {
			t.Fatalf("note_create failed: %v", extractErrorMessage(result))
		}
	}

	listResult, err := h.HandleNoteList(ctx, makeRequest(map[string]any{"category_id": catID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, listResult)
	items := output["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("got %d notes, want 3", len(items))
	}
	last := items[2].(map[string]any)
	if last["title"] != "gamma" || int(last["position"].(float64)) != 3 {
		t.Fatalf("last note = %v, want gamma at position 3", last)
	}
	gammaID := int64(last["id"].(float64))

	// Move gamma to the front; the others shift forward.
	moveResult, err := h.HandleNoteMove(ctx, makeRequest(map[string]any{
		"category_id": catID,
		"note_id":     gammaID,
		"position":    1,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if moveResult.IsError {
		t.Fatalf("note_move failed: %v", extractErrorMessage(moveResult))
	}

	listResult, err = h.HandleNoteList(ctx, makeRequest(map[string]any{"category_id": catID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output = parseOutput(t, listResult)
	items = output["items"].([]any)
	first := items[0].(map[string]any)
	if first["title"] != "gamma" || int(first["position"].(float64)) != 1 {
		t.Errorf("first note after move = %v, want gamma at position 1", first)
	}

	// Delete gamma; listing shrinks but the gap stays.
	delResult, err := h.HandleNoteDelete(ctx, makeRequest(map[string]any{
		"category_id": catID,
		"note_id":     gammaID,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if delResult.IsError {
		t.Fatalf("note_delete failed: %v", extractErrorMessage(delResult))
	}

	listResult, err = h.HandleNoteList(ctx, makeRequest(map[string]any{"category_id": catID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output = parseOutput(t, listResult)
	if items = output["items"].([]any); len(items) != 2 {
		t.Errorf("got %d notes after delete, want 2", len(items))
	}
}

// TestHandleNoteCreate_UnknownCategory tests the NOT_FOUND path.
func TestHandleNoteCreate_UnknownCategory(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)
	h := NewHandlers(database, cfg, exportsDir)

	result, err := h.HandleNoteCreate(context.Background(), makeRequest(map[string]any{
		"category_id": 9999,
		"title":       "orphan",
		"content":     "no home",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown category")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandleImportExport round-trips a document through notes_export and
// notes_import.
func TestHandleImportExport(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)
	h := NewHandlers(database, cfg, exportsDir)
	ctx := context.Background()

	catID := createCategory(t, h, "Recipes")
	if _, err := h.HandleNoteCreate(ctx, makeRequest(map[string]any{
		"category_id": catID,
		"title":       "Soup",
		"content":     "boil water",
	})); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "out.yml")
	exportResult, err := h.HandleExport(ctx, makeRequest(map[string]any{"path": exportPath}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if exportResult.IsError {
		t.Fatalf("notes_export failed: %v", extractErrorMessage(exportResult))
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("export file not readable: %v", err)
	}

	// Import into a fresh account.
	database2, cfg2, exportsDir2 := testSetup(t)
	h2 := NewHandlers(database2, cfg2, exportsDir2)

	importResult, err := h2.HandleImport(ctx, makeRequest(map[string]any{"document": string(data)}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, importResult)
	if int(output["categories_created"].(float64)) != 1 {
		t.Errorf("categories_created = %v, want 1", output["categories_created"])
	}
	if int(output["notes_created"].(float64)) != 1 {
		t.Errorf("notes_created = %v, want 1", output["notes_created"])
	}
}

// TestHandleImport_BadDocument tests the IMPORT_FORMAT path.
func TestHandleImport_BadDocument(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)
	h := NewHandlers(database, cfg, exportsDir)

	result, err := h.HandleImport(context.Background(), makeRequest(map[string]any{
		"document": "just a scalar",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for malformed document")
	}
	assertErrorCode(t, result, "IMPORT_FORMAT")
}

// TestOwnerResolution tests that tools fail cleanly without a usable
// default_user.
func TestOwnerResolution(t *testing.T) {
	database, _, exportsDir := testSetup(t)
	ctx := context.Background()

	t.Run("unset default_user", func(t *testing.T) {
		bare := config.DefaultConfig()
		h := NewHandlers(database, bare, exportsDir)
		result, err := h.HandleCategoryList(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected error result without default_user")
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("unknown default_user", func(t *testing.T) {
		bad := config.DefaultConfig()
		bad.DefaultUser = "nobody@example.com"
		h := NewHandlers(database, bad, exportsDir)
		result, err := h.HandleCategoryList(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected error result for unknown default_user")
		}
		assertErrorCode(t, result, "NOT_FOUND")
	})
}

func TestServerRegistration(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)

	s := NewServer(database, cfg, exportsDir, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"category_create",
		"category_rename",
		"category_delete",
		"category_list",
		"note_create",
		"note_update",
		"note_move",
		"note_delete",
		"note_list",
		"notes_import",
		"notes_export",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, exportsDir := testSetup(t)

	cfg.DisabledTools = []string{"category_delete", "note_delete"}
	s := NewServer(database, cfg, exportsDir, "test")
	tools := s.ListTools()

	if len(tools) != 9 {
		t.Errorf("registered tool count = %d, want 9", len(tools))
	}

	for _, name := range []string{"category_delete", "note_delete"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	for _, name := range []string{"note_create", "note_list", "category_list"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{
			name:    "all valid",
			input:   []string{"note_delete", "category_delete"},
			wantLen: 0,
		},
		{
			name:    "one unknown",
			input:   []string{"note_delete", "fake_tool"},
			wantLen: 1,
		},
		{
			name:    "empty list",
			input:   []string{},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 11 {
		t.Errorf("AllToolNames() returned %d names, want 11", len(names))
	}

	unknown := ValidateDisabledTools(names)
	if len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_ValidationIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewValidation("title", "can't be blank"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrValidation) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrValidation)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected validation errors to include details")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
