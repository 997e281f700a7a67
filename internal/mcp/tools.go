package mcp

import "github.com/mark3labs/mcp-go/mcp"

var categoryCreateToolDef = mcp.NewTool("category_create",
	mcp.WithDescription("Create a category. Names are unique per account, case-insensitively."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
)

var categoryRenameToolDef = mcp.NewTool("category_rename",
	mcp.WithDescription("Rename a category."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
	mcp.WithString("name", mcp.Required(), mcp.Description("New category name")),
)

var categoryDeleteToolDef = mcp.NewTool("category_delete",
	mcp.WithDescription("Delete a category and every note it contains."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
)

var categoryListToolDef = mcp.NewTool("category_list",
	mcp.WithDescription("List all categories with their live note counts."),
)

var noteCreateToolDef = mcp.NewTool("note_create",
	mcp.WithDescription("Create a note in a category. Without an explicit position the note is appended after the current last position."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Note body text")),
	mcp.WithNumber("position", mcp.Description("Optional position; notes at or after it shift forward by one")),
)

var noteUpdateToolDef = mcp.NewTool("note_update",
	mcp.WithDescription("Edit a note's title, content, or position. A position change shifts the notes at or after the new slot forward by one."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
	mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("New body text")),
	mcp.WithNumber("position", mcp.Description("New position")),
)

var noteMoveToolDef = mcp.NewTool("note_move",
	mcp.WithDescription("Move a note to a position. Every other note at or after that position shifts forward by one, every call, so do not retry this blindly."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
	mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithNumber("position", mcp.Required(), mcp.Description("Target position (non-negative)")),
)

var noteDeleteToolDef = mcp.NewTool("note_delete",
	mcp.WithDescription("Delete a note. Sibling positions keep their values; the gap is not compacted."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
	mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Note id")),
)

var noteListToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List a category's notes in position order."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Category id")),
)

var importToolDef = mcp.NewTool("notes_import",
	mcp.WithDescription("Merge an exported YAML document into the account. Existing notes are never overwritten; the whole merge is atomic."),
	mcp.WithString("document", mcp.Required(), mcp.Description("YAML document: sequence of {name, notes: [{title, content: {body}}]}")),
)

var exportToolDef = mcp.NewTool("notes_export",
	mcp.WithDescription("Export every category and note to a YAML file."),
	mcp.WithString("path", mcp.Description("Optional output path; defaults to the exports directory with the conventional filename")),
)
