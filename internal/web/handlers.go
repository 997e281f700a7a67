package web

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hpungsan/noteledger/internal/config"
	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
	"github.com/hpungsan/noteledger/internal/ops"
	"github.com/hpungsan/noteledger/internal/user"
)

// sessionCookie is the name of the session token cookie.
const sessionCookie = "noteledger_session"

// maxImportBytes caps the uploaded import document size.
const maxImportBytes = 10 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// ownedHandler is a handler that runs with a resolved owner id.
type ownedHandler func(w http.ResponseWriter, r *http.Request, ownerID int64)

// requireSession resolves the session cookie to an owner id before calling
// next, redirecting to the login page when there is no valid session. The
// owner id always comes from the session, never from the request payload.
func (h *Handlers) requireSession(next ownedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ownerID, err := user.ResolveSession(h.db, cookie.Value)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r, ownerID)
	}
}

// HandleLoginPage handles GET /login.
func (h *Handlers) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "login", LoginPageData{
		PageData: PageData{Title: "Sign in", Version: h.renderer.version},
	})
}

// HandleLogin handles POST /login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	u, err := user.Authenticate(h.db, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		h.renderer.renderPageStatus(w, http.StatusUnauthorized, "login", LoginPageData{
			PageData: PageData{Title: "Sign in", Version: h.renderer.version},
			Error:    "Invalid email or password.",
		})
		return
	}

	token, err := user.StartSession(h.db, u.ID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/categories", http.StatusFound)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request, _ int64) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		_ = user.EndSession(h.db, cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// HandleCategories handles GET /categories, the category sidebar page.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request, ownerID int64) {
	result, err := ops.ListCategories(h.db, ops.ListCategoriesInput{OwnerID: ownerID})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "categories", CategoriesPageData{
		PageData:   PageData{Title: "Categories", Version: h.renderer.version, Nav: "categories"},
		Categories: result.Items,
	})
}

// HandleCreateCategory handles POST /categories.
func (h *Handlers) HandleCreateCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	_, err := ops.CreateCategory(h.db, ops.CreateCategoryInput{
		OwnerID: ownerID,
		Name:    r.FormValue("name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/categories", http.StatusFound)
}

// HandleRenameCategory handles POST /categories/{id}/rename.
func (h *Handlers) HandleRenameCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	_, err := ops.UpdateCategory(h.db, ops.UpdateCategoryInput{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Name:       r.FormValue("name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/categories", http.StatusFound)
}

// HandleDeleteCategory handles POST /categories/{id}/delete.
func (h *Handlers) HandleDeleteCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := ops.DestroyCategory(h.db, ops.DestroyCategoryInput{OwnerID: ownerID, CategoryID: categoryID}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/categories", http.StatusFound)
}

// HandleNoteList handles GET /categories/{id}, notes in position order.
func (h *Handlers) HandleNoteList(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := ops.ListNotes(h.db, ops.ListNotesInput{OwnerID: ownerID, CategoryID: categoryID})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "notes", NotesPageData{
		PageData: PageData{Title: result.Category.Name, Version: h.renderer.version, Nav: "categories"},
		Category: result.Category,
		Notes:    result.Items,
	})
}

// HandleCreateNote handles POST /categories/{id}/notes.
func (h *Handlers) HandleCreateNote(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	input := ops.CreateNoteInput{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
	}
	if pos := r.FormValue("position"); pos != "" {
		p, err := strconv.Atoi(pos)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("position must be an integer"))
			return
		}
		input.Position = &p
	}

	n, err := ops.CreateNote(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/categories/%d/notes/%d", categoryID, n.ID), http.StatusFound)
}

// HandleNoteDetail handles GET /categories/{id}/notes/{noteID}.
func (h *Handlers) HandleNoteDetail(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteID")
	if !ok {
		return
	}

	result, err := ops.ListNotes(h.db, ops.ListNotesInput{OwnerID: ownerID, CategoryID: categoryID})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var current *note.Note
	for i := range result.Items {
		if result.Items[i].ID == noteID {
			current = &result.Items[i]
			break
		}
	}
	if current == nil {
		h.renderer.renderError(w, r, errors.NewNotFound("note", noteID))
		return
	}

	rendered, err := renderMarkdown(current.Content.Body)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData:     PageData{Title: current.Title, Version: h.renderer.version, Nav: "categories"},
		Category:     result.Category,
		Note:         current,
		RenderedHTML: rendered,
	})
}

// HandleUpdateNote handles POST /categories/{id}/notes/{noteID}.
func (h *Handlers) HandleUpdateNote(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteID")
	if !ok {
		return
	}

	input := ops.UpdateNoteInput{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		NoteID:     noteID,
	}
	if title := r.FormValue("title"); title != "" || r.Form.Has("title") {
		input.Title = &title
	}
	if content := r.FormValue("content"); content != "" || r.Form.Has("content") {
		input.Content = &content
	}
	if pos := r.FormValue("position"); pos != "" {
		p, err := strconv.Atoi(pos)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("position must be an integer"))
			return
		}
		input.Position = &p
	}

	if _, err := ops.UpdateNote(h.db, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/categories/%d/notes/%d", categoryID, noteID), http.StatusFound)
}

// HandleDeleteNote handles POST /categories/{id}/notes/{noteID}/delete.
func (h *Handlers) HandleDeleteNote(w http.ResponseWriter, r *http.Request, ownerID int64) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteID")
	if !ok {
		return
	}
	if _, err := ops.DestroyNote(h.db, ops.DestroyNoteInput{OwnerID: ownerID, CategoryID: categoryID, NoteID: noteID}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/categories/%d", categoryID), http.StatusFound)
}

// HandleTransferPage handles GET /transfer, the import/export page.
func (h *Handlers) HandleTransferPage(w http.ResponseWriter, r *http.Request, ownerID int64) {
	notice := r.URL.Query().Get("notice")
	h.renderer.renderPage(w, "transfer", TransferPageData{
		PageData: PageData{Title: "Import / Export", Version: h.renderer.version, Nav: "transfer"},
		Notice:   notice,
	})
}

// HandleExport handles GET /export, the document as an attachment download.
// The filename carries the request host and a numeric timestamp.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, ownerID int64) {
	result, err := ops.Export(h.db, ops.ExportInput{OwnerID: ownerID})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := note.ExportFilename(r.Host, time.Now())
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(result.YAML)
}

// HandleImport handles POST /import, multipart upload of an export document.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request, ownerID int64) {
	file, _, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("please select a file to import"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	result, err := ops.Import(h.db, ops.ImportInput{OwnerID: ownerID, Data: data})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	notice := fmt.Sprintf("Imported %d categories and %d notes (%d skipped).",
		result.CategoriesCreated, result.NotesCreated, result.NotesSkipped)
	http.Redirect(w, r, "/transfer?notice="+url.QueryEscape(notice), http.StatusFound)
}

// pathID parses a numeric path value, writing a 404 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
