package web

import (
	"bytes"
	stderrors "errors"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/noteledger/internal/errors"
	"github.com/hpungsan/noteledger/internal/note"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "categories", "transfer"
}

// LoginPageData is the template data for the login page.
type LoginPageData struct {
	PageData
	Error string
}

// CategoriesPageData is the template data for the category list page.
type CategoriesPageData struct {
	PageData
	Categories []note.Category
}

// NotesPageData is the template data for a category's note list page.
type NotesPageData struct {
	PageData
	Category *note.Category
	Notes    []note.Note
}

// DetailPageData is the template data for the note detail page.
type DetailPageData struct {
	PageData
	Category     *note.Category
	Note         *note.Note
	RenderedHTML template.HTML
}

// TransferPageData is the template data for the import/export page.
type TransferPageData struct {
	PageData
	Notice string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"login":      "login.html",
		"categories": "categories.html",
		"notes":      "notes.html",
		"detail":     "detail.html",
		"transfer":   "transfer.html",
		"error":      "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with HTTP 200.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders the error page from a LedgerError's status and message.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var lErr *errors.LedgerError
	if !stderrors.As(err, &lErr) {
		lErr = errors.NewInternal(err)
	}

	message := lErr.Message
	if lErr.Code == errors.ErrInternal {
		// Internal details stay in the log, not the page.
		log.Printf("internal error serving %s: %s", req.URL.Path, message)
		message = "something went wrong"
	}

	r.renderPageStatus(w, lErr.Status, "error", ErrorPageData{
		PageData:   PageData{Title: "Error", Version: r.version},
		StatusCode: lErr.Status,
		Message:    message,
	})
}

// renderMarkdown converts a note body to sanitized-enough HTML via goldmark.
// goldmark escapes raw HTML by default, so note bodies cannot inject markup.
func renderMarkdown(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		return "", errors.NewInternal(err)
	}
	return template.HTML(buf.String()), nil
}

// formatTime renders a Unix timestamp for display.
func formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).Local().Format("Jan 2, 2006 15:04")
}
