// Package web serves the browser UI: session login, category sidebar, note
// editing, and import/export transfer.
package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hpungsan/noteledger/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the noteledger web UI.
func NewServer(db *sql.DB, cfg *config.Config, version, bind string, port int) *http.Server {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	renderer := NewRenderer(templateSub, version)

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		renderer: renderer,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/categories", http.StatusFound)
	})
	mux.HandleFunc("GET /login", h.HandleLoginPage)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.requireSession(h.HandleLogout))

	mux.HandleFunc("GET /categories", h.requireSession(h.HandleCategories))
	mux.HandleFunc("POST /categories", h.requireSession(h.HandleCreateCategory))
	mux.HandleFunc("POST /categories/{id}/rename", h.requireSession(h.HandleRenameCategory))
	mux.HandleFunc("POST /categories/{id}/delete", h.requireSession(h.HandleDeleteCategory))

	mux.HandleFunc("GET /categories/{id}", h.requireSession(h.HandleNoteList))
	mux.HandleFunc("POST /categories/{id}/notes", h.requireSession(h.HandleCreateNote))
	mux.HandleFunc("GET /categories/{id}/notes/{noteID}", h.requireSession(h.HandleNoteDetail))
	mux.HandleFunc("POST /categories/{id}/notes/{noteID}", h.requireSession(h.HandleUpdateNote))
	mux.HandleFunc("POST /categories/{id}/notes/{noteID}/delete", h.requireSession(h.HandleDeleteNote))

	mux.HandleFunc("GET /transfer", h.requireSession(h.HandleTransferPage))
	mux.HandleFunc("GET /export", h.requireSession(h.HandleExport))
	mux.HandleFunc("POST /import", h.requireSession(h.HandleImport))

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func Run(db *sql.DB, cfg *config.Config, version, bind string, port int) error {
	srv := NewServer(db, cfg, version, bind, port)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("noteledger web listening on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
