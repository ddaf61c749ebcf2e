// Package playground serves a live local preview of the three slot files in
// a working directory. Every request recomposes the page from disk, so an
// editor save shows up on the next browser refresh.
package playground

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cascadelog/internal/cascade"
)

// slotFiles maps URL names to the files the preview is composed from.
var slotFiles = map[string]string{
	"index.html": "index.html",
	"style.css":  "style.css",
	"script.js":  "script.js",
}

// Server previews a working directory over HTTP.
type Server struct {
	dir        string
	logger     cascade.Logger
	onActivity func() // invoked once per handled request; may be nil
}

// NewServer creates a preview server for dir. onActivity is called for each
// handled request so callers can treat browser traffic as user activity.
func NewServer(dir string, logger cascade.Logger, onActivity func()) *Server {
	if logger == nil {
		logger = cascade.NewNopLogger()
	}
	return &Server{dir: dir, logger: logger, onActivity: onActivity}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Use(s.touch)

	r.Get("/", s.handlePreview)
	r.Get("/raw/{name}", s.handleRaw)
	return r
}

// touch records request activity before handling it.
func (s *Server) touch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.onActivity != nil {
			s.onActivity()
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	htmlPart := s.readSlot("index.html")
	cssPart := s.readSlot("style.css")
	jsPart := s.readSlot("script.js")

	page, err := cascade.ComposePreview(time.Now().Format("2006-01-02"), htmlPart, cssPart, jsPart)
	if err != nil {
		s.logger.Error("composing preview", "error", err)
		http.Error(w, "failed to compose preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(page)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	file, ok := slotFiles[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, file))
}

// readSlot returns the file's contents, or nil when it does not exist.
func (s *Server) readSlot(name string) []byte {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading slot file", "file", name, "error", err)
		}
		return nil
	}
	return data
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("playground listening", "addr", addr, "dir", s.dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down playground: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("playground server: %w", err)
	}
}
