// Package server serves a directory of package archives over HTTP in the
// registry wire format, so that one machine's cache can act as a source for
// others.
//
// Routes:
//
//	GET /api/v1/versions/{name}.json   versions listing (404 when unknown)
//	GET /packages/{full-name}.pkg      archive download
//	GET /healthz                       liveness probe
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackpkg/pkg/archive"
	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/localcache"
	"github.com/matzehuels/stackpkg/pkg/registry"
)

const shutdownTimeout = 5 * time.Second

// Server is a read-only registry backed by a local archive directory.
type Server struct {
	dir    *localcache.Dir
	logger *log.Logger
	router chi.Router
}

// New creates a server for dir. A nil logger uses log.Default().
func New(dir *localcache.Dir, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{dir: dir, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.health)
	r.Get("/api/v1/versions/{file}", s.versions)
	r.Get("/packages/{file}", s.download)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving packages", "addr", addr, "dir", s.dir.Path())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) versions(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
	if !ok || errors.ValidatePackageName(name) != nil {
		http.NotFound(w, r)
		return
	}

	cands, errs := s.dir.Find(r.Context(), name)
	for _, err := range errs {
		s.logger.Warn("unreadable archive", "err", err)
	}
	if len(cands) == 0 {
		http.NotFound(w, r)
		return
	}

	out := make([]registry.WireSpec, 0, len(cands))
	for _, c := range cands {
		out = append(out, registry.FromSpec(c.Spec))
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if file != path.Base(file) || !strings.HasSuffix(file, archive.Ext) || strings.HasPrefix(file, ".") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, s.dir.Path()+"/"+file)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
