// Package httpapi serves published objects over HTTP. It exists to give the
// filesystem backend a public address during local development and
// self-hosting; an S3 bucket endpoint or CDN plays this role in production.
package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/castforge/podpub/pkg/podpub"
)

const feedContentType = "application/rss+xml; charset=utf-8"

// Server exposes feed documents and episode audio from a BlobStore.
type Server struct {
	store  podpub.BlobStore
	logger *slog.Logger
}

// New creates a feed server over the given blob store.
func New(store podpub.BlobStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

// Router returns the HTTP routes: the feed document at /{slug}/feed.xml and
// audio at /{slug}/episodes/{file}, mirroring the object-key layout.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/{slug}/feed.xml", s.serveFeed)
	r.Get("/{slug}/episodes/{file}", s.serveEpisode)
	return r
}

// ListenAndServe runs the server until ctx is done or the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("feed server listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.serveObject(w, r, podpub.FeedObjectKey(slug), feedContentType)
}

func (s *Server) serveEpisode(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	file := chi.URLParam(r, "file")

	contentType := mime.TypeByExtension(path.Ext(file))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	s.serveObject(w, r, slug+"/episodes/"+file, contentType)
}

func (s *Server) serveObject(w http.ResponseWriter, r *http.Request, objectKey, contentType string) {
	body, err := s.store.Download(r.Context(), objectKey)
	if err != nil {
		if errors.Is(err, podpub.ErrObjectNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.ErrorContext(r.Context(), "object read failed", "key", objectKey, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.ErrorContext(r.Context(), "object write failed", "key", objectKey, "error", err)
	}
}
