package podpub

import (
	"context"
	"errors"
	"log/slog"
)

// Service is the publishing engine: it orchestrates the metadata store, the
// blob store and the document builder, and is the only component that keeps
// the three consistent.
//
// CreateFeed and AddEpisode are designed to be safely retried end-to-end:
// every step is idempotent keyed by slug or GUID. The engine never retries
// internally; backoff policy belongs to the caller.
type Service interface {
	// CreateFeed inserts the feed, publishes its (empty) document and
	// returns the public feed URL. Fails with ErrDuplicateSlug when the slug
	// is taken. If the document upload fails after the metadata commit the
	// feed row is kept and ErrFeedPublishFailed is surfaced; RepublishFeed
	// retries the document alone.
	CreateFeed(ctx context.Context, req CreateFeedRequest) (*CreateFeedResult, error)

	// AddEpisode uploads the audio artifact, commits the episode row and
	// republishes the feed document, in that order. The audio upload always
	// precedes the metadata commit, so a failure never leaves a row pointing
	// at storage that does not exist. Re-invoking with the same GUID
	// replaces the episode and rebuilds the document.
	AddEpisode(ctx context.Context, req AddEpisodeRequest) (*AddEpisodeResult, error)

	// RepublishFeed rebuilds the feed document from current metadata and
	// uploads it, overwriting the previous document. Safe to call any number
	// of times; this is the retry path for ErrFeedPublishFailed.
	RepublishFeed(ctx context.Context, slug string) (string, error)

	// GetFeed returns the feed with the given slug.
	GetFeed(ctx context.Context, slug string) (*Feed, error)

	// ListEpisodes returns the feed's episodes in canonical order.
	ListEpisodes(ctx context.Context, slug string) ([]*Episode, error)

	// FeedURL returns the public URL of the feed document. Pure computation.
	FeedURL(slug string) string
}

// Option configures the service.
type Option func(*service)

// WithRepository sets the metadata store. Required.
func WithRepository(repo Repository) Option {
	return func(s *service) { s.repository = repo }
}

// WithBlobStore sets the object-storage backend. Required.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) { s.store = store }
}

// WithDocumentBuilder sets the feed document builder. Required.
func WithDocumentBuilder(builder DocumentBuilder) Option {
	return func(s *service) { s.builder = builder }
}

// WithEventSink sets the lifecycle event sink. Defaults to a noop sink.
func WithEventSink(sink EventSink) Option {
	return func(s *service) { s.events = sink }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// New creates a publishing engine from the given options.
func New(options ...Option) (Service, error) {
	s := &service{
		events: NewNoopEventSink(),
		logger: slog.Default(),
		locks:  newKeyedLocks(),
	}
	for _, option := range options {
		option(s)
	}
	if s.repository == nil {
		return nil, errors.New("repository is required")
	}
	if s.store == nil {
		return nil, errors.New("blob store is required")
	}
	if s.builder == nil {
		return nil, errors.New("document builder is required")
	}
	return s, nil
}
