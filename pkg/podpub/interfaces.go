package podpub

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository defines the metadata store for feeds and episodes.
//
// Implementations enforce slug uniqueness across feeds and GUID uniqueness
// within a feed, and run UpsertEpisode inside a transaction scoped to the
// feed so concurrent callers observe either the pre- or post-upsert state.
type Repository interface {
	// CreateFeed inserts a new feed. Returns ErrDuplicateSlug if the slug is
	// already taken; the store is left unchanged in that case.
	CreateFeed(ctx context.Context, feed *Feed) error

	// GetFeed returns the feed with the given slug, or ErrFeedNotFound.
	GetFeed(ctx context.Context, slug string) (*Feed, error)

	// GetEpisode returns the episode with the given GUID under the feed, or
	// ErrEpisodeNotFound.
	GetEpisode(ctx context.Context, feedID uuid.UUID, guid string) (*Episode, error)

	// UpsertEpisode inserts the episode, or replaces the mutable fields of
	// an existing episode with the same (feed_id, guid) while preserving its
	// ID and CreatedAt. Returns the stored episode.
	UpsertEpisode(ctx context.Context, episode *Episode) (*Episode, error)

	// ListEpisodes returns all episodes of the feed in canonical order:
	// PublishedAt descending, then season and episode number descending
	// (unset sorts last), then GUID. Re-querying yields current full state.
	// An unknown feed yields an empty slice, not an error; callers that
	// need existence checked use GetFeed.
	ListEpisodes(ctx context.Context, feedID uuid.UUID) ([]*Episode, error)
}

// BlobStore defines a durable, publicly readable object store. Uploading the
// same key twice overwrites; keys are derived only from immutable
// identifiers so re-publishing never invalidates previously issued URLs.
type BlobStore interface {
	// Upload writes the content at params.ObjectKey, overwriting any
	// existing object.
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download returns the content stored at objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Exists reports whether an object is stored at objectKey.
	Exists(ctx context.Context, objectKey string) (bool, error)

	// PublicURL returns the publicly addressable URL for objectKey. Pure
	// computation from configured state; no network call.
	PublicURL(objectKey string) string
}

// UploadParams carries the destination key and declared content type for an
// upload.
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// DocumentBuilder serializes a feed and its ordered episodes into a
// syndication document. Implementations must be pure and deterministic:
// identical inputs produce identical bytes, which is what makes republishing
// the document idempotent. feedxml.Builder is the standard implementation.
type DocumentBuilder interface {
	Build(feed *Feed, episodes []*Episode, feedURL string) ([]byte, error)

	// ContentType returns the MIME type the rendered document is served as.
	ContentType() string
}
