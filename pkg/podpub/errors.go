package podpub

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. Callers match with errors.Is to decide
// between retrying, reconciling, or giving up.
var (
	// ErrDuplicateSlug indicates a feed with the same slug already exists.
	ErrDuplicateSlug = errors.New("feed slug already exists")

	// ErrFeedNotFound indicates the requested feed does not exist.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrEpisodeNotFound indicates the requested episode does not exist.
	ErrEpisodeNotFound = errors.New("episode not found")

	// ErrDuplicateGUID indicates an episode insert collided on GUID outside
	// the upsert path. The normal upsert path self-heals duplicates.
	ErrDuplicateGUID = errors.New("episode guid already exists")

	// ErrUploadFailed indicates an object-store write failed before any
	// metadata was touched. The whole call is safe to retry.
	ErrUploadFailed = errors.New("upload failed")

	// ErrObjectNotFound indicates no object is stored at the requested key.
	// All BlobStore Download implementations wrap it.
	ErrObjectNotFound = errors.New("object not found")

	// ErrMetadataWrite indicates a metadata-store write failed.
	ErrMetadataWrite = errors.New("metadata write failed")

	// ErrInconsistentState indicates the audio upload succeeded but the
	// metadata commit did not: the object store is ahead of the metadata
	// store. Retrying AddEpisode with the same GUID reconciles it.
	ErrInconsistentState = errors.New("object store ahead of metadata store")

	// ErrFeedPublishFailed indicates the metadata mutation committed but the
	// rebuilt feed document could not be uploaded. RepublishFeed retries the
	// document alone.
	ErrFeedPublishFailed = errors.New("feed document publish failed")

	// ErrInvalidInput indicates a malformed feed or episode configuration.
	ErrInvalidInput = errors.New("invalid input")
)

// FeedError wraps an error from a feed-level operation with the slug and
// operation phase needed for the caller's retry decision.
type FeedError struct {
	Slug string
	Op   string
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed operation %s failed for feed %q: %v", e.Op, e.Slug, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// EpisodeError wraps an error from an episode-level operation with the feed
// slug, episode GUID and operation phase.
type EpisodeError struct {
	Slug string
	GUID string
	Op   string
	Err  error
}

func (e *EpisodeError) Error() string {
	return fmt.Sprintf("episode operation %s failed for feed %q guid %q: %v", e.Op, e.Slug, e.GUID, e.Err)
}

func (e *EpisodeError) Unwrap() error {
	return e.Err
}

// StorageError wraps an error from a blob-store operation.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %q on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
