// Package memory provides an in-memory podpub.Repository, used by tests and
// by the default configuration.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/castforge/podpub/pkg/podpub"
)

type episodeKey struct {
	feedID uuid.UUID
	guid   string
}

// Repository implements podpub.Repository with mutex-guarded maps. The
// write lock gives UpsertEpisode the same all-or-nothing visibility a
// per-feed database transaction provides.
type Repository struct {
	mu          sync.RWMutex
	feedsBySlug map[string]*podpub.Feed
	feedsByID   map[uuid.UUID]*podpub.Feed
	episodes    map[episodeKey]*podpub.Episode
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		feedsBySlug: make(map[string]*podpub.Feed),
		feedsByID:   make(map[uuid.UUID]*podpub.Feed),
		episodes:    make(map[episodeKey]*podpub.Episode),
	}
}

func (r *Repository) CreateFeed(ctx context.Context, feed *podpub.Feed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.feedsBySlug[feed.Slug]; exists {
		return podpub.ErrDuplicateSlug
	}

	feedCopy := copyFeed(feed)
	r.feedsBySlug[feed.Slug] = feedCopy
	r.feedsByID[feed.ID] = feedCopy
	return nil
}

func (r *Repository) GetFeed(ctx context.Context, slug string) (*podpub.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feed, exists := r.feedsBySlug[slug]
	if !exists {
		return nil, podpub.ErrFeedNotFound
	}
	return copyFeed(feed), nil
}

func (r *Repository) GetEpisode(ctx context.Context, feedID uuid.UUID, guid string) (*podpub.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	episode, exists := r.episodes[episodeKey{feedID: feedID, guid: guid}]
	if !exists {
		return nil, podpub.ErrEpisodeNotFound
	}
	episodeCopy := *episode
	return &episodeCopy, nil
}

func (r *Repository) UpsertEpisode(ctx context.Context, episode *podpub.Episode) (*podpub.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.feedsByID[episode.FeedID]; !exists {
		return nil, podpub.ErrFeedNotFound
	}

	key := episodeKey{feedID: episode.FeedID, guid: episode.GUID}
	stored := *episode
	if existing, exists := r.episodes[key]; exists {
		// Same-guid republish: replace mutable fields, keep identity.
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = time.Now().UTC()
	}
	r.episodes[key] = &stored

	result := stored
	return &result, nil
}

func (r *Repository) ListEpisodes(ctx context.Context, feedID uuid.UUID) ([]*podpub.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*podpub.Episode, 0)
	for key, episode := range r.episodes {
		if key.feedID == feedID {
			episodeCopy := *episode
			result = append(result, &episodeCopy)
		}
	}
	podpub.SortEpisodes(result)
	return result, nil
}

func copyFeed(feed *podpub.Feed) *podpub.Feed {
	feedCopy := *feed
	feedCopy.Categories = append([]string(nil), feed.Categories...)
	return &feedCopy
}
