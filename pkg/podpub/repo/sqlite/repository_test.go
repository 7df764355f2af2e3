package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/podpub/pkg/podpub"
	"github.com/castforge/podpub/pkg/podpub/repo/sqlite"
)

func openTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "podpub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newFeed(slug string) *podpub.Feed {
	return &podpub.Feed{
		ID:          uuid.New(),
		Slug:        slug,
		Title:       "Feed " + slug,
		Description: "About " + slug,
		Author:      "Dana",
		Email:       "dana@example.com",
		Language:    "en",
		Categories:  []string{"Technology", "News"},
		WebsiteURL:  "https://example.com",
		CreatedAt:   time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newEpisode(feedID uuid.UUID, guid string, season, number int, publishedAt time.Time) *podpub.Episode {
	return &podpub.Episode{
		ID:            uuid.New(),
		FeedID:        feedID,
		GUID:          guid,
		Title:         "Episode " + guid,
		Description:   "Notes for " + guid,
		AudioURL:      "https://cdn.example.com/audio/" + guid + ".mp3",
		AudioSize:     2048,
		Duration:      1800,
		MIMEType:      "audio/mpeg",
		SeasonNumber:  season,
		EpisodeNumber: number,
		EpisodeType:   podpub.EpisodeTypeFull,
		PublishedAt:   publishedAt,
		CreatedAt:     publishedAt,
		UpdatedAt:     publishedAt,
	}
}

func TestFeedRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	feed := newFeed("tech-talk")
	require.NoError(t, repo.CreateFeed(ctx, feed))

	got, err := repo.GetFeed(ctx, "tech-talk")
	require.NoError(t, err)
	assert.Equal(t, feed.ID, got.ID)
	assert.Equal(t, feed.Title, got.Title)
	assert.Equal(t, feed.Categories, got.Categories)
	assert.True(t, got.CreatedAt.Equal(feed.CreatedAt))

	_, err = repo.GetFeed(ctx, "missing")
	assert.ErrorIs(t, err, podpub.ErrFeedNotFound)
}

func TestCategoriesWithCommasRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	feed := newFeed("tech-talk")
	feed.Categories = []string{"Society & Culture", "News, Politics & Current Events"}
	require.NoError(t, repo.CreateFeed(ctx, feed))

	got, err := repo.GetFeed(ctx, "tech-talk")
	require.NoError(t, err)
	assert.Equal(t, feed.Categories, got.Categories)
}

func TestDuplicateSlugRejected(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	require.NoError(t, repo.CreateFeed(ctx, newFeed("tech-talk")))
	err := repo.CreateFeed(ctx, newFeed("tech-talk"))
	assert.ErrorIs(t, err, podpub.ErrDuplicateSlug)
}

func TestUpsertEpisode(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	feed := newFeed("tech-talk")
	require.NoError(t, repo.CreateFeed(ctx, feed))

	publishedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	first, err := repo.UpsertEpisode(ctx, newEpisode(feed.ID, "tech-talk-s1e1", 1, 1, publishedAt))
	require.NoError(t, err)

	got, err := repo.GetEpisode(ctx, feed.ID, "tech-talk-s1e1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.PublishedAt.Equal(publishedAt))

	replacement := newEpisode(feed.ID, "tech-talk-s1e1", 1, 1, publishedAt)
	replacement.Title = "Corrected title"
	replacement.AudioSize = 4096
	second, err := repo.UpsertEpisode(ctx, replacement)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "republish must keep the original row identity")
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.Equal(t, "Corrected title", second.Title)

	episodes, err := repo.ListEpisodes(ctx, feed.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, int64(4096), episodes[0].AudioSize)
}

func TestListEpisodesCanonicalOrder(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	feed := newFeed("tech-talk")
	require.NoError(t, repo.CreateFeed(ctx, feed))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	insert := func(guid string, season, number int, publishedAt time.Time) {
		t.Helper()
		_, err := repo.UpsertEpisode(ctx, newEpisode(feed.ID, guid, season, number, publishedAt))
		require.NoError(t, err)
	}

	insert("oldest", 1, 1, base)
	insert("newest", 1, 3, base.Add(48*time.Hour))
	insert("middle", 1, 2, base.Add(24*time.Hour))
	// Ties on publish time order by numbering, unset numbering last.
	insert("tie-s2e1", 2, 1, base)
	insert("tie-unnumbered", 0, 0, base)

	episodes, err := repo.ListEpisodes(ctx, feed.ID)
	require.NoError(t, err)

	guids := make([]string, len(episodes))
	for i, e := range episodes {
		guids[i] = e.GUID
	}
	assert.Equal(t, []string{"newest", "middle", "tie-s2e1", "oldest", "tie-unnumbered"}, guids)
}

func TestSubSecondOrdering(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	feed := newFeed("tech-talk")
	require.NoError(t, repo.CreateFeed(ctx, feed))

	// Timestamps differing only in nanoseconds must still order correctly;
	// this is what the fixed-width storage format guarantees.
	base := time.Date(2026, 5, 1, 12, 0, 0, 100, time.UTC)
	_, err := repo.UpsertEpisode(ctx, newEpisode(feed.ID, "early", 0, 0, base))
	require.NoError(t, err)
	_, err = repo.UpsertEpisode(ctx, newEpisode(feed.ID, "late", 0, 0, base.Add(50*time.Nanosecond)))
	require.NoError(t, err)

	episodes, err := repo.ListEpisodes(ctx, feed.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "late", episodes[0].GUID)
	assert.Equal(t, "early", episodes[1].GUID)
}

func TestListEpisodesUnknownFeed(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	episodes, err := repo.ListEpisodes(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, episodes)
}

func TestEpisodeNotFound(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	feed := newFeed("tech-talk")
	require.NoError(t, repo.CreateFeed(ctx, feed))

	_, err := repo.GetEpisode(ctx, feed.ID, "missing")
	assert.ErrorIs(t, err, podpub.ErrEpisodeNotFound)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "podpub.db")

	repo, err := sqlite.Open(path)
	require.NoError(t, err)
	feed := newFeed("tech-talk")
	require.NoError(t, repo.CreateFeed(ctx, feed))
	_, err = repo.UpsertEpisode(ctx, newEpisode(feed.ID, "tech-talk-s1e1", 1, 1, feed.CreatedAt))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetFeed(ctx, "tech-talk")
	require.NoError(t, err)
	episodes, err := reopened.ListEpisodes(ctx, got.ID)
	require.NoError(t, err)
	assert.Len(t, episodes, 1)
}
