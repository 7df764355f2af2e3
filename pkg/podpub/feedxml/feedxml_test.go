package feedxml_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/podpub/pkg/podpub"
	"github.com/castforge/podpub/pkg/podpub/feedxml"
)

const feedURL = "https://cdn.example.com/tech-talk/feed.xml"

func testFeed() *podpub.Feed {
	return &podpub.Feed{
		Slug:        "tech-talk",
		Title:       "Tech Talk Podcast",
		Description: "A show about technology.",
		Author:      "Dana",
		Email:       "dana@example.com",
		Language:    "en",
		Copyright:   "2026 Dana",
		Categories:  []string{"Technology", "News"},
		ImageURL:    "https://cdn.example.com/tech-talk/cover.jpg",
		WebsiteURL:  "https://example.com",
		CreatedAt:   time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func testEpisode(guid string, season, number int, publishedAt time.Time) *podpub.Episode {
	return &podpub.Episode{
		GUID:          guid,
		Title:         "Episode " + guid,
		Description:   "Notes for " + guid,
		AudioURL:      "https://cdn.example.com/tech-talk/episodes/" + guid + ".mp3",
		AudioSize:     2048,
		Duration:      1800,
		MIMEType:      "audio/mpeg",
		SeasonNumber:  season,
		EpisodeNumber: number,
		EpisodeType:   podpub.EpisodeTypeFull,
		PublishedAt:   publishedAt,
		UpdatedAt:     publishedAt,
	}
}

func TestBuildRoundTrip(t *testing.T) {
	feed := testFeed()
	publishedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	episodes := []*podpub.Episode{testEpisode("tech-talk-s1e1", 1, 1, publishedAt)}

	doc, err := feedxml.New().Build(feed, episodes, feedURL)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "Tech Talk Podcast", parsed.Title)
	assert.Equal(t, "A show about technology.", parsed.Description)
	assert.Equal(t, "https://example.com", parsed.Link)
	assert.Equal(t, feedURL, parsed.FeedLink)
	assert.Equal(t, "en", parsed.Language)
	assert.Equal(t, "2026 Dana", parsed.Copyright)

	require.NotNil(t, parsed.ITunesExt)
	assert.Equal(t, "Dana", parsed.ITunesExt.Author)
	assert.Equal(t, "no", parsed.ITunesExt.Explicit)
	require.NotNil(t, parsed.ITunesExt.Owner)
	assert.Equal(t, "dana@example.com", parsed.ITunesExt.Owner.Email)
	require.Len(t, parsed.ITunesExt.Categories, 2)
	assert.Equal(t, "Technology", parsed.ITunesExt.Categories[0].Text)

	require.Len(t, parsed.Items, 1)
	item := parsed.Items[0]
	assert.Equal(t, "Episode tech-talk-s1e1", item.Title)
	assert.Equal(t, "tech-talk-s1e1", item.GUID)
	require.NotNil(t, item.PublishedParsed)
	assert.True(t, item.PublishedParsed.Equal(publishedAt))

	require.Len(t, item.Enclosures, 1)
	assert.Equal(t, "https://cdn.example.com/tech-talk/episodes/tech-talk-s1e1.mp3", item.Enclosures[0].URL)
	assert.Equal(t, "2048", item.Enclosures[0].Length)
	assert.Equal(t, "audio/mpeg", item.Enclosures[0].Type)

	require.NotNil(t, item.ITunesExt)
	assert.Equal(t, "1", item.ITunesExt.Season)
	assert.Equal(t, "1", item.ITunesExt.Episode)
	assert.Equal(t, "1800", item.ITunesExt.Duration)
	assert.Equal(t, "full", item.ITunesExt.EpisodeType)
}

func TestBuildIsDeterministic(t *testing.T) {
	feed := testFeed()
	publishedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	episodes := []*podpub.Episode{
		testEpisode("tech-talk-s1e2", 1, 2, publishedAt.Add(24*time.Hour)),
		testEpisode("tech-talk-s1e1", 1, 1, publishedAt),
	}

	builder := feedxml.New()
	first, err := builder.Build(feed, episodes, feedURL)
	require.NoError(t, err)
	second, err := builder.Build(feed, episodes, feedURL)
	require.NoError(t, err)

	assert.Equal(t, first, second, "unchanged inputs must render byte-identical documents")
}

func TestBuildPreservesEpisodeOrder(t *testing.T) {
	feed := testFeed()
	publishedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	episodes := []*podpub.Episode{
		testEpisode("tech-talk-s1e3", 1, 3, publishedAt.Add(48*time.Hour)),
		testEpisode("tech-talk-s1e2", 1, 2, publishedAt.Add(24*time.Hour)),
		testEpisode("tech-talk-s1e1", 1, 1, publishedAt),
	}

	doc, err := feedxml.New().Build(feed, episodes, feedURL)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 3)
	assert.Equal(t, "tech-talk-s1e3", parsed.Items[0].GUID)
	assert.Equal(t, "tech-talk-s1e2", parsed.Items[1].GUID)
	assert.Equal(t, "tech-talk-s1e1", parsed.Items[2].GUID)
}

func TestBuildEmptyFeed(t *testing.T) {
	feed := testFeed()

	doc, err := feedxml.New().Build(feed, nil, feedURL)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, parsed.Items)

	// An empty feed's lastBuildDate falls back to the feed creation time.
	assert.Contains(t, string(doc), "<lastBuildDate>Wed, 01 Apr 2026 09:00:00 +0000</lastBuildDate>")
}

func TestBuildOmitsUnsetNumbering(t *testing.T) {
	feed := testFeed()
	episode := testEpisode("tech-talk-0afc9e", 0, 0, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	episode.Duration = 0

	doc, err := feedxml.New().Build(feed, []*podpub.Episode{episode}, feedURL)
	require.NoError(t, err)

	body := string(doc)
	assert.NotContains(t, body, "<itunes:episode>")
	assert.NotContains(t, body, "<itunes:season>")
	assert.NotContains(t, body, "<itunes:duration>")
	assert.Contains(t, body, `<guid isPermaLink="false">tech-talk-0afc9e</guid>`)
}

func TestBuildRequiresFeed(t *testing.T) {
	_, err := feedxml.New().Build(nil, nil, feedURL)
	assert.Error(t, err)
}

func TestBuildRequiresAudioURL(t *testing.T) {
	episode := testEpisode("tech-talk-s1e1", 1, 1, time.Now())
	episode.AudioURL = ""

	_, err := feedxml.New().Build(testFeed(), []*podpub.Episode{episode}, feedURL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "tech-talk-s1e1"))
}
