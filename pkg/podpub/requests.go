package podpub

import (
	"io"
	"time"
)

// CreateFeedRequest contains the configuration for a new feed.
type CreateFeedRequest struct {
	Slug        string
	Title       string
	Description string
	Author      string
	Email       string
	Language    string // IETF tag; defaults to "en"
	Copyright   string
	Explicit    bool
	Categories  []string
	ImageURL    string
	WebsiteURL  string
}

// CreateFeedResult is returned by Service.CreateFeed.
type CreateFeedResult struct {
	Feed    *Feed
	FeedURL string
}

// EpisodeMetadata is the episode description supplied by the caller
// alongside the audio artifact.
type EpisodeMetadata struct {
	Title         string
	Description   string
	EpisodeNumber int // optional; 0 = unset
	SeasonNumber  int // optional; 0 = unset
	Duration      int64
	MIMEType      string // optional; derived from the file name when empty
	EpisodeType   string // full, trailer, bonus; defaults to full
	Explicit      bool
	ImageURL      string
	PublishedAt   time.Time // optional; defaults to the commit time
}

// AddEpisodeRequest contains the audio artifact and metadata for one
// episode. FileName is only used to derive the object key extension and,
// when Metadata.MIMEType is empty, the enclosure content type.
type AddEpisodeRequest struct {
	FeedSlug string
	Audio    io.Reader
	FileName string
	Metadata EpisodeMetadata
}

// AddEpisodeResult is returned by Service.AddEpisode.
type AddEpisodeResult struct {
	Episode         *Episode
	FeedURL         string
	EpisodeAudioURL string
}
