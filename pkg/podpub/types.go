package podpub

import (
	"time"

	"github.com/google/uuid"
)

// EpisodeType values accepted by podcast directories.
const (
	EpisodeTypeFull    = "full"
	EpisodeTypeTrailer = "trailer"
	EpisodeTypeBonus   = "bonus"
)

// Feed is a named, publicly addressable collection of episodes rendered as
// one RSS document. The slug is immutable after creation: it determines the
// object key prefix and therefore every public URL the feed has ever issued.
type Feed struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Description string
	Author      string
	Email       string
	Language    string
	Copyright   string
	Explicit    bool
	Categories  []string
	ImageURL    string
	WebsiteURL  string
	CreatedAt   time.Time
}

// Episode is one published audio unit belonging to a Feed. Episodes are
// immutable once committed except for a same-GUID republish, which replaces
// the mutable fields while preserving ID and CreatedAt.
//
// EpisodeNumber and SeasonNumber are optional; zero means unset.
type Episode struct {
	ID            uuid.UUID
	FeedID        uuid.UUID
	GUID          string
	Title         string
	Description   string
	AudioURL      string
	AudioSize     int64 // enclosure length in bytes
	Duration      int64 // seconds
	MIMEType      string
	EpisodeNumber int
	SeasonNumber  int
	EpisodeType   string
	Explicit      bool
	ImageURL      string
	PublishedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
