// Package feedxml renders a feed and its episodes into an RSS 2.0 document
// with iTunes podcast extensions.
//
// Rendering is a pure function of its inputs: no generation timestamps are
// embedded beyond the publication dates already stored on the data, so two
// builds over unchanged data produce byte-identical documents. That property
// is what makes republishing the document idempotent.
package feedxml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/castforge/podpub/pkg/podpub"
)

const (
	itunesNS = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	atomNS   = "http://www.w3.org/2005/Atom"

	rssContentType = "application/rss+xml"
)

// Builder implements podpub.DocumentBuilder for RSS 2.0 with iTunes tags.
type Builder struct{}

// New returns an RSS document builder.
func New() *Builder { return &Builder{} }

// ContentType returns the MIME type RSS documents are served as.
func (*Builder) ContentType() string { return rssContentType }

// Build renders the feed document. Episodes must already be in canonical
// order; the document preserves their order. feedURL is embedded as the
// channel's atom:link rel="self".
func (*Builder) Build(feed *podpub.Feed, episodes []*podpub.Episode, feedURL string) ([]byte, error) {
	if feed == nil {
		return nil, fmt.Errorf("feed is required")
	}

	ch := &channel{
		Title:         feed.Title,
		Link:          feed.WebsiteURL,
		Description:   feed.Description,
		Language:      feed.Language,
		Copyright:     feed.Copyright,
		PubDate:       formatTime(feed.CreatedAt),
		LastBuildDate: formatTime(lastUpdated(feed, episodes)),
		AtomLink:      &atomLink{Href: feedURL, Rel: "self", Type: rssContentType},
		IAuthor:       feed.Author,
		IExplicit:     explicitValue(feed.Explicit),
	}
	if feed.Author != "" || feed.Email != "" {
		ch.IOwner = &itunesOwner{Name: feed.Author, Email: feed.Email}
		if feed.Email != "" {
			ch.ManagingEditor = fmt.Sprintf("%s (%s)", feed.Email, feed.Author)
		}
	}
	if feed.ImageURL != "" {
		ch.Image = &rssImage{URL: feed.ImageURL, Title: feed.Title, Link: feed.WebsiteURL}
		ch.IImage = &itunesImage{Href: feed.ImageURL}
	}
	for _, category := range feed.Categories {
		ch.ICategories = append(ch.ICategories, itunesCategory{Text: category})
	}

	for _, e := range episodes {
		it, err := buildItem(e)
		if err != nil {
			return nil, err
		}
		ch.Items = append(ch.Items, it)
	}

	doc := &rssDoc{
		Version:  "2.0",
		ItunesNS: itunesNS,
		AtomNS:   atomNS,
		Channel:  ch,
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func buildItem(e *podpub.Episode) (*item, error) {
	if e.AudioURL == "" {
		return nil, fmt.Errorf("episode %q has no audio url", e.GUID)
	}
	it := &item{
		Title:       e.Title,
		Description: e.Description,
		GUID:        guid{IsPermaLink: "false", Value: e.GUID},
		PubDate:     formatTime(e.PublishedAt),
		Enclosure: &enclosure{
			URL:    e.AudioURL,
			Length: e.AudioSize,
			Type:   e.MIMEType,
		},
		IExplicit:    explicitValue(e.Explicit),
		IEpisodeType: e.EpisodeType,
	}
	if e.Duration > 0 {
		it.IDuration = strconv.FormatInt(e.Duration, 10)
	}
	if e.EpisodeNumber > 0 {
		it.IEpisode = strconv.Itoa(e.EpisodeNumber)
	}
	if e.SeasonNumber > 0 {
		it.ISeason = strconv.Itoa(e.SeasonNumber)
	}
	if e.ImageURL != "" {
		it.IImage = &itunesImage{Href: e.ImageURL}
	}
	return it, nil
}

// lastUpdated picks the newest episode update for lastBuildDate, falling
// back to the feed creation time for an empty feed. Derived from stored
// timestamps only, never from the wall clock.
func lastUpdated(feed *podpub.Feed, episodes []*podpub.Episode) time.Time {
	latest := feed.CreatedAt
	for _, e := range episodes {
		if e.UpdatedAt.After(latest) {
			latest = e.UpdatedAt
		}
	}
	return latest
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}

func explicitValue(explicit bool) string {
	if explicit {
		return "yes"
	}
	return "no"
}
