package podpub

import (
	"context"
	"log/slog"
)

// EventSink receives lifecycle notifications. Sink errors are logged and
// never fail the triggering operation.
type EventSink interface {
	FeedCreated(ctx context.Context, feed *Feed) error
	EpisodePublished(ctx context.Context, feed *Feed, episode *Episode) error
	FeedPublished(ctx context.Context, feed *Feed, feedURL string) error
}

type noopEventSink struct{}

// NewNoopEventSink returns an EventSink that discards all events.
func NewNoopEventSink() EventSink { return noopEventSink{} }

func (noopEventSink) FeedCreated(context.Context, *Feed) error { return nil }

func (noopEventSink) EpisodePublished(context.Context, *Feed, *Episode) error { return nil }

func (noopEventSink) FeedPublished(context.Context, *Feed, string) error { return nil }

type logEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink returns an EventSink that records events on the given
// structured logger.
func NewLogEventSink(logger *slog.Logger) EventSink {
	return &logEventSink{logger: logger}
}

func (s *logEventSink) FeedCreated(ctx context.Context, feed *Feed) error {
	s.logger.InfoContext(ctx, "feed created", "slug", feed.Slug, "title", feed.Title)
	return nil
}

func (s *logEventSink) EpisodePublished(ctx context.Context, feed *Feed, episode *Episode) error {
	s.logger.InfoContext(ctx, "episode published",
		"slug", feed.Slug, "guid", episode.GUID, "title", episode.Title, "bytes", episode.AudioSize)
	return nil
}

func (s *logEventSink) FeedPublished(ctx context.Context, feed *Feed, feedURL string) error {
	s.logger.InfoContext(ctx, "feed document published", "slug", feed.Slug, "url", feedURL)
	return nil
}
