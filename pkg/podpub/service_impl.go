package podpub

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultMIMEType = "audio/mpeg"

type service struct {
	repository Repository
	store      BlobStore
	builder    DocumentBuilder
	events     EventSink
	logger     *slog.Logger
	locks      *keyedLocks
}

func (s *service) CreateFeed(ctx context.Context, req CreateFeedRequest) (*CreateFeedResult, error) {
	if err := validateCreateFeed(req); err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	feed := &Feed{
		ID:          uuid.New(),
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Email:       req.Email,
		Language:    language,
		Copyright:   req.Copyright,
		Explicit:    req.Explicit,
		Categories:  req.Categories,
		ImageURL:    req.ImageURL,
		WebsiteURL:  req.WebsiteURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repository.CreateFeed(ctx, feed); err != nil {
		return nil, &FeedError{Slug: feed.Slug, Op: "create", Err: err}
	}
	s.fireEvent(ctx, func() error { return s.events.FeedCreated(ctx, feed) })

	// The feed row is committed regardless of what happens to the document:
	// feed existence is not coupled to document availability. The caller
	// retries the document alone via RepublishFeed. The publish itself runs
	// under the feed lock so a stalled initial upload cannot overwrite a
	// document a concurrent AddEpisode already published.
	lock := s.locks.get(feed.Slug)
	lock.Lock()
	defer lock.Unlock()

	feedURL, err := s.publishDocument(ctx, feed)
	if err != nil {
		return nil, &FeedError{Slug: feed.Slug, Op: "publish document", Err: fmt.Errorf("%w: %w", ErrFeedPublishFailed, err)}
	}

	return &CreateFeedResult{Feed: feed, FeedURL: feedURL}, nil
}

func (s *service) AddEpisode(ctx context.Context, req AddEpisodeRequest) (*AddEpisodeResult, error) {
	if err := validateAddEpisode(req); err != nil {
		return nil, err
	}

	feed, err := s.repository.GetFeed(ctx, req.FeedSlug)
	if err != nil {
		return nil, &FeedError{Slug: req.FeedSlug, Op: "lookup", Err: err}
	}

	// The artifact is buffered whole: the content hash (GUID fallback) and
	// the enclosure length both need the full byte count before upload.
	data, err := readArtifact(req.Audio)
	if err != nil {
		return nil, &EpisodeError{Slug: feed.Slug, Op: "read artifact", Err: err}
	}

	guid := DeriveGUID(feed.Slug, req.Metadata.SeasonNumber, req.Metadata.EpisodeNumber, hashBytes(data))
	key := EpisodeObjectKey(feed.Slug, guid, req.FileName)
	mimeType := episodeMIMEType(req)

	// Upload before commit. A crash after this upload but before the commit
	// leaves an orphaned object keyed by slug/guid, which the idempotent
	// retry overwrites; the reverse order could leave a committed row whose
	// audio_url serves 404s.
	params := UploadParams{ObjectKey: key, MimeType: mimeType}
	if err := s.store.Upload(ctx, bytes.NewReader(data), params); err != nil {
		return nil, &EpisodeError{Slug: feed.Slug, GUID: guid, Op: "upload audio",
			Err: fmt.Errorf("%w: %w", ErrUploadFailed, err)}
	}

	now := time.Now().UTC()
	publishedAt := req.Metadata.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}
	episodeType := req.Metadata.EpisodeType
	if episodeType == "" {
		episodeType = EpisodeTypeFull
	}
	episode := &Episode{
		ID:            uuid.New(),
		FeedID:        feed.ID,
		GUID:          guid,
		Title:         req.Metadata.Title,
		Description:   req.Metadata.Description,
		AudioURL:      s.store.PublicURL(key),
		AudioSize:     int64(len(data)),
		Duration:      req.Metadata.Duration,
		MIMEType:      mimeType,
		EpisodeNumber: req.Metadata.EpisodeNumber,
		SeasonNumber:  req.Metadata.SeasonNumber,
		EpisodeType:   episodeType,
		Explicit:      req.Metadata.Explicit,
		ImageURL:      req.Metadata.ImageURL,
		PublishedAt:   publishedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lock := s.locks.get(feed.Slug)
	lock.Lock()
	defer lock.Unlock()

	stored, err := s.repository.UpsertEpisode(ctx, episode)
	if err != nil {
		// The audio object exists but the row does not: report this apart
		// from a clean upload failure so the caller knows a same-GUID retry
		// reconciles rather than duplicates.
		return nil, &EpisodeError{Slug: feed.Slug, GUID: guid, Op: "commit metadata",
			Err: fmt.Errorf("%w: %w", ErrInconsistentState, err)}
	}
	s.fireEvent(ctx, func() error { return s.events.EpisodePublished(ctx, feed, stored) })

	feedURL, err := s.publishDocument(ctx, feed)
	if err != nil {
		return nil, &EpisodeError{Slug: feed.Slug, GUID: guid, Op: "publish document",
			Err: fmt.Errorf("%w: %w", ErrFeedPublishFailed, err)}
	}

	return &AddEpisodeResult{
		Episode:         stored,
		FeedURL:         feedURL,
		EpisodeAudioURL: stored.AudioURL,
	}, nil
}

func (s *service) RepublishFeed(ctx context.Context, slug string) (string, error) {
	feed, err := s.repository.GetFeed(ctx, slug)
	if err != nil {
		return "", &FeedError{Slug: slug, Op: "lookup", Err: err}
	}

	lock := s.locks.get(feed.Slug)
	lock.Lock()
	defer lock.Unlock()

	feedURL, err := s.publishDocument(ctx, feed)
	if err != nil {
		return "", &FeedError{Slug: slug, Op: "publish document", Err: fmt.Errorf("%w: %w", ErrFeedPublishFailed, err)}
	}
	return feedURL, nil
}

func (s *service) GetFeed(ctx context.Context, slug string) (*Feed, error) {
	return s.repository.GetFeed(ctx, slug)
}

func (s *service) ListEpisodes(ctx context.Context, slug string) ([]*Episode, error) {
	feed, err := s.repository.GetFeed(ctx, slug)
	if err != nil {
		return nil, &FeedError{Slug: slug, Op: "lookup", Err: err}
	}
	return s.repository.ListEpisodes(ctx, feed.ID)
}

func (s *service) FeedURL(slug string) string {
	return s.store.PublicURL(FeedObjectKey(slug))
}

// publishDocument rebuilds the feed document from current metadata-store
// state and uploads it, overwriting the previous document. Callers hold the
// feed lock when the rebuild must be atomic with a metadata mutation.
func (s *service) publishDocument(ctx context.Context, feed *Feed) (string, error) {
	episodes, err := s.repository.ListEpisodes(ctx, feed.ID)
	if err != nil {
		return "", err
	}

	feedURL := s.FeedURL(feed.Slug)
	doc, err := s.builder.Build(feed, episodes, feedURL)
	if err != nil {
		return "", err
	}

	params := UploadParams{ObjectKey: FeedObjectKey(feed.Slug), MimeType: s.builder.ContentType()}
	if err := s.store.Upload(ctx, bytes.NewReader(doc), params); err != nil {
		return "", err
	}
	s.fireEvent(ctx, func() error { return s.events.FeedPublished(ctx, feed, feedURL) })
	return feedURL, nil
}

func (s *service) fireEvent(ctx context.Context, fire func() error) {
	if err := fire(); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "error", err)
	}
}

func readArtifact(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: audio artifact is empty", ErrInvalidInput)
	}
	return data, nil
}

func hashBytes(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

func episodeMIMEType(req AddEpisodeRequest) string {
	if req.Metadata.MIMEType != "" {
		return req.Metadata.MIMEType
	}
	if ext := strings.ToLower(path.Ext(req.FileName)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return defaultMIMEType
}
