// Package sqlite provides a podpub.Repository backed by a local SQLite
// file, the default durable metadata store for single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/castforge/podpub/pkg/podpub"
)

const schema = `
CREATE TABLE IF NOT EXISTS feeds (
	id          TEXT PRIMARY KEY,
	slug        TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	author      TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT 'en',
	copyright   TEXT NOT NULL DEFAULT '',
	explicit    INTEGER NOT NULL DEFAULT 0,
	categories  TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	website_url TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	id             TEXT PRIMARY KEY,
	feed_id        TEXT NOT NULL REFERENCES feeds(id),
	guid           TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	audio_url      TEXT NOT NULL,
	audio_size     INTEGER NOT NULL DEFAULT 0,
	duration       INTEGER NOT NULL DEFAULT 0,
	mime_type      TEXT NOT NULL DEFAULT '',
	episode_number INTEGER NOT NULL DEFAULT 0,
	season_number  INTEGER NOT NULL DEFAULT 0,
	episode_type   TEXT NOT NULL DEFAULT 'full',
	explicit       INTEGER NOT NULL DEFAULT 0,
	image_url      TEXT NOT NULL DEFAULT '',
	published_at   TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	UNIQUE (feed_id, guid)
);

CREATE INDEX IF NOT EXISTS idx_episodes_feed ON episodes(feed_id, published_at DESC);
`

// Repository implements podpub.Repository on SQLite via sqlx and the
// modernc driver. The schema is bootstrapped on Open.
type Repository struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// prepares the schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Repository, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The engine serializes per-feed writes itself; a single connection
	// avoids SQLITE_BUSY on concurrent feeds sharing the one file.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

type feedRow struct {
	ID          string `db:"id"`
	Slug        string `db:"slug"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Author      string `db:"author"`
	Email       string `db:"email"`
	Language    string `db:"language"`
	Copyright   string `db:"copyright"`
	Explicit    bool   `db:"explicit"`
	Categories  string `db:"categories"`
	ImageURL    string `db:"image_url"`
	WebsiteURL  string `db:"website_url"`
	CreatedAt   string `db:"created_at"`
}

type episodeRow struct {
	ID            string `db:"id"`
	FeedID        string `db:"feed_id"`
	GUID          string `db:"guid"`
	Title         string `db:"title"`
	Description   string `db:"description"`
	AudioURL      string `db:"audio_url"`
	AudioSize     int64  `db:"audio_size"`
	Duration      int64  `db:"duration"`
	MIMEType      string `db:"mime_type"`
	EpisodeNumber int    `db:"episode_number"`
	SeasonNumber  int    `db:"season_number"`
	EpisodeType   string `db:"episode_type"`
	Explicit      bool   `db:"explicit"`
	ImageURL      string `db:"image_url"`
	PublishedAt   string `db:"published_at"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

func (r *Repository) CreateFeed(ctx context.Context, feed *podpub.Feed) error {
	categories, err := encodeCategories(feed.Categories)
	if err != nil {
		return fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO feeds (id, slug, title, description, author, email, language,
			copyright, explicit, categories, image_url, website_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		feed.ID.String(), feed.Slug, feed.Title, feed.Description, feed.Author,
		feed.Email, feed.Language, feed.Copyright, feed.Explicit,
		categories, feed.ImageURL, feed.WebsiteURL,
		formatTime(feed.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return podpub.ErrDuplicateSlug
		}
		return fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	return nil
}

func (r *Repository) GetFeed(ctx context.Context, slug string) (*podpub.Feed, error) {
	var row feedRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM feeds WHERE slug = ?`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, podpub.ErrFeedNotFound
		}
		return nil, err
	}
	return row.toFeed()
}

func (r *Repository) GetEpisode(ctx context.Context, feedID uuid.UUID, guid string) (*podpub.Episode, error) {
	var row episodeRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM episodes WHERE feed_id = ? AND guid = ?`, feedID.String(), guid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, podpub.ErrEpisodeNotFound
		}
		return nil, err
	}
	return row.toEpisode()
}

func (r *Repository) UpsertEpisode(ctx context.Context, episode *podpub.Episode) (*podpub.Episode, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	defer tx.Rollback()

	stored := *episode

	var existing episodeRow
	err = tx.GetContext(ctx, &existing,
		`SELECT * FROM episodes WHERE feed_id = ? AND guid = ?`,
		episode.FeedID.String(), episode.GUID)
	switch {
	case err == nil:
		stored.ID, err = uuid.Parse(existing.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt episode id: %w", podpub.ErrMetadataWrite, err)
		}
		stored.CreatedAt, err = parseTime(existing.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
		}
		stored.UpdatedAt = time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			UPDATE episodes SET title = ?, description = ?, audio_url = ?,
				audio_size = ?, duration = ?, mime_type = ?, episode_number = ?,
				season_number = ?, episode_type = ?, explicit = ?, image_url = ?,
				published_at = ?, updated_at = ?
			WHERE feed_id = ? AND guid = ?`,
			stored.Title, stored.Description, stored.AudioURL, stored.AudioSize,
			stored.Duration, stored.MIMEType, stored.EpisodeNumber,
			stored.SeasonNumber, stored.EpisodeType, stored.Explicit,
			stored.ImageURL, formatTime(stored.PublishedAt),
			formatTime(stored.UpdatedAt), stored.FeedID.String(), stored.GUID)
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO episodes (id, feed_id, guid, title, description, audio_url,
				audio_size, duration, mime_type, episode_number, season_number,
				episode_type, explicit, image_url, published_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			stored.ID.String(), stored.FeedID.String(), stored.GUID, stored.Title,
			stored.Description, stored.AudioURL, stored.AudioSize, stored.Duration,
			stored.MIMEType, stored.EpisodeNumber, stored.SeasonNumber,
			stored.EpisodeType, stored.Explicit, stored.ImageURL,
			formatTime(stored.PublishedAt), formatTime(stored.CreatedAt),
			formatTime(stored.UpdatedAt))
		if err != nil && isUniqueViolation(err) {
			return nil, podpub.ErrDuplicateGUID
		}
	default:
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	return &stored, nil
}

func (r *Repository) ListEpisodes(ctx context.Context, feedID uuid.UUID) ([]*podpub.Episode, error) {
	var rows []episodeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM episodes
		WHERE feed_id = ?
		ORDER BY published_at DESC,
			CASE WHEN season_number = 0 THEN 1 ELSE 0 END, season_number DESC,
			CASE WHEN episode_number = 0 THEN 1 ELSE 0 END, episode_number DESC,
			guid ASC`,
		feedID.String())
	if err != nil {
		return nil, err
	}

	episodes := make([]*podpub.Episode, 0, len(rows))
	for _, row := range rows {
		episode, err := row.toEpisode()
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	return episodes, nil
}

func (row feedRow) toFeed() (*podpub.Feed, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt feed id %q: %w", row.ID, err)
	}
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}
	categories, err := decodeCategories(row.Categories)
	if err != nil {
		return nil, err
	}
	return &podpub.Feed{
		ID:          id,
		Slug:        row.Slug,
		Title:       row.Title,
		Description: row.Description,
		Author:      row.Author,
		Email:       row.Email,
		Language:    row.Language,
		Copyright:   row.Copyright,
		Explicit:    row.Explicit,
		Categories:  categories,
		ImageURL:    row.ImageURL,
		WebsiteURL:  row.WebsiteURL,
		CreatedAt:   createdAt,
	}, nil
}

func (row episodeRow) toEpisode() (*podpub.Episode, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt episode id %q: %w", row.ID, err)
	}
	feedID, err := uuid.Parse(row.FeedID)
	if err != nil {
		return nil, fmt.Errorf("corrupt feed id %q: %w", row.FeedID, err)
	}
	publishedAt, err := parseTime(row.PublishedAt)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &podpub.Episode{
		ID:            id,
		FeedID:        feedID,
		GUID:          row.GUID,
		Title:         row.Title,
		Description:   row.Description,
		AudioURL:      row.AudioURL,
		AudioSize:     row.AudioSize,
		Duration:      row.Duration,
		MIMEType:      row.MIMEType,
		EpisodeNumber: row.EpisodeNumber,
		SeasonNumber:  row.SeasonNumber,
		EpisodeType:   row.EpisodeType,
		Explicit:      row.Explicit,
		ImageURL:      row.ImageURL,
		PublishedAt:   publishedAt,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// Fixed-width nanoseconds so UTC timestamps sort lexicographically, which
// the list query's ORDER BY relies on. (RFC3339Nano trims trailing zeros
// and breaks that property.)
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp %q: %w", value, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Categories are stored as a JSON array; values may themselves contain
// commas, so a joined string would not round-trip.
func encodeCategories(categories []string) (string, error) {
	if len(categories) == 0 {
		return "", nil
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(data), nil
}

func decodeCategories(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var categories []string
	if err := json.Unmarshal([]byte(value), &categories); err != nil {
		return nil, fmt.Errorf("corrupt categories %q: %w", value, err)
	}
	return categories, nil
}
