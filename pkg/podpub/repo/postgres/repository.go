// Package postgres provides a podpub.Repository backed by PostgreSQL for
// shared deployments. Schema lives in migrations/0001_podpub.sql.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castforge/podpub/pkg/podpub"
)

// DBTX lets the repository run on either a pool or an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements podpub.Repository using PostgreSQL.
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewWithPool creates a repository on a pgx connection pool. The pool is
// required for UpsertEpisode, which opens its own transaction.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

func (r *Repository) CreateFeed(ctx context.Context, feed *podpub.Feed) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO feeds (id, slug, title, description, author, email, language,
			copyright, explicit, categories, image_url, website_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		feed.ID, feed.Slug, feed.Title, feed.Description, feed.Author, feed.Email,
		feed.Language, feed.Copyright, feed.Explicit, feed.Categories,
		feed.ImageURL, feed.WebsiteURL, feed.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return podpub.ErrDuplicateSlug
		}
		return fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	return nil
}

func (r *Repository) GetFeed(ctx context.Context, slug string) (*podpub.Feed, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, slug, title, description, author, email, language, copyright,
			explicit, categories, image_url, website_url, created_at
		FROM feeds WHERE slug = $1`, slug)

	var feed podpub.Feed
	err := row.Scan(&feed.ID, &feed.Slug, &feed.Title, &feed.Description,
		&feed.Author, &feed.Email, &feed.Language, &feed.Copyright,
		&feed.Explicit, &feed.Categories, &feed.ImageURL, &feed.WebsiteURL,
		&feed.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, podpub.ErrFeedNotFound
		}
		return nil, err
	}
	return &feed, nil
}

func (r *Repository) GetEpisode(ctx context.Context, feedID uuid.UUID, guid string) (*podpub.Episode, error) {
	return scanEpisode(r.db.QueryRow(ctx, episodeSelect+` WHERE feed_id = $1 AND guid = $2`, feedID, guid))
}

// UpsertEpisode runs in a transaction that locks the owning feed row, so all
// episode writes for one feed are serialized and concurrent readers observe
// either the pre- or post-upsert state.
func (r *Repository) UpsertEpisode(ctx context.Context, episode *podpub.Episode) (*podpub.Episode, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("%w: repository not backed by a pool", podpub.ErrMetadataWrite)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	defer tx.Rollback(ctx)

	var feedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM feeds WHERE id = $1 FOR UPDATE`, episode.FeedID).Scan(&feedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, podpub.ErrFeedNotFound
		}
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}

	stored := *episode
	row := tx.QueryRow(ctx, `
		INSERT INTO episodes (id, feed_id, guid, title, description, audio_url,
			audio_size, duration, mime_type, episode_number, season_number,
			episode_type, explicit, image_url, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (feed_id, guid) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			audio_url = EXCLUDED.audio_url,
			audio_size = EXCLUDED.audio_size,
			duration = EXCLUDED.duration,
			mime_type = EXCLUDED.mime_type,
			episode_number = EXCLUDED.episode_number,
			season_number = EXCLUDED.season_number,
			episode_type = EXCLUDED.episode_type,
			explicit = EXCLUDED.explicit,
			image_url = EXCLUDED.image_url,
			published_at = EXCLUDED.published_at,
			updated_at = $18
		RETURNING id, created_at, updated_at`,
		stored.ID, stored.FeedID, stored.GUID, stored.Title, stored.Description,
		stored.AudioURL, stored.AudioSize, stored.Duration, stored.MIMEType,
		stored.EpisodeNumber, stored.SeasonNumber, stored.EpisodeType,
		stored.Explicit, stored.ImageURL, stored.PublishedAt, stored.CreatedAt,
		stored.UpdatedAt, time.Now().UTC())
	if err := row.Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", podpub.ErrMetadataWrite, err)
	}
	return &stored, nil
}

func (r *Repository) ListEpisodes(ctx context.Context, feedID uuid.UUID) ([]*podpub.Episode, error) {
	rows, err := r.db.Query(ctx, episodeSelect+`
		WHERE feed_id = $1
		ORDER BY published_at DESC,
			CASE WHEN season_number = 0 THEN 1 ELSE 0 END, season_number DESC,
			CASE WHEN episode_number = 0 THEN 1 ELSE 0 END, episode_number DESC,
			guid ASC`, feedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	episodes := make([]*podpub.Episode, 0)
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

const episodeSelect = `
	SELECT id, feed_id, guid, title, description, audio_url, audio_size,
		duration, mime_type, episode_number, season_number, episode_type,
		explicit, image_url, published_at, created_at, updated_at
	FROM episodes`

func scanEpisode(row pgx.Row) (*podpub.Episode, error) {
	var e podpub.Episode
	err := row.Scan(&e.ID, &e.FeedID, &e.GUID, &e.Title, &e.Description,
		&e.AudioURL, &e.AudioSize, &e.Duration, &e.MIMEType, &e.EpisodeNumber,
		&e.SeasonNumber, &e.EpisodeType, &e.Explicit, &e.ImageURL,
		&e.PublishedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, podpub.ErrEpisodeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
