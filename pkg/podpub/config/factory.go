package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castforge/podpub/pkg/podpub"
	"github.com/castforge/podpub/pkg/podpub/feedxml"
	memoryrepo "github.com/castforge/podpub/pkg/podpub/repo/memory"
	pgrepo "github.com/castforge/podpub/pkg/podpub/repo/postgres"
	sqliterepo "github.com/castforge/podpub/pkg/podpub/repo/sqlite"
	fsstorage "github.com/castforge/podpub/pkg/podpub/storage/fs"
	memorystorage "github.com/castforge/podpub/pkg/podpub/storage/memory"
	s3storage "github.com/castforge/podpub/pkg/podpub/storage/s3"
)

// Engine bundles an assembled service with the resources behind it.
type Engine struct {
	Service podpub.Service
	Store   podpub.BlobStore

	closers []func() error
}

// Close releases database handles held by the engine.
func (e *Engine) Close() error {
	var firstErr error
	for _, close := range e.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BuildEngine assembles the repository, blob store and publishing service
// selected by the configuration.
func BuildEngine(ctx context.Context, cfg *Config, logger *slog.Logger) (*Engine, error) {
	engine := &Engine{}

	repository, err := buildRepository(ctx, cfg, engine)
	if err != nil {
		return nil, err
	}
	store, err := buildBlobStore(ctx, cfg)
	if err != nil {
		engine.Close()
		return nil, err
	}
	engine.Store = store

	svc, err := podpub.New(
		podpub.WithRepository(repository),
		podpub.WithBlobStore(store),
		podpub.WithDocumentBuilder(feedxml.New()),
		podpub.WithEventSink(podpub.NewLogEventSink(logger)),
		podpub.WithLogger(logger),
	)
	if err != nil {
		engine.Close()
		return nil, err
	}
	engine.Service = svc
	return engine, nil
}

func buildRepository(ctx context.Context, cfg *Config, engine *Engine) (podpub.Repository, error) {
	switch cfg.Database.Driver {
	case "memory":
		return memoryrepo.New(), nil
	case "sqlite":
		repo, err := sqliterepo.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		engine.closers = append(engine.closers, repo.Close)
		return repo, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		engine.closers = append(engine.closers, func() error { pool.Close(); return nil })
		return pgrepo.NewWithPool(pool), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func buildBlobStore(ctx context.Context, cfg *Config) (podpub.BlobStore, error) {
	switch cfg.Storage.Provider {
	case "memory":
		return memorystorage.New(cfg.Storage.BaseURL), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: cfg.Storage.BaseDir,
			BaseURL: cfg.Storage.BaseURL,
		})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 cfg.Storage.Region,
			Bucket:                 cfg.Storage.Bucket,
			AccessKeyID:            cfg.Storage.AccessKey,
			SecretAccessKey:        cfg.Storage.SecretKey,
			Endpoint:               cfg.Storage.Endpoint,
			CustomDomain:           cfg.Storage.CustomDomain,
			UsePathStyle:           cfg.Storage.UsePathStyle,
			CreateBucketIfNotExist: cfg.Storage.CreateBucket,
		})
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
}
