package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/castforge/podpub/pkg/podpub"
	"github.com/castforge/podpub/pkg/podpub/config"
	"github.com/castforge/podpub/pkg/podpub/feedxml"
)

func newCreateFeedCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create-feed",
		Short: "Create the configured feed and publish its empty document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, engine, err := buildEngine(ctx, *configPath)
			if err != nil {
				return err
			}
			defer engine.Close()

			feedURL, err := ensureFeed(ctx, engine.Service, cfg.Feed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feed published at %s\n", feedURL)
			return nil
		},
	}
}

func newAddEpisodeCommand(configPath *string) *cobra.Command {
	var (
		audioPath     string
		title         string
		description   string
		episodeNumber int
		seasonNumber  int
		duration      int64
		publishedAt   string
	)

	cmd := &cobra.Command{
		Use:   "add-episode",
		Short: "Upload an audio artifact and republish the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, engine, err := buildEngine(ctx, *configPath)
			if err != nil {
				return err
			}
			defer engine.Close()

			// Publishing is get-or-create: a config-driven run must work on
			// the first and every subsequent invocation.
			if _, err := ensureFeed(ctx, engine.Service, cfg.Feed); err != nil {
				return err
			}

			metadata := podpub.EpisodeMetadata{
				Title:         title,
				Description:   description,
				EpisodeNumber: episodeNumber,
				SeasonNumber:  seasonNumber,
				Duration:      duration,
			}
			if publishedAt != "" {
				t, err := time.Parse(time.RFC3339, publishedAt)
				if err != nil {
					return fmt.Errorf("parse --published: %w", err)
				}
				metadata.PublishedAt = t
			}

			audio, err := os.Open(audioPath)
			if err != nil {
				return fmt.Errorf("open audio artifact: %w", err)
			}
			defer audio.Close()

			result, err := engine.Service.AddEpisode(ctx, podpub.AddEpisodeRequest{
				FeedSlug: cfg.Feed.Slug,
				Audio:    audio,
				FileName: filepath.Base(audioPath),
				Metadata: metadata,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Feed published at %s\n", result.FeedURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Episode published at %s\n", result.EpisodeAudioURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "Path to the audio artifact")
	cmd.Flags().StringVar(&title, "title", "", "Episode title")
	cmd.Flags().StringVar(&description, "description", "", "Episode description")
	cmd.Flags().IntVar(&episodeNumber, "episode", 0, "Episode number")
	cmd.Flags().IntVar(&seasonNumber, "season", 0, "Season number")
	cmd.Flags().Int64Var(&duration, "duration", 0, "Duration in seconds")
	cmd.Flags().StringVar(&publishedAt, "published", "", "Publication time (RFC 3339, default now)")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newRenderCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the feed document rebuilt from the metadata store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, engine, err := buildEngine(ctx, *configPath)
			if err != nil {
				return err
			}
			defer engine.Close()

			feed, err := engine.Service.GetFeed(ctx, cfg.Feed.Slug)
			if err != nil {
				return err
			}
			episodes, err := engine.Service.ListEpisodes(ctx, cfg.Feed.Slug)
			if err != nil {
				return err
			}
			doc, err := feedxml.New().Build(feed, episodes, engine.Service.FeedURL(feed.Slug))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
}

func buildEngine(ctx context.Context, configPath string) (*config.Config, *config.Engine, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Feed == nil || cfg.Feed.Slug == "" {
		return nil, nil, errors.New("config has no feed section")
	}
	engine, err := config.BuildEngine(ctx, cfg, newLogger())
	if err != nil {
		return nil, nil, err
	}
	return cfg, engine, nil
}

// ensureFeed creates the configured feed when it does not exist yet and
// returns the public feed URL either way.
func ensureFeed(ctx context.Context, svc podpub.Service, feed *config.FeedConfig) (string, error) {
	_, err := svc.GetFeed(ctx, feed.Slug)
	switch {
	case err == nil:
		return svc.FeedURL(feed.Slug), nil
	case errors.Is(err, podpub.ErrFeedNotFound):
		result, err := svc.CreateFeed(ctx, podpub.CreateFeedRequest{
			Slug:        feed.Slug,
			Title:       feed.Title,
			Description: feed.Description,
			Author:      feed.Author,
			Email:       feed.Email,
			Language:    feed.Language,
			Copyright:   feed.Copyright,
			Explicit:    feed.Explicit,
			Categories:  feed.Categories,
			ImageURL:    feed.ImageURL,
			WebsiteURL:  feed.WebsiteURL,
		})
		if err != nil {
			return "", err
		}
		return result.FeedURL, nil
	default:
		return "", err
	}
}
