// Package config loads publishing configuration from a YAML file and the
// environment and assembles a ready podpub.Service from it.
package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration document.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Feed     *FeedConfig    `yaml:"feed,omitempty"`
}

// DatabaseConfig selects and parameterizes the metadata store.
type DatabaseConfig struct {
	// Driver is one of "memory", "sqlite", "postgres".
	Driver string `yaml:"driver" env:"PODPUB_DB_DRIVER" env-default:"sqlite"`

	// Path is the sqlite database file.
	Path string `yaml:"path" env:"PODPUB_DB_PATH" env-default:"podpub.db"`

	// URL is the postgres connection string.
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// StorageConfig selects and parameterizes the object-storage backend.
type StorageConfig struct {
	// Provider is one of "memory", "fs", "s3".
	Provider string `yaml:"provider" env:"PODPUB_STORAGE_PROVIDER" env-default:"s3"`

	// S3-compatible settings.
	Bucket       string `yaml:"bucket" env:"PODPUB_S3_BUCKET"`
	Region       string `yaml:"region" env:"PODPUB_S3_REGION"`
	AccessKey    string `yaml:"access_key" env:"PODPUB_S3_ACCESS_KEY"`
	SecretKey    string `yaml:"secret_key" env:"PODPUB_S3_SECRET_KEY"`
	Endpoint     string `yaml:"endpoint" env:"PODPUB_S3_ENDPOINT"`
	CustomDomain string `yaml:"custom_domain" env:"PODPUB_S3_CUSTOM_DOMAIN"`
	UsePathStyle bool   `yaml:"use_path_style" env:"PODPUB_S3_USE_PATH_STYLE"`
	CreateBucket bool   `yaml:"create_bucket" env:"PODPUB_S3_CREATE_BUCKET"`

	// Filesystem/memory settings.
	BaseDir string `yaml:"base_dir" env:"PODPUB_STORAGE_BASE_DIR"`
	BaseURL string `yaml:"base_url" env:"PODPUB_STORAGE_BASE_URL"`
}

// ServerConfig parameterizes the local feed server.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"PODPUB_SERVER_ADDR" env-default:":8080"`
}

// FeedConfig describes the feed the CLI publishes into.
type FeedConfig struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author"`
	Email       string   `yaml:"email"`
	Language    string   `yaml:"language"`
	Copyright   string   `yaml:"copyright"`
	Explicit    bool     `yaml:"explicit"`
	Categories  []string `yaml:"categories"`
	ImageURL    string   `yaml:"image_url"`
	WebsiteURL  string   `yaml:"website_url"`
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv builds a configuration from the environment alone.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver/provider selection and their required fields.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Storage.Provider {
	case "memory":
		if c.Storage.BaseURL == "" {
			return errors.New("storage.base_url is required for the memory provider")
		}
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage.base_dir is required for the fs provider")
		}
		if c.Storage.BaseURL == "" {
			return errors.New("storage.base_url is required for the fs provider")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the s3 provider")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	return nil
}
