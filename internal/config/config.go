package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Thumbnails ThumbnailsConfig `yaml:"thumbnails"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Session    SessionConfig    `yaml:"session"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig picks where uploaded videos live. Backend "local" keeps
// files under Dir and serves them from this process; "gcs" uploads to the
// named bucket and hands out public object URLs.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	Bucket        string `yaml:"bucket"`
	Dir           string `yaml:"dir"`
	BaseURL       string `yaml:"base_url"`
	Namespace     string `yaml:"namespace"`
	MaxUploadSize int64  `yaml:"max_upload_size"` // bytes
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ThumbnailsConfig struct {
	OutputDir     string `yaml:"output_dir"`
	CacheCapacity int    `yaml:"cache_capacity"`
	CacheMaxSize  int64  `yaml:"cache_max_size"` // bytes
}

// SweeperConfig controls cleanup of stored videos that never made it into
// the catalog.
type SweeperConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Grace    time.Duration `yaml:"grace"`
}

// SessionConfig pins the uploader identity. Leave UserID empty to run with
// a generated anonymous identity instead.
type SessionConfig struct {
	UserID      string `yaml:"user_id"`
	DisplayName string `yaml:"display_name"`
	AvatarURL   string `yaml:"avatar_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0,
		},
		Storage: StorageConfig{
			Backend:       "local",
			Dir:           "data/videos",
			BaseURL:       "/api/v1/media",
			Namespace:     "videos",
			MaxUploadSize: 2 << 30, // 2 GB
		},
		Database: DatabaseConfig{
			Path: "data/catalog.db",
		},
		Thumbnails: ThumbnailsConfig{
			OutputDir:     "data/thumbnails",
			CacheCapacity: 1000,
			CacheMaxSize:  512 * 1024 * 1024, // 512 MB
		},
		Sweeper: SweeperConfig{
			Enabled:  true,
			Interval: time.Hour,
			Grace:    24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}

	if path == "" {
		return cfg, cfg.validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the local backend")
		}
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
