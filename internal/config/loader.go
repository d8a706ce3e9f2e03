package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/unalkalkan/TwelveReader/pkg/types"
)

// Load reads the YAML config at configPath, applies TR_-prefixed
// environment variable overrides, and validates the result.
func Load(configPath string) (*types.Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("TR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers GetDefault's values with viper so an absent key
// in the file or environment still resolves to something sane, and so
// AutomaticEnv knows which TR_ variables to bind.
func setDefaults(v *viper.Viper) {
	def := GetDefault()

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)

	v.SetDefault("storage.adapter", def.Storage.Adapter)
	v.SetDefault("storage.local.base_path", def.Storage.Local.BasePath)

	v.SetDefault("sync.chapter_anchor_max_dist_ratio", def.Sync.ChapterAnchorMaxDistRatio)
	v.SetDefault("sync.sentence_match_max_dist_ratio", def.Sync.SentenceMatchMaxDistRatio)
	v.SetDefault("sync.chapter_anchor_sentences", def.Sync.ChapterAnchorSentences)
	v.SetDefault("sync.chapter_anchor_window_chars", def.Sync.ChapterAnchorWindowChars)
	v.SetDefault("sync.sentence_window_width", def.Sync.SentenceWindowWidth)
	v.SetDefault("sync.sentence_start_skip", def.Sync.SentenceStartSkip)

	v.SetDefault("pipeline.worker_pool_size", def.Pipeline.WorkerPoolSize)
	v.SetDefault("pipeline.max_retries", def.Pipeline.MaxRetries)
	v.SetDefault("pipeline.retry_backoff_ms", def.Pipeline.RetryBackoffMs)
	v.SetDefault("pipeline.temp_dir", def.Pipeline.TempDir)
}

// Validate checks if the configuration is valid.
func Validate(cfg *types.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	if cfg.Pipeline.WorkerPoolSize <= 0 {
		cfg.Pipeline.WorkerPoolSize = 4
	}
	if cfg.Pipeline.MaxRetries < 0 {
		cfg.Pipeline.MaxRetries = 3
	}

	if cfg.Sync.ChapterAnchorSentences <= 0 {
		cfg.Sync.ChapterAnchorSentences = 6
	}
	if cfg.Sync.ChapterAnchorWindowChars <= 0 {
		cfg.Sync.ChapterAnchorWindowChars = 5000
	}
	if cfg.Sync.SentenceWindowWidth <= 0 {
		cfg.Sync.SentenceWindowWidth = 10
	}
	if cfg.Sync.SentenceStartSkip <= 0 {
		cfg.Sync.SentenceStartSkip = 3
	}
	if cfg.Sync.ChapterAnchorMaxDistRatio <= 0 {
		cfg.Sync.ChapterAnchorMaxDistRatio = 0.10
	}
	if cfg.Sync.SentenceMatchMaxDistRatio <= 0 {
		cfg.Sync.SentenceMatchMaxDistRatio = 0.25
	}

	return nil
}

// GetDefault returns a default configuration.
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/twelvereader/storage",
			},
		},
		Sync: types.SyncConfig{
			ChapterAnchorMaxDistRatio: 0.10,
			SentenceMatchMaxDistRatio: 0.25,
			ChapterAnchorSentences:    6,
			ChapterAnchorWindowChars:  5000,
			SentenceWindowWidth:       10,
			SentenceStartSkip:         3,
		},
		Pipeline: types.PipelineConfig{
			WorkerPoolSize: 4,
			MaxRetries:     3,
			RetryBackoffMs: 1000,
			TempDir:        "/tmp/twelvereader",
		},
	}
}
