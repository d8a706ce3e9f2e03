package types

// Config represents the overall application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" mapstructure:"server"`
	Storage  StorageConfig  `yaml:"storage" json:"storage" mapstructure:"storage"`
	Sync     SyncConfig     `yaml:"sync" json:"sync" mapstructure:"sync"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline" mapstructure:"pipeline"`
}

// ServerConfig holds HTTP server settings for the thin status/health API
type ServerConfig struct {
	Host         string `yaml:"host" json:"host" mapstructure:"host"`
	Port         int    `yaml:"port" json:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout" mapstructure:"write_timeout"`
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter string           `yaml:"adapter" json:"adapter" mapstructure:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts `yaml:"local" json:"local" mapstructure:"local"`
	S3      S3StorageOpts    `yaml:"s3" json:"s3" mapstructure:"s3"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path" mapstructure:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	Region          string `yaml:"region" json:"region" mapstructure:"region"`
	Bucket          string `yaml:"bucket" json:"bucket" mapstructure:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" mapstructure:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl" mapstructure:"use_ssl"`
}

// SyncConfig holds the synchronization engine's tunable thresholds.
// Defaults match spec.md's literal values (§4.3, §4.4, §4.5).
type SyncConfig struct {
	// ChapterAnchorMaxDistRatio is k in max_dist = floor(k * |needle|) for C4.
	ChapterAnchorMaxDistRatio float64 `yaml:"chapter_anchor_max_dist_ratio" json:"chapter_anchor_max_dist_ratio" mapstructure:"chapter_anchor_max_dist_ratio"`
	// SentenceMatchMaxDistRatio is k for C5.
	SentenceMatchMaxDistRatio float64 `yaml:"sentence_match_max_dist_ratio" json:"sentence_match_max_dist_ratio" mapstructure:"sentence_match_max_dist_ratio"`
	// ChapterAnchorSentences is the number of leading sentences (~6) used to anchor a chapter.
	ChapterAnchorSentences int `yaml:"chapter_anchor_sentences" json:"chapter_anchor_sentences" mapstructure:"chapter_anchor_sentences"`
	// ChapterAnchorWindowChars is the search window width (~5000) for C4.
	ChapterAnchorWindowChars int `yaml:"chapter_anchor_window_chars" json:"chapter_anchor_window_chars" mapstructure:"chapter_anchor_window_chars"`
	// SentenceWindowWidth is the sentence-count window width (10) for C5.
	SentenceWindowWidth int `yaml:"sentence_window_width" json:"sentence_window_width" mapstructure:"sentence_window_width"`
	// SentenceStartSkip is the start_sentence advance (3) on a C4 miss.
	SentenceStartSkip int `yaml:"sentence_start_skip" json:"sentence_start_skip" mapstructure:"sentence_start_skip"`
}

// PipelineConfig holds pipeline-level settings
type PipelineConfig struct {
	WorkerPoolSize int    `yaml:"worker_pool_size" json:"worker_pool_size" mapstructure:"worker_pool_size"`
	MaxRetries     int    `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`
	RetryBackoffMs int    `yaml:"retry_backoff_ms" json:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	TempDir        string `yaml:"temp_dir" json:"temp_dir" mapstructure:"temp_dir"`
}
