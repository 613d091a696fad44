package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth. Only read from the environment.
	APIKey string `yaml:"-"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// Outline cache. Empty keeps the cache in memory.
	CacheDir string `yaml:"cache_dir"`

	// Rolling window for /api/stats.
	StatsWindow time.Duration `yaml:"stats_window"`

	// PDF glyph spacing
	WordSpaceRatio float64 `yaml:"word_space_ratio"`

	// Outline heuristics
	Outline outline.Config `yaml:"outline"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:           "8090",
		WorkerCount:    4,
		MaxQueueSize:   100,
		MaxUploadBytes: 52428800, // 50MB
		JobTTL:         1 * time.Hour,
		StatsWindow:    1 * time.Hour,
		WordSpaceRatio: parser.DefaultOptions().WordSpaceRatio,
		Outline:        outline.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = os.Getenv("DOCOUTLINE_API_KEY")

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.CacheDir = envOr("CACHE_DIR", cfg.CacheDir)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.WordSpaceRatio = envFloat("WORD_SPACE_RATIO", cfg.WordSpaceRatio)

	cfg.Outline.LineYTolerance = envFloat("LINE_Y_TOLERANCE", cfg.Outline.LineYTolerance)
	cfg.Outline.HeaderFooterYTolerance = envFloat("HEADER_FOOTER_Y_TOLERANCE", cfg.Outline.HeaderFooterYTolerance)
	cfg.Outline.BlockGapSizeMultiplier = envFloat("BLOCK_GAP_SIZE_MULTIPLIER", cfg.Outline.BlockGapSizeMultiplier)
	cfg.Outline.MinHeadingTextLength = envInt("MIN_HEADING_TEXT_LENGTH", cfg.Outline.MinHeadingTextLength)
	cfg.Outline.DefaultLevel = envOr("DEFAULT_HEADING_LEVEL", cfg.Outline.DefaultLevel)

	def := Defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = def.StatsWindow
	}

	return cfg, nil
}

// ParserOptions returns the parser settings carried by the config.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{Outline: c.Outline, WordSpaceRatio: c.WordSpaceRatio}
}

// Validate checks settings every binary depends on.
func (c Config) Validate() error {
	if err := c.Outline.Validate(); err != nil {
		return fmt.Errorf("outline: %w", err)
	}
	if c.WordSpaceRatio <= 0 {
		return fmt.Errorf("word_space_ratio must be > 0, got %v", c.WordSpaceRatio)
	}
	return nil
}

// ValidateServer additionally requires what the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New("DOCOUTLINE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
