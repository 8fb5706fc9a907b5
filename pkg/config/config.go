// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Index, RequestQueue, Batch, Kafka, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Index        IndexConfig        `yaml:"index"`
	RequestQueue RequestQueueConfig `yaml:"requestQueue"`
	Batch        BatchConfig        `yaml:"batch"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// IndexConfig controls stop words, ranking limits and internal fan-out.
type IndexConfig struct {
	StopWords         []string `yaml:"stopWords"`
	StopWordsText     string   `yaml:"stopWordsText"`
	MaxResults        int      `yaml:"maxResults"`
	RelevanceEpsilon  float64  `yaml:"relevanceEpsilon"`
	AccumulatorShards int      `yaml:"accumulatorShards"`
	MaxParallelism    int      `yaml:"maxParallelism"`
}

// RequestQueueConfig sizes the no-result window and its admission limit.
type RequestQueueConfig struct {
	Capacity          int     `yaml:"capacity"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// BatchConfig controls concurrent query processing.
type BatchConfig struct {
	MaxConcurrentQueries int `yaml:"maxConcurrentQueries"`
}

// KafkaConfig holds Kafka broker and topic settings for document events.
type KafkaConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Brokers        []string      `yaml:"brokers"`
	ConsumerGroup  string        `yaml:"consumerGroup"`
	DocumentTopic  string        `yaml:"documentTopic"`
	PublishTimeout time.Duration `yaml:"publishTimeout"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MaxResults:        5,
			RelevanceEpsilon:  1e-6,
			AccumulatorShards: 64,
			MaxParallelism:    0,
		},
		RequestQueue: RequestQueueConfig{
			Capacity: 1440,
		},
		Batch: BatchConfig{
			MaxConcurrentQueries: 0,
		},
		Kafka: KafkaConfig{
			Enabled:        false,
			Brokers:        []string{"localhost:9092"},
			ConsumerGroup:  "tfidf-search-group",
			DocumentTopic:  "document-events",
			PublishTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects settings the index cannot run with.
func (c *Config) Validate() error {
	if c.Index.MaxResults < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "index.maxResults must be positive, got %d", c.Index.MaxResults)
	}
	if c.Index.AccumulatorShards < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "index.accumulatorShards must be positive, got %d", c.Index.AccumulatorShards)
	}
	if c.Index.RelevanceEpsilon < 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "index.relevanceEpsilon must not be negative")
	}
	if c.Index.MaxParallelism < 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "index.maxParallelism must not be negative")
	}
	if c.RequestQueue.Capacity < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "requestQueue.capacity must be positive, got %d", c.RequestQueue.Capacity)
	}
	if c.RequestQueue.RequestsPerSecond < 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "requestQueue.requestsPerSecond must not be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return apperrors.New(apperrors.ErrInvalidConfig, "kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// applyEnvOverrides reads TS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TS_INDEX_STOP_WORDS"); v != "" {
		cfg.Index.StopWordsText = v
	}
	if v := os.Getenv("TS_INDEX_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.MaxResults = n
		}
	}
	if v := os.Getenv("TS_INDEX_ACCUMULATOR_SHARDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.AccumulatorShards = n
		}
	}
	if v := os.Getenv("TS_INDEX_MAX_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.MaxParallelism = n
		}
	}
	if v := os.Getenv("TS_REQUEST_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestQueue.Capacity = n
		}
	}
	if v := os.Getenv("TS_REQUEST_QUEUE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RequestQueue.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("TS_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("TS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TS_KAFKA_DOCUMENT_TOPIC"); v != "" {
		cfg.Kafka.DocumentTopic = v
	}
	if v := os.Getenv("TS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TS_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("TS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
