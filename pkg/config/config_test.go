package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.MaxResults != 5 {
		t.Errorf("expected maxResults 5, got %d", cfg.Index.MaxResults)
	}
	if cfg.Index.RelevanceEpsilon != 1e-6 {
		t.Errorf("expected epsilon 1e-6, got %v", cfg.Index.RelevanceEpsilon)
	}
	if cfg.RequestQueue.Capacity != 1440 {
		t.Errorf("expected capacity 1440, got %d", cfg.RequestQueue.Capacity)
	}
	if cfg.Kafka.Enabled {
		t.Error("kafka should be disabled by default")
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
index:
  stopWords: ["the", "a"]
  maxResults: 10
  accumulatorShards: 8
requestQueue:
  capacity: 3
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TS_LOGGING_FORMAT", "json")
	t.Setenv("TS_INDEX_MAX_RESULTS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Index.StopWords) != 2 {
		t.Errorf("expected 2 stop words, got %v", cfg.Index.StopWords)
	}
	if cfg.Index.MaxResults != 7 {
		t.Errorf("env override ignored: maxResults=%d", cfg.Index.MaxResults)
	}
	if cfg.Index.AccumulatorShards != 8 {
		t.Errorf("expected 8 shards, got %d", cfg.Index.AccumulatorShards)
	}
	if cfg.RequestQueue.Capacity != 3 {
		t.Errorf("expected capacity 3, got %d", cfg.RequestQueue.Capacity)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	// untouched sections keep defaults
	if cfg.Index.RelevanceEpsilon != 1e-6 {
		t.Errorf("default epsilon lost: %v", cfg.Index.RelevanceEpsilon)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero max results", func(c *Config) { c.Index.MaxResults = 0 }},
		{"zero shards", func(c *Config) { c.Index.AccumulatorShards = 0 }},
		{"negative epsilon", func(c *Config) { c.Index.RelevanceEpsilon = -1 }},
		{"zero capacity", func(c *Config) { c.RequestQueue.Capacity = 0 }},
		{"kafka without brokers", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, apperrors.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
