// Package config loads the process configuration:
// port, wsPort, batchSize, maxRetries, base/max backoff, and the local image
// base URL fallback. Layering follows an env-first idiom: an optional
// YAML file supplies defaults,
// environment variables override it, and hardcoded defaults fill any gap.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every recognized option.
type Config struct {
	Port         int           `yaml:"port"`
	WSPort       int           `yaml:"wsPort"`
	BatchSize    int           `yaml:"batchSize"`
	MaxRetries   int           `yaml:"maxRetries"`
	BaseBackoff  time.Duration `yaml:"-"`
	MaxBackoff   time.Duration `yaml:"-"`
	ImageBaseURL string        `yaml:"imageBaseUrl"`

	// Concurrency ceilings per queue.
	QueueConcurrency map[string]int `yaml:"-"`

	yamlBaseBackoffMS int64 `yaml:"-"`
	yamlMaxBackoffMS  int64 `yaml:"-"`
}

type fileShape struct {
	Port              int            `yaml:"port"`
	WSPort            int            `yaml:"wsPort"`
	BatchSize         int            `yaml:"batchSize"`
	MaxRetries        int            `yaml:"maxRetries"`
	BaseBackoffMS     int64          `yaml:"baseBackoffMs"`
	MaxBackoffMS      int64          `yaml:"maxBackoffMs"`
	ImageBaseURL      string         `yaml:"imageBaseUrl"`
	QueueConcurrency  map[string]int `yaml:"queueConcurrency"`
}

// Defaults: port=4200, wsPort=8080, batchSize=10, maxRetries=3,
// base=1000ms, max=30000ms.
func Defaults() *Config {
	return &Config{
		Port:        4200,
		WSPort:      8080,
		BatchSize:   10,
		MaxRetries:  3,
		BaseBackoff: time.Second,
		MaxBackoff:  30 * time.Second,
		QueueConcurrency: map[string]int{
			"notes":          4,
			"ingredients":    4,
			"instruction":    4,
			"image":          2,
			"categorization": 2,
			"source":         2,
		},
	}
}

// Load builds a Config by starting from Defaults, layering an optional YAML
// file (path from CONFIG_FILE, skipped if unset or missing), then applying
// environment variable overrides. Env vars always win.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var fs fileShape
	if err := yaml.Unmarshal(b, &fs); err != nil {
		return err
	}
	if fs.Port != 0 {
		cfg.Port = fs.Port
	}
	if fs.WSPort != 0 {
		cfg.WSPort = fs.WSPort
	}
	if fs.BatchSize != 0 {
		cfg.BatchSize = fs.BatchSize
	}
	if fs.MaxRetries != 0 {
		cfg.MaxRetries = fs.MaxRetries
	}
	if fs.BaseBackoffMS != 0 {
		cfg.BaseBackoff = time.Duration(fs.BaseBackoffMS) * time.Millisecond
	}
	if fs.MaxBackoffMS != 0 {
		cfg.MaxBackoff = time.Duration(fs.MaxBackoffMS) * time.Millisecond
	}
	if fs.ImageBaseURL != "" {
		cfg.ImageBaseURL = fs.ImageBaseURL
	}
	for q, n := range fs.QueueConcurrency {
		cfg.QueueConcurrency[q] = n
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := envInt("PORT"); v != nil {
		cfg.Port = *v
	}
	if v := envInt("WS_PORT"); v != nil {
		cfg.WSPort = *v
	}
	if v := envInt("BATCH_SIZE"); v != nil {
		cfg.BatchSize = *v
	}
	if v := envInt("MAX_RETRIES"); v != nil {
		cfg.MaxRetries = *v
	}
	if v := envInt("BASE_BACKOFF_MS"); v != nil {
		cfg.BaseBackoff = time.Duration(*v) * time.Millisecond
	}
	if v := envInt("MAX_BACKOFF_MS"); v != nil {
		cfg.MaxBackoff = time.Duration(*v) * time.Millisecond
	}
	if v := os.Getenv("IMAGE_BASE_URL"); v != "" {
		cfg.ImageBaseURL = v
	}
}

func envInt(key string) *int {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &i
}
