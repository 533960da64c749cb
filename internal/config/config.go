// Package config loads bkmeans training settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/hupe1980/bkmeans"
	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/distance"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a training run.
//
// Zero values of MinDivisibleClusterSize and MinDivisibleClusterFraction
// mean unset.
type Config struct {
	K                           int     `yaml:"k"`
	MaxIterations               int     `yaml:"max_iterations"`
	MinDivisibleClusterSize     int     `yaml:"min_divisible_cluster_size"`
	MinDivisibleClusterFraction float64 `yaml:"min_divisible_cluster_fraction"`
	Seed                        int64   `yaml:"seed"`
	DistanceMeasure             string  `yaml:"distance_measure"`
	FeaturesCol                 string  `yaml:"features_col"`
	Parallelism                 int     `yaml:"parallelism"`

	// Input is a CSV path or an s3:// or minio:// object URL, optionally
	// compressed. Empty selects the built-in demo dataset.
	Input    string `yaml:"input"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		K:               bkmeans.DefaultK,
		MaxIterations:   bkmeans.DefaultMaxIterations,
		Seed:            bkmeans.DefaultSeed,
		DistanceMeasure: distance.MetricEuclidean.String(),
		FeaturesCol:     dataset.DefaultFeaturesCol,
		Parallelism:     1,
		LogLevel:        "warn",
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that can be verified without data.
func (c *Config) Validate() error {
	if c.K < 2 {
		return fmt.Errorf("%w: k must be at least 2, got %d", bkmeans.ErrInvalidConfig, c.K)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", bkmeans.ErrInvalidConfig, c.MaxIterations)
	}
	if c.MinDivisibleClusterSize < 0 {
		return fmt.Errorf("%w: min_divisible_cluster_size must not be negative, got %d", bkmeans.ErrInvalidConfig, c.MinDivisibleClusterSize)
	}
	if f := c.MinDivisibleClusterFraction; math.IsNaN(f) || f < 0 || f > 1 {
		return fmt.Errorf("%w: min_divisible_cluster_fraction must be in (0, 1], got %v", bkmeans.ErrInvalidConfig, f)
	}
	if c.MinDivisibleClusterSize > 0 && c.MinDivisibleClusterFraction > 0 {
		return fmt.Errorf("%w: min_divisible_cluster_size and min_divisible_cluster_fraction are mutually exclusive", bkmeans.ErrInvalidConfig)
	}
	if _, err := distance.ParseMetric(c.DistanceMeasure); err != nil {
		return fmt.Errorf("%w: %w", bkmeans.ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.FeaturesCol) == "" {
		return fmt.Errorf("%w: features_col must not be empty", bkmeans.ErrInvalidConfig)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be positive, got %d", bkmeans.ErrInvalidConfig, c.Parallelism)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", bkmeans.ErrInvalidConfig, err)
	}
	return nil
}

// Level parses LogLevel. Empty means warn.
func (c *Config) Level() (slog.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Options converts the configuration into trainer options.
func (c *Config) Options() ([]bkmeans.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	metric, _ := distance.ParseMetric(c.DistanceMeasure)

	opts := []bkmeans.Option{
		bkmeans.WithK(c.K),
		bkmeans.WithMaxIterations(c.MaxIterations),
		bkmeans.WithSeed(c.Seed),
		bkmeans.WithDistanceMeasure(metric),
		bkmeans.WithFeaturesCol(c.FeaturesCol),
		bkmeans.WithParallelism(c.Parallelism),
	}
	if c.MinDivisibleClusterSize > 0 {
		opts = append(opts, bkmeans.WithMinDivisibleClusterSize(c.MinDivisibleClusterSize))
	}
	if c.MinDivisibleClusterFraction > 0 {
		opts = append(opts, bkmeans.WithMinDivisibleClusterFraction(c.MinDivisibleClusterFraction))
	}
	return opts, nil
}
