// Package config loads discovery settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-dfg/pkg/dfg"
	"github.com/dd0wney/cluso-dfg/pkg/filter"
	"github.com/dd0wney/cluso-dfg/pkg/logging"
	"github.com/dd0wney/cluso-dfg/pkg/validation"
)

// ErrInvalidConfig is returned for configuration that fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full settings document
type Config struct {
	Filter   FilterConfig   `yaml:"filter"`
	Build    BuildConfig    `yaml:"build"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Log      LogConfig      `yaml:"log"`
}

// FilterConfig mirrors filter.Configuration in file form
type FilterConfig struct {
	DependencyThreshold  float64  `yaml:"dependency_threshold" validate:"gte=-1,lte=1"`
	PositiveObservations float64  `yaml:"positive_observations" validate:"gte=0,lte=1"`
	RelativeToBest       float64  `yaml:"relative_to_best" validate:"gte=0,lte=1"`
	StructuringTime      string   `yaml:"structuring_time"`
	ReplaceIORs          bool     `yaml:"replace_iors"`
	StartActivities      []string `yaml:"start_activities" validate:"dive,required"`
	EndActivities        []string `yaml:"end_activities" validate:"dive,required"`
}

// BuildConfig controls graph construction
type BuildConfig struct {
	// Workers > 1 partitions traces across goroutines; 0 means one per CPU
	Workers             int    `yaml:"workers" validate:"gte=0,lte=1024"`
	ArtificialEndpoints bool   `yaml:"artificial_endpoints"`
	StartLabel          string `yaml:"start_label"`
	EndLabel            string `yaml:"end_label"`
}

// AnalysisConfig controls shortest-path computation
type AnalysisConfig struct {
	Workers int `yaml:"workers" validate:"gte=0,lte=1024"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" validate:"required"`
}

// Default returns the settings used when no file is given
func Default() *Config {
	fc := filter.DefaultConfiguration()
	return &Config{
		Filter: FilterConfig{
			DependencyThreshold:  fc.DependencyThreshold,
			PositiveObservations: fc.PositiveObservations,
			RelativeToBest:       fc.RelativeToBest,
			StructuringTime:      fc.StructuringTime.String(),
		},
		Build: BuildConfig{
			Workers:    1,
			StartLabel: dfg.DefaultStartLabel,
			EndLabel:   dfg.DefaultEndLabel,
		},
		Analysis: AnalysisConfig{Workers: 1},
		Log:      LogConfig{Level: logging.InfoLevel.String()},
	}
}

// Load reads and validates a settings file. Keys absent from the file keep
// their defaults. The DFG_LOG_LEVEL environment variable overrides log.level.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults, applies environment overrides and validates
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := strings.TrimSpace(os.Getenv(logging.EnvLevel)); level != "" {
		c.Log.Level = level
	}
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cv := validation.NewConfigValidator("config")
	cv.Custom("filter.structuring_time", func() error {
		_, err := filter.ParseStructuringTime(c.Filter.StructuringTime)
		return err
	}).
		OneOf("log.level", strings.ToUpper(c.Log.Level), []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}).
		Distinct("filter.start_activities", c.Filter.StartActivities).
		Distinct("filter.end_activities", c.Filter.EndActivities).
		When(c.Build.ArtificialEndpoints, func(cv *validation.ConfigValidator) {
			cv.Custom("build.start_label", func() error {
				if c.Build.StartLabel == "" || c.Build.EndLabel == "" {
					return errors.New("artificial endpoint labels must not be empty")
				}
				if c.Build.StartLabel == c.Build.EndLabel {
					return fmt.Errorf("start and end labels are both %q", c.Build.StartLabel)
				}
				return nil
			})
		})

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// FilterConfiguration converts the file form into a validated filter configuration
func (c *Config) FilterConfiguration() (filter.Configuration, error) {
	st, err := filter.ParseStructuringTime(c.Filter.StructuringTime)
	if err != nil {
		return filter.Configuration{}, err
	}
	fc := filter.Configuration{
		DependencyThreshold:  c.Filter.DependencyThreshold,
		PositiveObservations: c.Filter.PositiveObservations,
		RelativeToBest:       c.Filter.RelativeToBest,
		StructuringTime:      st,
		ReplaceIORs:          c.Filter.ReplaceIORs,
		StartActivities:      c.Filter.StartActivities,
		EndActivities:        c.Filter.EndActivities,
	}
	return fc, fc.Validate()
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}
