// Package config defines the application configuration for all facto
// commands (extract, batch, serve) and loads it from files, environment
// variables and flags.
package config

import (
	"fmt"
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/pipeline"
	"github.com/facto-ocr/facto/internal/validate"
)

// Config is the complete configuration for the facto application.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation" json:"validation"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" json:"output"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PipelineConfig contains the extraction pipeline settings.
type PipelineConfig struct {
	Locale         string  `mapstructure:"locale" yaml:"locale" json:"locale"`
	LocaleFile     string  `mapstructure:"locale_file" yaml:"locale_file" json:"locale_file"`
	ScoreThreshold int     `mapstructure:"score_threshold" yaml:"score_threshold" json:"score_threshold"`
	DefaultVATRate float64 `mapstructure:"default_vat_rate" yaml:"default_vat_rate" json:"default_vat_rate"`
}

// ValidationConfig contains the totals-validation tolerances.
type ValidationConfig struct {
	RelTolerance float64 `mapstructure:"rel_tolerance" yaml:"rel_tolerance" json:"rel_tolerance"`
	AbsTolerance float64 `mapstructure:"abs_tolerance" yaml:"abs_tolerance" json:"abs_tolerance"`
	AvgLineValue float64 `mapstructure:"avg_line_value" yaml:"avg_line_value" json:"avg_line_value"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Progress        bool `mapstructure:"progress" yaml:"progress" json:"progress"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Locale:         "fr",
			ScoreThreshold: 3,
			DefaultVATRate: 20,
		},
		Validation: ValidationConfig{
			RelTolerance: validate.DefaultRelTolerance,
			AbsTolerance: validate.DefaultAbsTolerance,
			AvgLineValue: validate.DefaultAvgLineValue,
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     25,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers:         0, // 0 = NumCPU
			ContinueOnError: true,
			Progress:        true,
		},
	}
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	var errs []string

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log_level must be one of debug/info/warn/error, got %q", c.LogLevel))
	}
	if c.Pipeline.ScoreThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("pipeline.score_threshold must be positive, got %d", c.Pipeline.ScoreThreshold))
	}
	if c.Pipeline.DefaultVATRate < 0 || c.Pipeline.DefaultVATRate > 100 {
		errs = append(errs, fmt.Sprintf("pipeline.default_vat_rate must be within [0,100], got %g", c.Pipeline.DefaultVATRate))
	}
	switch c.Output.Format {
	case "json", "yaml", "text":
	default:
		errs = append(errs, fmt.Sprintf("output.format must be one of json/yaml/text, got %q", c.Output.Format))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be within [1,65535], got %d", c.Server.Port))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Sprintf("batch.workers must not be negative, got %d", c.Batch.Workers))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// BuildPipeline assembles an extraction pipeline from the configuration,
// loading the locale override file when one is set.
func (c *Config) BuildPipeline() (*pipeline.Pipeline, error) {
	b := pipeline.NewBuilder().
		WithLocale(c.Pipeline.Locale).
		WithThreshold(c.Pipeline.ScoreThreshold).
		WithDefaultVATRate(c.Pipeline.DefaultVATRate).
		WithTolerances(c.Validation.RelTolerance, c.Validation.AbsTolerance).
		WithAvgLineValue(c.Validation.AvgLineValue)

	if c.Pipeline.LocaleFile != "" {
		loc, err := locale.LoadYAML(c.Pipeline.LocaleFile)
		if err != nil {
			return nil, fmt.Errorf("loading locale file: %w", err)
		}
		b.WithLocaleTable(loc)
	}
	return b.Build()
}
