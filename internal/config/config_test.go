package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero threshold", func(c *Config) { c.Pipeline.ScoreThreshold = 0 }},
		{"negative vat", func(c *Config) { c.Pipeline.DefaultVATRate = -1 }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"negative workers", func(c *Config) { c.Batch.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoaderDefaults(t *testing.T) {
	loader := NewLoaderWith(viper.New())

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Pipeline.Locale)
	assert.Equal(t, 3, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoaderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facto.yaml")
	content := "pipeline:\n" +
		"  locale: en\n" +
		"  score_threshold: 5\n" +
		"server:\n" +
		"  port: 9090\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Pipeline.Locale)
	assert.Equal(t, 5, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 20.0, cfg.Pipeline.DefaultVATRate)
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	loader := NewLoaderWith(viper.New())
	_, err := loader.LoadWithFile("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoaderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facto.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -4\n"), 0o600))

	loader := NewLoaderWith(viper.New())
	_, err := loader.LoadWithFile(path)
	assert.Error(t, err)
}

func TestBuildPipelineFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.ScoreThreshold = 4

	p, err := cfg.BuildPipeline()
	require.NoError(t, err)
	assert.Equal(t, 4, p.Config().ScoreThreshold)
}
