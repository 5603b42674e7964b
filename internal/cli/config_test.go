package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/buildergen/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing optional file", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile), false)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing required file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "custom.yaml"), true)
		require.Error(t, err)
		assert.True(t, models.IsErrorType(err, models.ErrorTypeConfiguration))
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, ""), true)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("list values", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
patterns:
  - ./internal/...
  - ./pkg/...
tags: integration
filePrefix: gen_
dryRun: true
`), true)
		require.NoError(t, err)
		assert.Equal(t, StringList{"./internal/...", "./pkg/..."}, cfg.Patterns)
		assert.Equal(t, StringList{"integration"}, cfg.BuildTags)
		assert.Equal(t, "gen_", cfg.FilePrefix)
		assert.True(t, cfg.DryRun)
		assert.Equal(t, []string{"-tags=integration"}, cfg.BuildFlags())
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "pattern: ./...\n"), true)
		require.Error(t, err)
		assert.True(t, models.IsErrorType(err, models.ErrorTypeConfiguration))
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "verbose: true\nquiet: true\n"), true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verbose and quiet")

		_, err = LoadConfig(writeConfig(t, "filePrefix: gen/\n"), true)
		require.Error(t, err)
	})
}

func TestConfig_Apply(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "patterns: ./internal/...\nverbose: true\n"), true)
	require.NoError(t, err)

	prefix := "gen_"
	verbose := false
	cfg.Apply(Overrides{
		Patterns:   []string{"./cmd/..."},
		FilePrefix: &prefix,
		Verbose:    &verbose,
	})

	assert.Equal(t, StringList{"./cmd/..."}, cfg.Patterns)
	assert.Equal(t, "gen_", cfg.FilePrefix)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.DryRun, "unset overrides leave values alone")
	assert.Nil(t, cfg.BuildFlags())

	cfg.Apply(Overrides{})
	assert.Equal(t, StringList{"./cmd/..."}, cfg.Patterns)
}
