package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/config"
)

func TestDefaults(t *testing.T) {
	d := config.Defaults()
	assert.Equal(t, 256, d.MaxCallStackDepth)
	assert.Equal(t, 10000, d.IterationLimit)
	assert.Equal(t, 0, d.DefaultTimeoutMs)
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rill.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaultTimeoutMs: 5000\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.MaxCallStackDepth)
	assert.Equal(t, 10000, cfg.IterationLimit)
	assert.Equal(t, 5000, cfg.DefaultTimeoutMs)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptionsOmitsTimeoutWhenZero(t *testing.T) {
	opts := config.Defaults().Options()
	assert.Len(t, opts, 2)
}

func TestOptionsIncludesAutoExceptionsWhenPresent(t *testing.T) {
	cfg := config.Defaults()
	cfg.AutoExceptions = []string{"ERR:.*"}
	cfg.DefaultTimeoutMs = 1000
	opts := cfg.Options()
	assert.Len(t, opts, 4)
}
