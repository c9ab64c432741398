package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-sv/internal/config"
)

func TestInitConfig_EnvironmentOverridesNestedKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "vibe-sv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter:\n  min_support: 4\n  min_length: 10\n"), 0o644))
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	t.Setenv("VIBE_SV_FILTER_MIN_LENGTH", "50")
	t.Setenv("VIBE_SV_GERMLINE_REFERENCE_SAMPLE", "NORMAL")
	t.Setenv("VIBE_SV_WORKERS", "3")

	require.NoError(t, initConfig())
	cfg, err := config.Load(viper.GetViper())
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Filter.MinLength, "environment wins over the file")
	assert.Equal(t, 4, cfg.Filter.MinSupport)
	assert.Equal(t, "NORMAL", cfg.Germline.ReferenceSample)
	assert.Equal(t, 3, cfg.Workers)
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { cfgFile = "" })

	assert.Error(t, initConfig())
}
