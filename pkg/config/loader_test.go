package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/config"
)

type cachedConfig struct {
	Value string `env:"CONFIG_TEST_CACHED" envDefault:"default"`
}

type requiredConfig struct {
	Required string `env:"CONFIG_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Name    string        `yaml:"name" env:"CONFIG_TEST_FILE_NAME"`
	Timeout time.Duration `yaml:"timeout" env:"CONFIG_TEST_FILE_TIMEOUT"`
	Workers int           `yaml:"workers"`
}

func TestLoad(t *testing.T) {
	t.Run("parses the environment once per type", func(t *testing.T) {
		config.Reset()
		t.Setenv("CONFIG_TEST_CACHED", "first")

		var cfg cachedConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "first", cfg.Value)

		t.Setenv("CONFIG_TEST_CACHED", "second")
		var again cachedConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "first", again.Value)

		config.Reset()
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "second", again.Value)
	})

	t.Run("missing required values fail", func(t *testing.T) {
		config.Reset()
		os.Unsetenv("CONFIG_TEST_REQUIRED")

		var cfg requiredConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("nil pointer is rejected", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[cachedConfig](nil), config.ErrNilPointer)
	})
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\ntimeout: 3s\nworkers: 4\n"), 0o600))

	t.Run("reads the file", func(t *testing.T) {
		os.Unsetenv("CONFIG_TEST_FILE_NAME")
		os.Unsetenv("CONFIG_TEST_FILE_TIMEOUT")

		var cfg fileConfig
		require.NoError(t, config.LoadYAML(path, &cfg))
		assert.Equal(t, "from-file", cfg.Name)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, 4, cfg.Workers)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_FILE_NAME", "from-env")

		var cfg fileConfig
		require.NoError(t, config.LoadYAML(path, &cfg))
		assert.Equal(t, "from-env", cfg.Name)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
	})

	t.Run("missing file fails", func(t *testing.T) {
		var cfg fileConfig
		assert.ErrorIs(t, config.LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"), &cfg), config.ErrReadingFile)
	})
}
