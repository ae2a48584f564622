package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagsFor(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("quill", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(flagsFor(t, "--config", path))
	require.NoError(t, err)

	assert.False(t, cfg.IsConfigured())
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Cache.StaleTime)
	assert.True(t, cfg.Cache.Persist)
	assert.Equal(t, 0, cfg.Feed.PageSize)
	assert.Equal(t, 10, cfg.Feed.SearchLimit)
	assert.Equal(t, "recommended", cfg.Feed.Default)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, path, cfg.File())
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  url: http://file.example\n  timeout: 5s\n" +
		"feed:\n  page_size: 12\nlogging:\n  level: WARN\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("QUILL_FEED_SEARCH_LIMIT", "25")
	t.Setenv("QUILL_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(flagsFor(t, "--config", path, "--log-level", "DEBUG"))
	require.NoError(t, err)

	assert.Equal(t, "http://file.example", cfg.Server.URL, "file value")
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 12, cfg.Feed.PageSize)
	assert.Equal(t, 25, cfg.Feed.SearchLimit, "env beats default")
	assert.Equal(t, "DEBUG", cfg.Logging.Level, "flag beats env and file")
	assert.True(t, cfg.IsConfigured())
}

func TestUnsetFlagDoesNotMaskEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("QUILL_SERVER_URL", "http://env.example")

	cfg, err := Load(flagsFor(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.Server.URL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(flagsFor(t, "--config", path))
	require.NoError(t, err)
	cfg.Server.URL = "http://saved.example"
	cfg.Feed.PageSize = 8
	cfg.Metrics.Listen = ":9100"
	require.NoError(t, cfg.Save())

	again, err := Load(flagsFor(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "http://saved.example", again.Server.URL)
	assert.Equal(t, 8, again.Feed.PageSize)
	assert.Equal(t, ":9100", again.Metrics.Listen)
	assert.Equal(t, 30*time.Second, again.Server.Timeout)
}
