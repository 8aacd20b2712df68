package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.View.OffsetThreshold)
	assert.Equal(t, 40, cfg.Loader.PageSize)
	assert.Equal(t, 16*time.Millisecond, cfg.View.FrameInterval.Duration)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.DB)
	assert.Equal(t, filepath.Join(dir, "osa-history.log"), cfg.LogFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	data := `
theme = "light"

[view]
retention_margin = 120
offset_threshold = 10
frame_interval = "33ms"
observer = "scroll"

[loader]
page_size = 25
`
	require.NoError(t, os.WriteFile(Path(dir), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 120, cfg.View.RetentionMargin)
	assert.Equal(t, 10, cfg.View.OffsetThreshold)
	assert.Equal(t, 33*time.Millisecond, cfg.View.FrameInterval.Duration)
	assert.Equal(t, "scroll", cfg.View.Observer)
	assert.Equal(t, 25, cfg.Loader.PageSize)
	// untouched fields keep their defaults
	assert.InDelta(t, 8.0, cfg.Loader.LoadsPerSecond, 1e-9)
}

func TestLoadFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("view = [[["), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OSA_HISTORY_DB", "/tmp/x.db")
	t.Setenv("OSA_URL", "http://example.test")
	t.Setenv("OSA_HISTORY_MARGIN", "77")
	t.Setenv("OSA_HISTORY_THRESHOLD", "not a number")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.Equal(t, "http://example.test", cfg.Backend.URL)
	assert.Equal(t, 77, cfg.View.RetentionMargin)
	assert.Equal(t, 30, cfg.View.OffsetThreshold)
}

func TestValidateClamps(t *testing.T) {
	cfg := Default()
	cfg.View.RetentionMargin = -4
	cfg.View.Observer = "polling"
	cfg.Loader.PageSize = 0
	cfg.View.FrameInterval = Duration{0}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 0, cfg.View.RetentionMargin)
	assert.Equal(t, "intersection", cfg.View.Observer)
	assert.Equal(t, 40, cfg.Loader.PageSize)
	assert.Equal(t, 16*time.Millisecond, cfg.View.FrameInterval.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestMargin(t *testing.T) {
	v := Default().View
	assert.Equal(t, 60, v.Margin(30))
	v.RetentionMargin = 12
	assert.Equal(t, 12, v.Margin(30))
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	cfg := Default()
	cfg.View.OffsetThreshold = 5
	cfg.View.FrameInterval = Duration{50 * time.Millisecond}
	require.NoError(t, Save(dir, cfg))

	got, err := LoadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, 5, got.View.OffsetThreshold)
	assert.Equal(t, 50*time.Millisecond, got.View.FrameInterval.Duration)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	require.NoError(t, os.WriteFile(path, []byte("[view]\noffset_threshold = 3\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, 20*time.Millisecond, func(c *Config, err error) {
		if err == nil {
			got <- c
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("[view]\noffset_threshold = 9\n"), 0o644))

	select {
	case c := <-got:
		assert.Equal(t, 9, c.View.OffsetThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}
