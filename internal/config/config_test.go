package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(3*1024*1024*1024), cfg.MinFreeBytes)
	assert.Equal(t, "libx264", cfg.VideoCodec)
	assert.Equal(t, "fast", cfg.Preset)
	assert.Equal(t, 25, cfg.CRF)
	assert.Equal(t, "smoothleft", cfg.Transition)
	assert.Equal(t, int64(512<<20), cfg.MaxUploadBytes)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene2video.yaml")
	yml := "output_dir: /srv/videos\ncrf: 20\noutput_max_age: 2h\nmax_concurrent_renders: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	t.Setenv("VIDEO_CRF", "28")
	t.Setenv("API_PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/videos", cfg.OutputDir)
	assert.Equal(t, 28, cfg.CRF)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.OutputMaxAge)
	assert.Equal(t, 4, cfg.MaxConcurrentRenders)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("VIDEO_CRF", "99")
	_, err := Load("")
	assert.ErrorContains(t, err, "crf 99")
}

func TestLoadUploadLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadBytes)

	t.Setenv("MAX_UPLOAD_BYTES", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "max_upload_bytes")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
