package director

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `version: "1.0"
aspect_ratio: "9:16"
transition_duration: 0.8
fps: 25
output: promo.mp4
scenes:
  - id: 1
    image: img/01.png
    audio: audio/01.wav
    caption: Привет, мир
    motion: ken_burns
  - id: 2
    image: /abs/02.png
    audio: audio/02.wav
`

func TestReadStoryboardResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

	sb, err := ReadStoryboard(path)
	require.NoError(t, err)

	req := sb.Request()
	assert.Equal(t, "9:16", req.AspectRatio)
	assert.Equal(t, 0.8, req.TransitionDuration)
	assert.Equal(t, 25, req.FPS)
	assert.Equal(t, "promo.mp4", req.OutputFilename)
	assert.True(t, req.EnableCaptions)

	require.Len(t, req.Scenes, 2)
	assert.Equal(t, filepath.Join(sb.dir, "img", "01.png"), req.Scenes[0].ImagePath)
	assert.Equal(t, "Привет, мир", req.Scenes[0].Caption)
	assert.Equal(t, "ken_burns", req.Scenes[0].Motion)
	assert.Equal(t, "/abs/02.png", req.Scenes[1].ImagePath)
}

func TestStoryboardCaptionsOff(t *testing.T) {
	off := false
	sb := &Storyboard{Captions: &off, Scenes: []Scene{{Image: "a.png", Audio: "a.wav"}}}
	assert.False(t, sb.Request().EnableCaptions)
}

func TestWriteThenReadStoryboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.yaml")
	sb := &Storyboard{
		AspectRatio: "1:1",
		Scenes:      []Scene{{ID: 1, Image: "a.png", Audio: "a.wav", Motion: "dynamic"}},
	}
	require.NoError(t, WriteStoryboard(sb, path))

	got, err := ReadStoryboard(path)
	require.NoError(t, err)
	assert.Equal(t, StoryboardVersion, got.Version)
	assert.Equal(t, "1:1", got.AspectRatio)
	assert.Equal(t, sb.Scenes, got.Scenes)
}

func TestReadStoryboardErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("version: \"1.0\"\nscenes: []\n"), 0644))
	_, err := ReadStoryboard(empty)
	assert.ErrorContains(t, err, "no scenes")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("scenes: [\n"), 0644))
	_, err = ReadStoryboard(broken)
	assert.ErrorContains(t, err, "parse storyboard")
}
