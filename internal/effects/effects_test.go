package effects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/config"
)

var allProfiles = []Profile{PanRight, PanLeft, Dynamic, ZoomOut, KenBurns}

func TestForSceneCycles(t *testing.T) {
	want := []Profile{PanRight, PanLeft, Dynamic, ZoomOut, PanRight, PanLeft, Dynamic, ZoomOut, PanRight}
	for i, p := range want {
		assert.Equal(t, p, ForScene(i), "scene %d", i)
	}
	assert.Equal(t, ZoomOut, ForScene(-1))
}

func TestSelectionIsDeterministic(t *testing.T) {
	var e DefaultEffect
	for i := 0; i < 12; i++ {
		assert.Equal(t, e.Profile(i), e.Profile(i))
		assert.Equal(t, ForScene(i), e.Profile(i))
	}
}

func TestZoomStaysInBounds(t *testing.T) {
	for _, p := range allProfiles {
		for _, total := range []int{1, 2, 30, 150, 900, 3000} {
			for frame := 0; frame < total; frame++ {
				m := p.At(frame, total, 2880, 1620)
				if m.Zoom < 1.0 || m.Zoom > p.MaxZoom() {
					t.Fatalf("%s frame %d/%d: zoom %.4f outside [1, %.2f]", p, frame, total, m.Zoom, p.MaxZoom())
				}
			}
		}
	}
}

func TestCropStaysInsideSource(t *testing.T) {
	const w, h = 3840, 2160
	for _, p := range allProfiles {
		total := 450
		for frame := 0; frame < total; frame++ {
			m := p.At(frame, total, w, h)
			maxX := float64(w) - float64(w)/m.Zoom
			maxY := float64(h) - float64(h)/m.Zoom
			if m.X < -1e-9 || m.X > maxX+1e-9 || m.Y < -1e-9 || m.Y > maxY+1e-9 {
				t.Fatalf("%s frame %d: crop (%.2f, %.2f) outside [0,%.2f]x[0,%.2f]", p, frame, m.X, m.Y, maxX, maxY)
			}
		}
	}
}

func TestProfileShapes(t *testing.T) {
	const total = 300

	right0 := PanRight.At(0, total, 1000, 1000)
	rightEnd := PanRight.At(total-1, total, 1000, 1000)
	assert.Less(t, right0.X, rightEnd.X)

	left0 := PanLeft.At(0, total, 1000, 1000)
	leftEnd := PanLeft.At(total-1, total, 1000, 1000)
	assert.Greater(t, left0.X, leftEnd.X)

	assert.InDelta(t, 1.3, ZoomOut.At(0, total, 1000, 1000).Zoom, 1e-9)
	assert.Less(t, ZoomOut.At(total-1, total, 1000, 1000).Zoom, 1.01)

	mid := Dynamic.At(total/2, total, 1000, 1000).Zoom
	assert.Greater(t, mid, Dynamic.At(0, total, 1000, 1000).Zoom)
	assert.Greater(t, mid, Dynamic.At(total-1, total, 1000, 1000).Zoom)
}

func TestMargins(t *testing.T) {
	assert.Equal(t, 2.0, Dynamic.Margin())
	assert.Equal(t, 2.0, ZoomOut.Margin())
	assert.Equal(t, 1.5, PanRight.Margin())
	assert.Equal(t, 1.5, PanLeft.Margin())
	assert.Equal(t, 1.5, KenBurns.Margin())
}

func TestFilter(t *testing.T) {
	f := PanRight.Filter(config.SegmentParams{Width: 1080, Height: 1920, FPS: 30, Frames: 150})
	s := f.String()

	assert.True(t, strings.HasPrefix(s, "zoompan=z='1.1':x='min(on/150,1)*(iw-iw/zoom)'"), s)
	assert.Contains(t, s, ":d=150:s=1080x1920:fps=30")
}

func TestScenarioEffect(t *testing.T) {
	e, err := NewScenarioEffect([]string{"", "ken_burns", "", "dynamic"})
	require.NoError(t, err)

	assert.Equal(t, PanRight, e.Profile(0))
	assert.Equal(t, KenBurns, e.Profile(1))
	assert.Equal(t, Dynamic, e.Profile(2))
	assert.Equal(t, Dynamic, e.Profile(3))
	assert.Equal(t, PanRight, e.Profile(4))

	_, err = NewScenarioEffect([]string{"spin"})
	assert.Error(t, err)
}
