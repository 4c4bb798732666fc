package video

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/captions"
	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/ffmpeg"
	"github.com/ivlev/scene2video/internal/ffmpeg/ffmpegtest"
)

type fakeProbe map[string]float64

func (p fakeProbe) Duration(_ context.Context, path string) (float64, error) {
	if d, ok := p[path]; ok {
		return d, nil
	}
	return 0, &ffmpeg.Error{Kind: ffmpeg.KindDurationUnresolvable, Op: path}
}

type fakeGuard struct {
	err   error
	calls int
}

func (g *fakeGuard) Check() error {
	g.calls++
	return g.err
}

type fontFS map[string]bool

func (f fontFS) Stat(name string) (fs.FileInfo, error) {
	if !f[name] {
		return nil, fs.ErrNotExist
	}
	return fstest.MapFS{"f": {}}.Stat("f")
}

func (f fontFS) ReadFile(name string) ([]byte, error) { return nil, fs.ErrNotExist }

func newEncoder(runner *ffmpegtest.Runner, guard SpaceChecker) *FFmpegEncoder {
	engine := &ffmpeg.Engine{FFmpeg: "ffmpeg", FFprobe: "ffprobe", Runner: runner}
	return NewFFmpegEncoder(engine, DefaultEncodeProfile, guard, zerolog.Nop())
}

func TestEncodeSceneWritesCards(t *testing.T) {
	ws := t.TempDir()
	runner := &ffmpegtest.Runner{Handle: ffmpegtest.Touch}
	enc := newEncoder(runner, nil)

	plan := PlanScene(SceneInput{Index: 0, Image: "a.png", Audio: "a.mp3", Caption: "Don't stop: 100% now", Duration: 3},
		PlanOptions{Canvas: Canvas{1080, 1080}, FPS: 24, Workspace: ws, Profile: effects.PanRight, Captions: true})

	require.NoError(t, enc.EncodeScene(context.Background(), plan))

	require.Len(t, plan.Cards, 2)
	text, err := os.ReadFile(plan.Cards[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "Don't stop: 100%", string(text))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, filepath.Join(ws, "scene_000.mp4"), calls[0].Output())
}

func TestEncodeSceneFailures(t *testing.T) {
	ws := t.TempDir()
	plan := PlanScene(SceneInput{Index: 1, Image: "a.png", Audio: "a.mp3", Duration: 2},
		PlanOptions{Canvas: DefaultCanvas, FPS: 30, Workspace: ws, Profile: effects.PanLeft})

	t.Run("nonzero exit", func(t *testing.T) {
		enc := newEncoder(&ffmpegtest.Runner{Handle: func(ffmpegtest.Call) ffmpeg.Result {
			return ffmpegtest.Fail("Error while filtering: Invalid argument")
		}}, nil)
		err := enc.EncodeScene(context.Background(), plan)
		assert.ErrorIs(t, err, ffmpeg.ErrSceneRender)
		assert.Contains(t, err.Error(), "scene_001.mp4")
	})

	t.Run("out of space", func(t *testing.T) {
		enc := newEncoder(&ffmpegtest.Runner{Handle: func(ffmpegtest.Call) ffmpeg.Result {
			return ffmpegtest.Fail("av_interleaved_write_frame(): No space left on device")
		}}, nil)
		assert.ErrorIs(t, enc.EncodeScene(context.Background(), plan), ffmpeg.ErrOutOfSpace)
	})

	t.Run("missing output", func(t *testing.T) {
		enc := newEncoder(&ffmpegtest.Runner{}, nil)
		err := enc.EncodeScene(context.Background(), plan)
		assert.ErrorIs(t, err, ffmpeg.ErrSceneRender)
		assert.Contains(t, err.Error(), "output is missing")
	})
}

func TestConcatenateOutOfSpaceRechecksGuard(t *testing.T) {
	ws := t.TempDir()
	plan := PlanTransitions([]Segment{{"a.mp4", 3}, {"b.mp4", 3}}, 0.5, "", filepath.Join(ws, "out.mp4"))
	runner := &ffmpegtest.Runner{Handle: func(ffmpegtest.Call) ffmpeg.Result {
		return ffmpegtest.Fail("Error writing trailer of out.mp4: No space left on device")
	}}

	guard := &fakeGuard{err: &ffmpeg.Error{Kind: ffmpeg.KindInsufficientSpace, Msg: "1.0 GB free"}}
	err := newEncoder(runner, guard).Concatenate(context.Background(), plan)

	assert.Equal(t, 1, guard.calls)
	assert.ErrorIs(t, err, ffmpeg.ErrOutOfSpace)
	assert.ErrorIs(t, err, ffmpeg.ErrInsufficientSpace)
	assert.NotErrorIs(t, err, ffmpeg.ErrTransitionRender)
}

func TestConcatenateGenericFailure(t *testing.T) {
	ws := t.TempDir()
	plan := PlanTransitions([]Segment{{"a.mp4", 3}, {"b.mp4", 3}}, 0.5, "", filepath.Join(ws, "out.mp4"))
	runner := &ffmpegtest.Runner{Handle: func(ffmpegtest.Call) ffmpeg.Result {
		return ffmpegtest.Fail("Conversion failed!")
	}}
	guard := &fakeGuard{}

	err := newEncoder(runner, guard).Concatenate(context.Background(), plan)
	assert.ErrorIs(t, err, ffmpeg.ErrTransitionRender)
	assert.Equal(t, 0, guard.calls)

	var fe *ffmpeg.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Conversion failed!", fe.Stderr)
}

func TestJoinSingleSegmentCopies(t *testing.T) {
	ws := t.TempDir()
	seg := filepath.Join(ws, "scene_000.mp4")
	require.NoError(t, os.WriteFile(seg, []byte("segment"), 0644))
	out := filepath.Join(t.TempDir(), "final.mp4")

	runner := &ffmpegtest.Runner{}
	b := &ChainBuilder{Probe: fakeProbe{}, Encoder: newEncoder(runner, nil), Log: zerolog.Nop()}

	d, err := b.Join(context.Background(), []Segment{{seg, 5}}, 0.5, out)
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)
	assert.Empty(t, runner.Calls())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "segment", string(data))
}

func TestJoinProbesMeasuredDurations(t *testing.T) {
	out := filepath.Join(t.TempDir(), "final.mp4")
	runner := &ffmpegtest.Runner{Handle: ffmpegtest.Touch}
	probe := fakeProbe{"s0": 4.25, "s1": 5.75, "s2": 5.0}
	b := &ChainBuilder{Probe: probe, Encoder: newEncoder(runner, nil), Log: zerolog.Nop()}

	d, err := b.Join(context.Background(), []Segment{{"s0", 4}, {"s1", 6}, {"s2", 5}}, 0.5, out)
	require.NoError(t, err)
	assert.InDelta(t, 14.0, d, 1e-9)

	calls := runner.Transcodes()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"s0", "s1", "s2"}, calls[0].Values("-i"))
	assert.Contains(t, calls[0].Value("-filter_complex"), "offset=3.75[v1]")
}

func TestJoinShortensOverlongTransition(t *testing.T) {
	out := filepath.Join(t.TempDir(), "final.mp4")
	runner := &ffmpegtest.Runner{Handle: ffmpegtest.Touch}
	b := &ChainBuilder{Probe: fakeProbe{"a": 1, "b": 3}, Encoder: newEncoder(runner, nil), Log: zerolog.Nop()}

	d, err := b.Join(context.Background(), []Segment{{"a", 1}, {"b", 3}}, 1.5, out)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, d, 1e-9)
	assert.Contains(t, runner.Transcodes()[0].Value("-filter_complex"), "duration=0.5:offset=0.5")
}

func TestJoinProbeFailure(t *testing.T) {
	b := &ChainBuilder{Probe: fakeProbe{"a": 2}, Encoder: newEncoder(&ffmpegtest.Runner{}, nil), Log: zerolog.Nop()}
	_, err := b.Join(context.Background(), []Segment{{"a", 2}, {"b", 2}}, 0.5, "out.mp4")
	assert.ErrorIs(t, err, ffmpeg.ErrDurationUnresolvable)
}

func TestSceneRendererRender(t *testing.T) {
	ws := t.TempDir()
	runner := &ffmpegtest.Runner{Handle: ffmpegtest.Touch}
	r := &SceneRenderer{
		Probe:   fakeProbe{"voice.mp3": 4.5},
		Fonts:   &captions.FontResolver{FS: fontFS{"/usr/share/fonts/truetype/noto/NotoSansArabic-Regular.ttf": true}, Platform: captions.Linux},
		Effect:  effects.DefaultEffect{},
		Encoder: newEncoder(runner, nil),
		Log:     zerolog.Nop(),
	}

	seg, err := r.Render(context.Background(),
		SceneInput{Index: 6, Image: "slide.png", Audio: "voice.mp3", Caption: "مرحبا بالعالم"},
		RenderSettings{Canvas: Canvas{1080, 1920}, FPS: 30, Captions: true, Workspace: ws})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(ws, "scene_006.mp4"), seg.Path)
	assert.Equal(t, 4.5, seg.Duration)

	graph := runner.Transcodes()[0].Value("-filter_complex")
	assert.Contains(t, graph, "NotoSansArabic-Regular.ttf")
	assert.Contains(t, graph, "clip(1+0.0015*min(on,67.5)", "scene 6 uses the dynamic profile")
	assert.Contains(t, graph, "fontsize=70")
}

func TestSceneRendererProbeFailureSkipsEngine(t *testing.T) {
	runner := &ffmpegtest.Runner{}
	r := &SceneRenderer{Probe: fakeProbe{}, Effect: effects.DefaultEffect{}, Encoder: newEncoder(runner, nil), Log: zerolog.Nop()}

	_, err := r.Render(context.Background(), SceneInput{Index: 0, Audio: "missing.mp3"}, RenderSettings{Canvas: DefaultCanvas, FPS: 30})
	assert.ErrorIs(t, err, ffmpeg.ErrDurationUnresolvable)
	assert.Empty(t, runner.Calls())
}
