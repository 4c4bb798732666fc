package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/scene2video/internal/captions"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/ffmpeg"
	"github.com/ivlev/scene2video/internal/source"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

// RenderOutcome describes a finished video.
type RenderOutcome struct {
	OutputPath string
	// Duration is the expected timeline length in seconds.
	Duration float64
	Canvas   video.Canvas
	// SceneDurations are the narration lengths the scenes were rendered with.
	SceneDurations []float64
	Elapsed        time.Duration
}

// VideoProject renders requests against one configured engine.
// It is safe for concurrent use: every Run gets its own workspace.
type VideoProject struct {
	Config  *config.Config
	Engine  *ffmpeg.Engine
	Probe   video.DurationProber
	Guard   video.SpaceChecker
	Fonts   *captions.FontResolver
	Encoder video.VideoEncoder
	Log     zerolog.Logger

	// InspectAssets validates every image and narration before any encode.
	InspectAssets bool

	runner   ffmpeg.Runner
	lookPath ffmpeg.LookPathFunc
}

type Option func(*VideoProject)

// WithRunner replaces the process runner used for ffmpeg and ffprobe.
func WithRunner(r ffmpeg.Runner) Option {
	return func(p *VideoProject) { p.runner = r }
}

func WithLookPath(f ffmpeg.LookPathFunc) Option {
	return func(p *VideoProject) { p.lookPath = f }
}

func WithSpaceChecker(g video.SpaceChecker) Option {
	return func(p *VideoProject) { p.Guard = g }
}

func WithProber(pr video.DurationProber) Option {
	return func(p *VideoProject) { p.Probe = pr }
}

func WithFontResolver(r *captions.FontResolver) Option {
	return func(p *VideoProject) { p.Fonts = r }
}

func WithAssetInspection(on bool) Option {
	return func(p *VideoProject) { p.InspectAssets = on }
}

// NewVideoProject checks the engine and wires the rendering pipeline.
// It fails with ffmpeg.KindEngineMissing when ffmpeg or ffprobe is unusable.
func NewVideoProject(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*VideoProject, error) {
	p := &VideoProject{Config: cfg, Log: log, InspectAssets: true}
	for _, opt := range opts {
		opt(p)
	}

	eng, err := ffmpeg.NewEngine(ctx, cfg.FFmpegBin, cfg.FFprobeBin, p.runner, p.lookPath)
	if err != nil {
		return nil, err
	}
	p.Engine = eng

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if p.Probe == nil {
		p.Probe = system.NewDurationProbe(eng, log)
	}
	if p.Guard == nil {
		p.Guard = system.NewSpaceGuard(cfg.OutputDir, cfg.MinFreeBytes, log)
	}
	if p.Fonts == nil {
		p.Fonts = captions.NewFontResolver(cfg.Platform)
	}
	p.Encoder = video.NewFFmpegEncoder(eng, video.EncodeProfileFrom(cfg), p.Guard, log)

	log.Info().Str("ffmpeg", eng.FFmpeg).Str("ffprobe", eng.FFprobe).Msg("движок ffmpeg готов")
	return p, nil
}

// Run renders one request into Config.OutputDir. The workspace is removed on
// every exit path and no partial output is reported as success.
func (p *VideoProject) Run(ctx context.Context, req RenderRequest) (*RenderOutcome, error) {
	start := time.Now()
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	effect, err := p.effectFor(req)
	if err != nil {
		return nil, &ffmpeg.Error{Kind: ffmpeg.KindInvalidRequest, Err: err}
	}

	ws, err := NewWorkspace(p.Config.TempRoot)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer func() {
		if err := ws.Close(); err != nil {
			p.Log.Warn().Err(err).Str("dir", ws.Dir).Msg("не удалось удалить рабочую папку")
		}
	}()

	if err := p.Guard.Check(); err != nil {
		return nil, err
	}

	if p.InspectAssets {
		if err := source.Inspect(ctx, assetsOf(req), 0); err != nil {
			return nil, &ffmpeg.Error{Kind: ffmpeg.KindInvalidRequest, Err: err}
		}
	}

	canvas := video.ResolveCanvas(req.AspectRatio, req.Resolution)
	output := filepath.Join(p.Config.OutputDir, req.OutputFilename)

	log := p.Log.With().Str("output", req.OutputFilename).Logger()
	log.Info().
		Int("scenes", len(req.Scenes)).
		Str("canvas", canvas.String()).
		Int("fps", req.FPS).
		Bool("captions", req.EnableCaptions).
		Msg("--- [PROJECT: SCENE RENDER] ---")

	renderer := &video.SceneRenderer{
		Probe:   p.Probe,
		Fonts:   p.Fonts,
		Effect:  effect,
		Encoder: p.Encoder,
		Log:     log,
	}
	settings := video.RenderSettings{
		Canvas:    canvas,
		FPS:       req.FPS,
		Captions:  req.EnableCaptions,
		Workspace: ws.Dir,
	}

	// Сцены рендерятся строго по порядку: первая ошибка останавливает проект
	renderStart := time.Now()
	segs := make([]video.Segment, 0, len(req.Scenes))
	durations := make([]float64, 0, len(req.Scenes))
	for i, s := range req.Scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg, err := renderer.Render(ctx, video.SceneInput{
			Index:   i,
			Image:   s.ImagePath,
			Audio:   s.AudioPath,
			Caption: s.Caption,
		}, settings)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		durations = append(durations, seg.Duration)
		log.Info().Msgf("[>] Готово: %d/%d", i+1, len(req.Scenes))
	}
	renderTime := time.Since(renderStart)

	chain := &video.ChainBuilder{
		Probe:      p.Probe,
		Encoder:    p.Encoder,
		Transition: p.Config.Transition,
		Log:        log,
	}
	joinStart := time.Now()
	length, err := chain.Join(ctx, segs, req.TransitionDuration, output)
	if err != nil {
		// Недописанный файл не должен попасть в выдачу
		if rmErr := os.Remove(output); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Msg("не удалось удалить недописанное видео")
		}
		return nil, err
	}

	elapsed := time.Since(start)
	log.Info().
		Dur("render", renderTime).
		Dur("join", time.Since(joinStart)).
		Dur("total", elapsed).
		Float64("duration", length).
		Msg("[+++] видео готово")

	return &RenderOutcome{
		OutputPath:     output,
		Duration:       length,
		Canvas:         canvas,
		SceneDurations: durations,
		Elapsed:        elapsed,
	}, nil
}

func (p *VideoProject) effectFor(req RenderRequest) (effects.Effect, error) {
	motions := req.motions()
	if motions == nil {
		return effects.DefaultEffect{}, nil
	}
	return effects.NewScenarioEffect(motions)
}

func assetsOf(req RenderRequest) []source.Asset {
	out := make([]source.Asset, len(req.Scenes))
	for i, s := range req.Scenes {
		out[i] = source.Asset{Index: i, Image: s.ImagePath, Audio: s.AudioPath}
	}
	return out
}
