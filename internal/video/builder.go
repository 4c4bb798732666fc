package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ivlev/scene2video/internal/captions"
	"github.com/ivlev/scene2video/internal/effects"
)

// RenderSettings are the request-wide inputs of every scene.
type RenderSettings struct {
	Canvas    Canvas
	FPS       int
	Captions  bool
	Workspace string
}

// SceneRenderer turns one scene into a segment file in the workspace.
type SceneRenderer struct {
	Probe   DurationProber
	Fonts   *captions.FontResolver
	Effect  effects.Effect
	Encoder VideoEncoder
	Log     zerolog.Logger
}

// Render probes the narration, plans the graph and encodes the segment.
func (r *SceneRenderer) Render(ctx context.Context, in SceneInput, rs RenderSettings) (Segment, error) {
	d, err := r.Probe.Duration(ctx, in.Audio)
	if err != nil {
		return Segment{}, fmt.Errorf("scene %d audio: %w", in.Index+1, err)
	}
	in.Duration = d

	opt := PlanOptions{
		Canvas:    rs.Canvas,
		FPS:       rs.FPS,
		Workspace: rs.Workspace,
		Profile:   r.Effect.Profile(in.Index),
		Captions:  rs.Captions,
	}
	if rs.Captions {
		opt.Font = r.font(in)
	}

	plan := PlanScene(in, opt)
	r.Log.Info().
		Int("scene", in.Index+1).
		Float64("duration", d).
		Int("frames", plan.Frames).
		Str("motion", string(plan.Profile)).
		Int("captions", len(plan.Cards)).
		Msg("рендер сцены")

	if err := r.Encoder.EncodeScene(ctx, plan); err != nil {
		return Segment{}, err
	}
	return Segment{Path: plan.Output, Duration: d}, nil
}

func (r *SceneRenderer) font(in SceneInput) captions.FontChoice {
	script := captions.Classify(in.Caption)
	choice := r.Fonts.Resolve(script)
	log := r.Log.With().Int("scene", in.Index+1).Str("script", string(script)).Str("font", choice.Path).Logger()

	if !choice.Exists {
		log.Warn().Msg("шрифт не найден, ffmpeg сообщит об ошибке")
		return choice
	}
	if choice.Fallback {
		log.Warn().Msg("используется резервный шрифт")
	}
	if ok, err := r.Fonts.Covers(choice); err != nil {
		log.Debug().Err(err).Msg("не удалось проверить глифы шрифта")
	} else if !ok {
		log.Warn().Msg("шрифт не содержит символов этого письма")
	}
	return choice
}

// ChainBuilder joins rendered segments into the final video.
type ChainBuilder struct {
	Probe      DurationProber
	Encoder    VideoEncoder
	Transition string
	Log        zerolog.Logger
}

// Join writes the final video to output and returns its expected duration.
// A single segment is copied as is.
func (b *ChainBuilder) Join(ctx context.Context, segs []Segment, overlap float64, output string) (float64, error) {
	switch len(segs) {
	case 0:
		return 0, errors.New("no segments to join")
	case 1:
		b.Log.Info().Str("output", output).Msg("одна сцена, копируем сегмент без переходов")
		if err := copyFile(segs[0].Path, output); err != nil {
			return 0, fmt.Errorf("copy segment: %w", err)
		}
		return segs[0].Duration, nil
	}

	measured := make([]Segment, len(segs))
	shortest := 0.0
	for i, s := range segs {
		d, err := b.Probe.Duration(ctx, s.Path)
		if err != nil {
			return 0, fmt.Errorf("segment %d: %w", i+1, err)
		}
		measured[i] = Segment{Path: s.Path, Duration: d}
		if i == 0 || d < shortest {
			shortest = d
		}
	}

	if overlap >= shortest {
		overlap = shortest / 2
		b.Log.Warn().Float64("transition", overlap).Msg("переход уменьшен из-за короткой сцены")
	}

	plan := PlanTransitions(measured, overlap, b.Transition, output)
	if err := plan.Graph.Validate("vout", "aout"); err != nil {
		return 0, fmt.Errorf("transition graph: %w", err)
	}

	b.Log.Info().
		Int("segments", len(measured)).
		Float64("transition", overlap).
		Float64("length", plan.Length()).
		Msg("сборка финального видео с переходами")

	if err := b.Encoder.Concatenate(ctx, plan); err != nil {
		return 0, err
	}
	return plan.Length(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
