package video

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ivlev/scene2video/internal/ffmpeg"
)

// DurationProber returns the duration of a media file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// SpaceChecker is the free-space preflight.
type SpaceChecker interface {
	Check() error
}

// VideoEncoder runs planned jobs on the transcoding engine.
type VideoEncoder interface {
	EncodeScene(ctx context.Context, plan ScenePlan) error
	Concatenate(ctx context.Context, plan TransitionPlan) error
}

type FFmpegEncoder struct {
	Engine  *ffmpeg.Engine
	Profile EncodeProfile
	Guard   SpaceChecker
	Log     zerolog.Logger
}

func NewFFmpegEncoder(engine *ffmpeg.Engine, profile EncodeProfile, guard SpaceChecker, log zerolog.Logger) *FFmpegEncoder {
	return &FFmpegEncoder{Engine: engine, Profile: profile, Guard: guard, Log: log}
}

// EncodeScene writes the caption cards next to the segment and renders it.
func (e *FFmpegEncoder) EncodeScene(ctx context.Context, plan ScenePlan) error {
	op := SegmentName(plan.Index)
	for _, card := range plan.Cards {
		if err := os.WriteFile(card.Path, []byte(card.Chunk.Text), 0644); err != nil {
			return &ffmpeg.Error{Kind: ffmpeg.KindSceneRender, Op: op, Msg: "write caption card", Err: err}
		}
	}

	e.Log.Debug().Str("scene", op).Str("graph", plan.Graph.String()).Msg("filter graph")

	res := e.Engine.Transcode(ctx, plan.Args(e.Profile)...)
	if err := checkOutput(res, plan.Output); err != nil {
		kind := ffmpeg.KindSceneRender
		// Нехватка места при рендере сцены тоже OutOfSpace, а не общий сбой сцены
		if ffmpeg.MatchOutOfSpace(res.Stderr) {
			kind = ffmpeg.KindOutOfSpace
		}
		return &ffmpeg.Error{Kind: kind, Op: op, Stderr: res.Stderr, Err: err}
	}
	return nil
}

// Concatenate renders the crossfade chain in a single call. An out-of-space
// failure re-runs the space check and is reported as ffmpeg.KindOutOfSpace.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, plan TransitionPlan) error {
	e.Log.Debug().Str("graph", plan.Graph.String()).Msg("transition graph")

	res := e.Engine.Transcode(ctx, plan.Args(e.Profile)...)
	err := checkOutput(res, plan.Output)
	if err == nil {
		return nil
	}

	if ffmpeg.MatchOutOfSpace(res.Stderr) {
		var guardErr error
		if e.Guard != nil {
			guardErr = e.Guard.Check()
		}
		if guardErr == nil {
			guardErr = err
		}
		return &ffmpeg.Error{
			Kind:   ffmpeg.KindOutOfSpace,
			Op:     "transitions",
			Msg:    "ran out of disk space while joining scenes; free up space and retry",
			Stderr: res.Stderr,
			Err:    guardErr,
		}
	}
	return &ffmpeg.Error{Kind: ffmpeg.KindTransitionRender, Op: "transitions", Stderr: res.Stderr, Err: err}
}

// checkOutput treats a run as successful only with exit 0 and the output present.
func checkOutput(res ffmpeg.Result, output string) error {
	if res.Err != nil {
		return fmt.Errorf("exit code %d: %w", res.ExitCode, res.Err)
	}
	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("engine reported success but output is missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("engine produced an empty file %s", output)
	}
	return nil
}
