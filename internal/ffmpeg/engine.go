package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Engine is the ffmpeg/ffprobe pair every render goes through.
type Engine struct {
	FFmpeg  string
	FFprobe string
	Runner  Runner
}

// LookPathFunc resolves an executable name. exec.LookPath in production.
type LookPathFunc func(file string) (string, error)

// NewEngine resolves both binaries and confirms ffmpeg answers -version.
func NewEngine(ctx context.Context, ffmpegBin, ffprobeBin string, runner Runner, lookPath LookPathFunc) (*Engine, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	resolved := make([]string, 2)
	for i, bin := range []string{ffmpegBin, ffprobeBin} {
		p, err := lookPath(bin)
		if err != nil {
			return nil, &Error{Kind: KindEngineMissing, Op: "lookup", Msg: fmt.Sprintf("%s is not installed or not in PATH", bin), Err: err}
		}
		resolved[i] = p
	}

	res := runner.Run(ctx, resolved[0], "-version")
	if res.Err != nil {
		return nil, &Error{Kind: KindEngineMissing, Op: "version", Stderr: res.Stderr, Err: res.Err}
	}

	return &Engine{FFmpeg: resolved[0], FFprobe: resolved[1], Runner: runner}, nil
}

// Version returns the first line of `ffmpeg -version`.
func (e *Engine) Version(ctx context.Context) string {
	res := e.Runner.Run(ctx, e.FFmpeg, "-version")
	if res.Err != nil {
		return ""
	}
	line, _, _ := strings.Cut(res.Stdout, "\n")
	return strings.TrimSpace(line)
}

// Transcode runs ffmpeg with args.
func (e *Engine) Transcode(ctx context.Context, args ...string) Result {
	return e.Runner.Run(ctx, e.FFmpeg, args...)
}

// Probe runs ffprobe with args.
func (e *Engine) Probe(ctx context.Context, args ...string) Result {
	return e.Runner.Run(ctx, e.FFprobe, args...)
}
