// Package ffmpegtest provides a scripted ffmpeg.Runner for tests.
package ffmpegtest

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/ivlev/scene2video/internal/ffmpeg"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// Output is the last argument, which is the output path for transcodes.
func (c Call) Output() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// Value returns the argument following flag, or "".
func (c Call) Value(flag string) string {
	for i := 0; i < len(c.Args)-1; i++ {
		if c.Args[i] == flag {
			return c.Args[i+1]
		}
	}
	return ""
}

// Values returns every argument following flag.
func (c Call) Values(flag string) []string {
	var out []string
	for i := 0; i < len(c.Args)-1; i++ {
		if c.Args[i] == flag {
			out = append(out, c.Args[i+1])
		}
	}
	return out
}

// Has reports whether arg appears in the argument list.
func (c Call) Has(arg string) bool {
	for _, a := range c.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// IsProbe reports whether the call went to ffprobe.
func (c Call) IsProbe() bool {
	return strings.Contains(c.Name, "ffprobe")
}

// Runner records calls and answers them with Handle.
// A nil Handle succeeds with empty output.
type Runner struct {
	Handle func(c Call) ffmpeg.Result

	mu    sync.Mutex
	calls []Call
}

func (r *Runner) Run(_ context.Context, name string, args ...string) ffmpeg.Result {
	c := Call{Name: name, Args: append([]string(nil), args...)}
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if r.Handle == nil {
		return ffmpeg.Result{}
	}
	return r.Handle(c)
}

// Calls returns a copy of the recorded calls.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Transcodes returns the recorded ffmpeg calls that write an output file.
func (r *Runner) Transcodes() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if !c.IsProbe() && c.Has("-filter_complex") {
			out = append(out, c)
		}
	}
	return out
}

// Touch creates the call's output file with placeholder content.
func Touch(c Call) ffmpeg.Result {
	if err := os.WriteFile(c.Output(), []byte("mp4"), 0644); err != nil {
		return ffmpeg.Result{Err: err, ExitCode: 1, Stderr: err.Error()}
	}
	return ffmpeg.Result{}
}

// Fail returns a nonzero exit with stderr.
func Fail(stderr string) ffmpeg.Result {
	return ffmpeg.Result{Err: &exitError{}, ExitCode: 1, Stderr: stderr}
}

type exitError struct{}

func (*exitError) Error() string { return "exit status 1" }

// LookPath resolves every name to itself.
func LookPath(file string) (string, error) { return file, nil }
