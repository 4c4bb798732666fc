package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind tags a failure category of a render.
type Kind int

const (
	KindUnknown Kind = iota
	KindEngineMissing
	KindInsufficientSpace
	KindOutOfSpace
	KindDurationUnresolvable
	KindSceneRender
	KindTransitionRender
	KindInvalidRequest
)

func (k Kind) String() string {
	switch k {
	case KindEngineMissing:
		return "engine_missing"
	case KindInsufficientSpace:
		return "insufficient_space"
	case KindOutOfSpace:
		return "out_of_space"
	case KindDurationUnresolvable:
		return "duration_unresolvable"
	case KindSceneRender:
		return "scene_render"
	case KindTransitionRender:
		return "transition_render"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *Error.
var (
	ErrEngineMissing        = errors.New("transcoding engine not found")
	ErrInsufficientSpace    = errors.New("insufficient disk space")
	ErrOutOfSpace           = errors.New("disk space exhausted during render")
	ErrDurationUnresolvable = errors.New("media duration could not be determined")
	ErrSceneRender          = errors.New("scene render failed")
	ErrTransitionRender     = errors.New("transition render failed")
	ErrInvalidRequest       = errors.New("invalid render request")
)

var sentinels = map[Kind]error{
	KindEngineMissing:        ErrEngineMissing,
	KindInsufficientSpace:    ErrInsufficientSpace,
	KindOutOfSpace:           ErrOutOfSpace,
	KindDurationUnresolvable: ErrDurationUnresolvable,
	KindSceneRender:          ErrSceneRender,
	KindTransitionRender:     ErrTransitionRender,
	KindInvalidRequest:       ErrInvalidRequest,
}

// Error is a tagged render failure with the engine's diagnostic output attached.
type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else if s, ok := sentinels[e.Kind]; ok {
		b.WriteString(s.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// Tail returns the last n lines of the captured stderr.
func (e *Error) Tail(n int) string {
	lines := strings.Split(strings.TrimRight(e.Stderr, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// KindOf extracts the failure kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

var reOutOfSpace = regexp.MustCompile(
	`(?i)No space left on device|Disk quota exceeded|ENOSPC`)

// MatchOutOfSpace reports whether stderr carries the out-of-space signature.
func MatchOutOfSpace(stderr string) bool {
	return reOutOfSpace.MatchString(stderr)
}
