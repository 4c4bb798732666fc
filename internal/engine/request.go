package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/ffmpeg"
)

// Scene is one (image, narration, caption) triple.
type Scene struct {
	ImagePath string
	AudioPath string
	Caption   string
	VoiceOver string
	// Motion overrides the cycled motion profile when set.
	Motion string
}

// RenderRequest is everything needed to produce one video.
type RenderRequest struct {
	Scenes             []Scene
	AspectRatio        string
	Resolution         string
	TransitionDuration float64
	FPS                int
	OutputFilename     string
	EnableCaptions     bool
}

const (
	DefaultAspectRatio = "16:9"
	DefaultTransition  = 0.5
	DefaultFPS         = 30

	MinTransition = 0.1
	MaxTransition = 2.0
	MinFPS        = 24
	MaxFPS        = 60
)

// DefaultOutputFilename returns video_<uuid>.mp4.
func DefaultOutputFilename() string {
	return fmt.Sprintf("video_%s.mp4", uuid.NewString())
}

// ApplyDefaults fills the zero-valued optional fields.
func (r *RenderRequest) ApplyDefaults() {
	if r.AspectRatio == "" {
		r.AspectRatio = DefaultAspectRatio
	}
	if r.TransitionDuration == 0 {
		r.TransitionDuration = DefaultTransition
	}
	if r.FPS == 0 {
		r.FPS = DefaultFPS
	}
	if r.OutputFilename == "" {
		r.OutputFilename = DefaultOutputFilename()
	}
}

// Validate reports every problem with the request as one ffmpeg.KindInvalidRequest error.
func (r *RenderRequest) Validate() error {
	var errs []error
	if len(r.Scenes) == 0 {
		errs = append(errs, errors.New("at least one scene is required"))
	}
	for i, s := range r.Scenes {
		if strings.TrimSpace(s.ImagePath) == "" {
			errs = append(errs, fmt.Errorf("scene %d: image is required", i+1))
		}
		if strings.TrimSpace(s.AudioPath) == "" {
			errs = append(errs, fmt.Errorf("scene %d: audio is required", i+1))
		}
		if s.Motion != "" {
			if _, err := effects.ParseProfile(s.Motion); err != nil {
				errs = append(errs, fmt.Errorf("scene %d: %w", i+1, err))
			}
		}
	}
	if r.TransitionDuration < MinTransition || r.TransitionDuration > MaxTransition {
		errs = append(errs, fmt.Errorf("transition duration %.2fs outside %.1f-%.1f", r.TransitionDuration, MinTransition, MaxTransition))
	}
	if r.FPS < MinFPS || r.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("fps %d outside %d-%d", r.FPS, MinFPS, MaxFPS))
	}
	name := r.OutputFilename
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		errs = append(errs, fmt.Errorf("output filename %q must be a plain file name", name))
	}

	if len(errs) == 0 {
		return nil
	}
	return &ffmpeg.Error{Kind: ffmpeg.KindInvalidRequest, Err: errors.Join(errs...)}
}

// motions lists the per-scene motion overrides.
func (r *RenderRequest) motions() []string {
	out := make([]string, len(r.Scenes))
	set := false
	for i, s := range r.Scenes {
		out[i] = s.Motion
		set = set || s.Motion != ""
	}
	if !set {
		return nil
	}
	return out
}
