package director

import (
	"path/filepath"

	"github.com/ivlev/scene2video/internal/engine"
)

const StoryboardVersion = "1.0"

// Storyboard is the YAML manifest of one video.
type Storyboard struct {
	Version            string  `yaml:"version"`
	AspectRatio        string  `yaml:"aspect_ratio,omitempty"`
	Resolution         string  `yaml:"resolution,omitempty"`
	TransitionDuration float64 `yaml:"transition_duration,omitempty"`
	FPS                int     `yaml:"fps,omitempty"`
	Captions           *bool   `yaml:"captions,omitempty"`
	Output             string  `yaml:"output,omitempty"`
	Scenes             []Scene `yaml:"scenes"`

	// dir is where the manifest was read from
	dir string
}

// Scene is one storyboard entry.
type Scene struct {
	ID        int    `yaml:"id"`
	Image     string `yaml:"image"`
	Audio     string `yaml:"audio"`
	Caption   string `yaml:"caption,omitempty"`
	VoiceOver string `yaml:"voice_over,omitempty"`
	Motion    string `yaml:"motion,omitempty"`
}

// Request converts the storyboard into a render request. Relative asset
// paths are joined onto the manifest directory; captions default to on.
func (s *Storyboard) Request() engine.RenderRequest {
	req := engine.RenderRequest{
		AspectRatio:        s.AspectRatio,
		Resolution:         s.Resolution,
		TransitionDuration: s.TransitionDuration,
		FPS:                s.FPS,
		OutputFilename:     s.Output,
		EnableCaptions:     s.Captions == nil || *s.Captions,
	}
	for _, sc := range s.Scenes {
		req.Scenes = append(req.Scenes, engine.Scene{
			ImagePath: s.resolve(sc.Image),
			AudioPath: s.resolve(sc.Audio),
			Caption:   sc.Caption,
			VoiceOver: sc.VoiceOver,
			Motion:    sc.Motion,
		})
	}
	return req
}

func (s *Storyboard) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}
