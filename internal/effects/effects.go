package effects

import (
	"fmt"
	"math"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/renderer"
)

// Profile is a named pan/zoom motion applied to a still over its frame range.
type Profile string

const (
	PanRight Profile = "pan_right"
	PanLeft  Profile = "pan_left"
	Dynamic  Profile = "dynamic"
	ZoomOut  Profile = "zoom_out"
	KenBurns Profile = "ken_burns"
)

// sceneCycle задает порядок смены движений между сценами.
var sceneCycle = []Profile{PanRight, PanLeft, Dynamic, ZoomOut}

// Motion is the zoompan state of one output frame.
type Motion struct {
	Zoom float64
	X, Y float64
}

// Effect picks the motion profile for a scene.
type Effect interface {
	Profile(sceneIndex int) Profile
}

// DefaultEffect cycles through pan-right, pan-left, dynamic, zoom-out.
type DefaultEffect struct{}

func (DefaultEffect) Profile(sceneIndex int) Profile {
	return ForScene(sceneIndex)
}

// ForScene returns the cycled profile for scene i.
func ForScene(i int) Profile {
	n := len(sceneCycle)
	return sceneCycle[((i%n)+n)%n]
}

// ParseProfile validates a profile name.
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(name); p {
	case PanRight, PanLeft, Dynamic, ZoomOut, KenBurns:
		return p, nil
	}
	return "", fmt.Errorf("unknown motion profile %q", name)
}

// MaxZoom is the upper zoom bound of the profile.
func (p Profile) MaxZoom() float64 {
	switch p {
	case PanRight, PanLeft:
		return 1.1
	case Dynamic:
		return 1.5
	case ZoomOut:
		return 1.3
	default:
		return 1.2
	}
}

// Margin is the pre-scale factor applied to the canvas before zoompan.
func (p Profile) Margin() float64 {
	if p == Dynamic || p == ZoomOut {
		return 2.0
	}
	return 1.5
}

const (
	dynamicRate = 0.0015
	driftX      = 30.0
	driftY      = 20.0
)

// At evaluates the profile for frame of total on a w×h source.
// X and Y are the top-left crop origin in source pixels.
func (p Profile) At(frame, total, w, h int) Motion {
	if total <= 0 {
		total = 1
	}
	prog := renderer.Progress(frame, total)
	maxZ := p.MaxZoom()

	var z float64
	switch p {
	case PanRight, PanLeft:
		z = maxZ
	case Dynamic:
		half := float64(total) / 2
		on := float64(frame)
		z = 1 + dynamicRate*math.Min(on, half) - dynamicRate*math.Max(on-half, 0)
	case ZoomOut:
		z = maxZ - (maxZ-1)*renderer.EaseOutQuad(prog)
	default:
		z = renderer.Lerp(1, maxZ, prog)
	}
	z = renderer.Clamp(z, 1, maxZ)

	fw, fh := float64(w), float64(h)
	spanX := fw - fw/z
	spanY := fh - fh/z

	m := Motion{Zoom: z, X: spanX / 2, Y: spanY / 2}
	switch p {
	case PanRight:
		m.X = prog * spanX
	case PanLeft:
		m.X = (1 - prog) * spanX
	case Dynamic:
		on := float64(frame)
		m.X = renderer.Clamp(spanX/2+math.Sin(on/20)*driftX, 0, spanX)
		m.Y = renderer.Clamp(spanY/2+math.Cos(on/25)*driftY, 0, spanY)
	}
	return m
}

// Expressions returns the zoompan z, x and y expressions equivalent to At.
func (p Profile) Expressions(total int) (z, x, y string) {
	if total <= 0 {
		total = 1
	}
	prog := fmt.Sprintf("min(on/%d,1)", total)
	maxZ := renderer.Format(p.MaxZoom())
	centerX := "(iw-iw/zoom)/2"
	centerY := "(ih-ih/zoom)/2"

	switch p {
	case PanRight:
		return maxZ, fmt.Sprintf("%s*(iw-iw/zoom)", prog), centerY
	case PanLeft:
		return maxZ, fmt.Sprintf("(1-%s)*(iw-iw/zoom)", prog), centerY
	case Dynamic:
		half := renderer.Format(float64(total) / 2)
		z = fmt.Sprintf("clip(1+%s*min(on,%s)-%s*max(on-%s,0),1,%s)",
			renderer.Format(dynamicRate), half, renderer.Format(dynamicRate), half, maxZ)
		x = fmt.Sprintf("clip((iw-iw/zoom)/2+sin(on/20)*%s,0,iw-iw/zoom)", renderer.Format(driftX))
		y = fmt.Sprintf("clip((ih-ih/zoom)/2+cos(on/25)*%s,0,ih-ih/zoom)", renderer.Format(driftY))
		return z, x, y
	case ZoomOut:
		z = fmt.Sprintf("%s-%s*(1-pow(1-%s,2))", maxZ, renderer.Format(p.MaxZoom()-1), prog)
		return z, centerX, centerY
	default:
		z = fmt.Sprintf("min(1+%s*%s,%s)", renderer.Format(p.MaxZoom()-1), prog, maxZ)
		return z, centerX, centerY
	}
}

// Filter builds the zoompan stage for one segment.
func (p Profile) Filter(sp config.SegmentParams) renderer.Filter {
	z, x, y := p.Expressions(sp.Frames)
	return renderer.NewFilter("zoompan").
		Expr("z", z).
		Expr("x", x).
		Expr("y", y).
		Set("d", sp.Frames).
		Set("s", fmt.Sprintf("%dx%d", sp.Width, sp.Height)).
		Set("fps", sp.FPS)
}
