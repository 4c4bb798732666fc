package video

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/ivlev/scene2video/internal/captions"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/renderer"
)

const (
	// SceneFadeIn is the fade from black at the start of every segment.
	SceneFadeIn = 0.5

	captionBorder    = 3
	captionBoxBorder = 15
)

// SceneInput is one scene as the planner sees it.
type SceneInput struct {
	Index    int
	Image    string
	Audio    string
	Caption  string
	Duration float64
}

// PlanOptions carries the per-request decisions the planner needs.
type PlanOptions struct {
	Canvas    Canvas
	FPS       int
	Workspace string
	Profile   effects.Profile
	Captions  bool
	Font      captions.FontChoice
}

// TextCard is a caption chunk written to a text file for drawtext.
type TextCard struct {
	Path  string
	Chunk captions.Chunk
}

// ScenePlan is the complete engine job for one scene.
type ScenePlan struct {
	Index    int
	Image    string
	Audio    string
	Output   string
	Duration float64
	Frames   int
	Profile  effects.Profile
	Canvas   Canvas
	Font     captions.FontChoice
	Cards    []TextCard
	Graph    renderer.Graph
}

// CaptionLayout returns the font size and baseline y for the canvas.
func CaptionLayout(c Canvas) (fontSize, y int) {
	short := float64(c.Short())
	h := float64(c.Height)
	switch c.Orientation() {
	case Portrait:
		return max(48, int(short*0.065)), int(h * 0.82)
	case Square:
		return max(44, int(short*0.06)), int(h * 0.80)
	default:
		return max(40, int(short*0.055)), int(h * 0.78)
	}
}

// FrameCount is duration×fps rounded, at least one frame.
func FrameCount(duration float64, fps int) int {
	return max(1, int(math.Round(duration*float64(fps))))
}

// SegmentName is the workspace file name of scene i.
func SegmentName(i int) string {
	return fmt.Sprintf("scene_%03d.mp4", i)
}

// PlanScene builds the filter graph for one scene. It performs no I/O.
func PlanScene(in SceneInput, opt PlanOptions) ScenePlan {
	plan := ScenePlan{
		Index:    in.Index,
		Image:    in.Image,
		Audio:    in.Audio,
		Output:   filepath.Join(opt.Workspace, SegmentName(in.Index)),
		Duration: in.Duration,
		Frames:   FrameCount(in.Duration, opt.FPS),
		Profile:  opt.Profile,
		Canvas:   opt.Canvas,
		Font:     opt.Font,
	}

	margin := opt.Canvas.Scale(opt.Profile.Margin())
	sp := config.SegmentParams{
		Width:      opt.Canvas.Width,
		Height:     opt.Canvas.Height,
		FPS:        opt.FPS,
		Duration:   in.Duration,
		Frames:     plan.Frames,
		SceneIndex: in.Index,
	}

	filters := []renderer.Filter{
		renderer.NewFilter("scale").
			Set("w", margin.Width).
			Set("h", margin.Height).
			Set("force_original_aspect_ratio", "increase"),
		renderer.NewFilter("crop").
			Set("w", margin.Width).
			Set("h", margin.Height),
		opt.Profile.Filter(sp),
		renderer.NewFilter("unsharp").Arg(5).Arg(5).Arg(0.8).Arg(5).Arg(5).Arg(0.0),
		renderer.NewFilter("fade").Set("t", "in").Set("st", 0).Set("d", SceneFadeIn),
	}

	if opt.Captions {
		fontSize, y := CaptionLayout(opt.Canvas)
		for j, chunk := range captions.Schedule(in.Caption, in.Duration) {
			card := TextCard{
				Path:  filepath.Join(opt.Workspace, fmt.Sprintf("scene_%03d_caption_%02d.txt", in.Index, j)),
				Chunk: chunk,
			}
			plan.Cards = append(plan.Cards, card)
			filters = append(filters, drawtext(card, opt.Font.Path, fontSize, y))
		}
	}

	plan.Graph.Add(renderer.Chain{
		Inputs:  []string{"0:v"},
		Filters: filters,
		Outputs: []string{"v"},
	})
	return plan
}

func drawtext(card TextCard, font string, fontSize, y int) renderer.Filter {
	return renderer.NewFilter("drawtext").
		Path("fontfile", font).
		Path("textfile", card.Path).
		Set("expansion", "none").
		Set("fontsize", fontSize).
		Set("fontcolor", "white").
		Set("borderw", captionBorder).
		Set("bordercolor", "black@0.95").
		Set("box", 1).
		Set("boxcolor", "black@0.7").
		Set("boxborderw", captionBoxBorder).
		Expr("x", "(w-text_w)/2").
		Set("y", y).
		Expr("alpha", card.Chunk.AlphaExpr()).
		Expr("enable", card.Chunk.EnableExpr())
}

// Args is the ffmpeg argument list rendering the plan.
func (p ScenePlan) Args(enc EncodeProfile) []string {
	args := []string{
		"-hide_banner", "-y",
		"-loop", "1", "-i", p.Image,
		"-i", p.Audio,
		"-filter_complex", p.Graph.String(),
		"-map", "[v]",
		"-map", "1:a",
	}
	args = append(args, enc.args()...)
	return append(args, "-shortest", "-movflags", "+faststart", p.Output)
}
