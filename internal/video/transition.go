package video

import (
	"fmt"

	"github.com/ivlev/scene2video/internal/renderer"
)

// DefaultTransition is the xfade transition between scenes.
const DefaultTransition = "smoothleft"

// Segment is a rendered scene file with its measured duration.
type Segment struct {
	Path     string
	Duration float64
}

// Offsets returns the xfade offsets of a chained crossfade: transition k
// starts where the timeline built from segments 0..k-1 ends, minus t.
func Offsets(durations []float64, t float64) []float64 {
	if len(durations) < 2 {
		return nil
	}
	offsets := make([]float64, len(durations)-1)
	cumulative := durations[0]
	for k := 1; k < len(durations); k++ {
		offsets[k-1] = cumulative - t
		cumulative += durations[k] - t
	}
	return offsets
}

// TimelineLength is the duration of the joined video.
func TimelineLength(durations []float64, t float64) float64 {
	total := 0.0
	for _, d := range durations {
		total += d
	}
	if len(durations) > 1 {
		total -= float64(len(durations)-1) * t
	}
	return total
}

// TransitionPlan joins N ≥ 2 segments in one engine call.
type TransitionPlan struct {
	Segments   []Segment
	Transition string
	Overlap    float64
	Offsets    []float64
	Output     string
	Graph      renderer.Graph
}

// PlanTransitions builds the paired xfade/acrossfade chains and the final
// pixel-format normalization.
func PlanTransitions(segs []Segment, overlap float64, transition, output string) TransitionPlan {
	if transition == "" {
		transition = DefaultTransition
	}
	durations := make([]float64, len(segs))
	for i, s := range segs {
		durations[i] = s.Duration
	}

	plan := TransitionPlan{
		Segments:   segs,
		Transition: transition,
		Overlap:    overlap,
		Offsets:    Offsets(durations, overlap),
		Output:     output,
	}

	last := len(segs) - 1
	prevV, prevA := "0:v", "0:a"
	for k := 1; k <= last; k++ {
		outV, outA := fmt.Sprintf("v%d", k), fmt.Sprintf("a%d", k)
		if k == last {
			outV, outA = "vtmp", "aout"
		}

		plan.Graph.Add(renderer.Chain{
			Inputs: []string{prevV, fmt.Sprintf("%d:v", k)},
			Filters: []renderer.Filter{renderer.NewFilter("xfade").
				Set("transition", transition).
				Set("duration", overlap).
				Set("offset", plan.Offsets[k-1])},
			Outputs: []string{outV},
		})
		plan.Graph.Add(renderer.Chain{
			Inputs:  []string{prevA, fmt.Sprintf("%d:a", k)},
			Filters: []renderer.Filter{renderer.NewFilter("acrossfade").Set("d", overlap)},
			Outputs: []string{outA},
		})
		prevV, prevA = outV, outA
	}

	plan.Graph.Add(renderer.Chain{
		Inputs:  []string{"vtmp"},
		Filters: []renderer.Filter{renderer.NewFilter("format").Arg("yuv420p")},
		Outputs: []string{"vout"},
	})
	return plan
}

// Length is the expected duration of the joined output.
func (p TransitionPlan) Length() float64 {
	durations := make([]float64, len(p.Segments))
	for i, s := range p.Segments {
		durations[i] = s.Duration
	}
	return TimelineLength(durations, p.Overlap)
}

// Args is the single ffmpeg call rendering the whole chain.
func (p TransitionPlan) Args(enc EncodeProfile) []string {
	args := []string{"-hide_banner", "-y"}
	for _, s := range p.Segments {
		args = append(args, "-i", s.Path)
	}
	args = append(args,
		"-filter_complex", p.Graph.String(),
		"-map", "[vout]",
		"-map", "[aout]",
	)
	args = append(args, enc.args()...)
	return append(args, "-movflags", "+faststart", p.Output)
}
