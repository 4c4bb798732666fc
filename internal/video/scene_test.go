package video

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/captions"
	"github.com/ivlev/scene2video/internal/effects"
)

func planFor(t *testing.T, caption string, withCaptions bool, profile effects.Profile) ScenePlan {
	t.Helper()
	return PlanScene(
		SceneInput{Index: 2, Image: "/in/slide.png", Audio: "/in/voice.mp3", Caption: caption, Duration: 5},
		PlanOptions{
			Canvas:    Canvas{1920, 1080},
			FPS:       30,
			Workspace: "/tmp/ws",
			Profile:   profile,
			Captions:  withCaptions,
			Font:      captions.FontChoice{Path: "/fonts/DejaVuSans-Bold.ttf", Exists: true},
		})
}

func TestPlanSceneChainOrder(t *testing.T) {
	plan := planFor(t, "one two three four", true, effects.Dynamic)

	require.Len(t, plan.Graph.Chains, 1)
	chain := plan.Graph.Chains[0]
	assert.Equal(t, []string{"0:v"}, chain.Inputs)
	assert.Equal(t, []string{"v"}, chain.Outputs)

	var names []string
	for _, f := range chain.Filters {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"scale", "crop", "zoompan", "unsharp", "fade", "drawtext", "drawtext"}, names)
	assert.NoError(t, plan.Graph.Validate("v"))

	assert.Equal(t, 150, plan.Frames)
	assert.Equal(t, "/tmp/ws/scene_002.mp4", plan.Output)
}

func TestPlanSceneMargin(t *testing.T) {
	dyn := planFor(t, "", false, effects.Dynamic)
	scale := dyn.Graph.Filters("scale")[0]
	w, _ := scale.Get("w")
	h, _ := scale.Get("h")
	assert.Equal(t, "3840", w)
	assert.Equal(t, "2160", h)

	pan := planFor(t, "", false, effects.PanLeft)
	crop := pan.Graph.Filters("crop")[0]
	w, _ = crop.Get("w")
	h, _ = crop.Get("h")
	assert.Equal(t, "2880", w)
	assert.Equal(t, "1620", h)
}

func TestPlanSceneFixedStages(t *testing.T) {
	plan := planFor(t, "", false, effects.PanRight)
	g := plan.Graph.String()

	assert.Contains(t, g, "unsharp=5:5:0.8:5:5:0")
	assert.Contains(t, g, "fade=t=in:st=0:d=0.5")
	assert.Contains(t, g, ":d=150:s=1920x1080:fps=30")
	assert.Empty(t, plan.Graph.Filters("drawtext"))
	assert.Empty(t, plan.Cards)
}

func TestPlanSceneCaptions(t *testing.T) {
	plan := planFor(t, "Hello brave new world", true, effects.PanRight)

	require.Len(t, plan.Cards, 2)
	assert.Equal(t, "Hello brave new", plan.Cards[0].Chunk.Text)
	assert.Equal(t, "/tmp/ws/scene_002_caption_01.txt", plan.Cards[1].Path)

	dt := plan.Graph.Filters("drawtext")
	require.Len(t, dt, 2)
	s := dt[1].String()
	assert.Contains(t, s, "fontfile='/fonts/DejaVuSans-Bold.ttf'")
	assert.Contains(t, s, "textfile='/tmp/ws/scene_002_caption_01.txt'")
	assert.Contains(t, s, "expansion=none")
	assert.Contains(t, s, "fontsize=59")
	assert.Contains(t, s, "y=842")
	assert.Contains(t, s, "enable='between(t,2.5,5)'")
	assert.Contains(t, s, "boxcolor=black@0.7")
}

func TestScenePlanArgs(t *testing.T) {
	plan := planFor(t, "", false, effects.ZoomOut)
	args := plan.Args(DefaultEncodeProfile)
	joined := strings.Join(args, " ")

	assert.True(t, strings.HasPrefix(joined, "-hide_banner -y -loop 1 -i /in/slide.png -i /in/voice.mp3 -filter_complex "))
	assert.Contains(t, joined, "-map [v] -map 1:a -c:v libx264 -preset fast -crf 25 -c:a aac -b:a 128k -shortest -movflags +faststart")
	assert.Equal(t, plan.Output, args[len(args)-1])
}

func TestPlanSceneDeterministic(t *testing.T) {
	a := planFor(t, "same words every time here", true, effects.ForScene(2))
	b := planFor(t, "same words every time here", true, effects.ForScene(2))
	assert.Equal(t, a.Graph.String(), b.Graph.String())
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 150, FrameCount(5, 30))
	assert.Equal(t, 121, FrameCount(5.03, 24))
	assert.Equal(t, 1, FrameCount(0.001, 24))
}
