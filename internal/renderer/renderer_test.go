package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterString(t *testing.T) {
	f := NewFilter("unsharp").Arg(5).Arg(5).Arg(0.8).Arg(5).Arg(5).Arg(0.0)
	assert.Equal(t, "unsharp=5:5:0.8:5:5:0", f.String())

	z := NewFilter("zoompan").Expr("z", "min(zoom+0.001,1.2)").Set("d", 150).Set("s", "1920x1080")
	assert.Equal(t, "zoompan=z='min(zoom+0.001,1.2)':d=150:s=1920x1080", z.String())

	v, ok := z.Get("d")
	require.True(t, ok)
	assert.Equal(t, "150", v)

	assert.Equal(t, "format", NewFilter("format").String())
}

func TestSetDoesNotAlias(t *testing.T) {
	base := NewFilter("fade").Set("t", "in")
	a := base.Set("d", 1)
	b := base.Set("d", 2)
	assert.Equal(t, "fade=t=in:d=1", a.String())
	assert.Equal(t, "fade=t=in:d=2", b.String())
}

func TestGraphString(t *testing.T) {
	var g Graph
	g.Add(Chain{Inputs: []string{"0:v", "1:v"}, Filters: []Filter{NewFilter("xfade").Set("offset", 3.5)}, Outputs: []string{"vtmp"}})
	g.Add(Chain{Inputs: []string{"vtmp"}, Filters: []Filter{NewFilter("format").Set("pix_fmts", "yuv420p")}, Outputs: []string{"vout"}})

	assert.Equal(t, "[0:v][1:v]xfade=offset=3.5[vtmp];[vtmp]format=pix_fmts=yuv420p[vout]", g.String())
	assert.NoError(t, g.Validate("vout"))
	assert.Len(t, g.Filters("xfade"), 1)
}

func TestGraphValidate(t *testing.T) {
	f := NewFilter("null")

	t.Run("unproduced input", func(t *testing.T) {
		g := Graph{Chains: []Chain{{Inputs: []string{"x"}, Filters: []Filter{f}, Outputs: []string{"out"}}}}
		assert.Error(t, g.Validate("out"))
	})

	t.Run("dangling label", func(t *testing.T) {
		g := Graph{Chains: []Chain{
			{Inputs: []string{"0:v"}, Filters: []Filter{f}, Outputs: []string{"a"}},
			{Inputs: []string{"1:v"}, Filters: []Filter{f}, Outputs: []string{"out"}},
		}}
		assert.Error(t, g.Validate("out"))
	})

	t.Run("double consume", func(t *testing.T) {
		g := Graph{Chains: []Chain{
			{Inputs: []string{"0:v"}, Filters: []Filter{f}, Outputs: []string{"a"}},
			{Inputs: []string{"a", "a"}, Filters: []Filter{f}, Outputs: []string{"out"}},
		}}
		assert.Error(t, g.Validate("out"))
	})

	t.Run("missing sink", func(t *testing.T) {
		g := Graph{Chains: []Chain{{Inputs: []string{"0:v"}, Filters: []Filter{f}, Outputs: []string{"v"}}}}
		assert.Error(t, g.Validate("v", "a"))
	})
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, `C\:\\Windows\\Fonts\\arial.ttf`, EscapePath(`C:\Windows\Fonts\arial.ttf`))
	assert.Equal(t, "/tmp/it'\\''s.txt", EscapePath("/tmp/it's.txt"))
}

func TestCurves(t *testing.T) {
	assert.Equal(t, 1.5, Lerp(1, 2, 0.5))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.0, EaseOutQuad(0))
	assert.Equal(t, 1.0, EaseOutQuad(1))
	assert.Equal(t, 0.75, EaseOutQuad(0.5))
	assert.Equal(t, 0.0, Progress(5, 0))
	assert.Equal(t, 0.5, Progress(5, 10))
}
