package video

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canvas is the output frame size of a render.
type Canvas struct {
	Width, Height int
}

// DefaultCanvas is used when the requested geometry cannot be understood.
var DefaultCanvas = Canvas{Width: 1920, Height: 1080}

var aspectPresets = map[string]Canvas{
	"16:9": {1920, 1080},
	"9:16": {1080, 1920},
	"1:1":  {1080, 1080},
	"4:3":  {1440, 1080},
	"3:4":  {1080, 1440},
}

// ResolveCanvas maps an aspect tag to pixels. Unknown tags fall back to the
// "WxH" resolution string (or the tag itself when resolution is empty), then
// to DefaultCanvas. It never fails.
func ResolveCanvas(aspect, resolution string) Canvas {
	if c, ok := aspectPresets[strings.TrimSpace(aspect)]; ok {
		return c
	}
	if resolution == "" {
		resolution = aspect
	}
	if c, ok := ParseResolution(resolution); ok {
		return c
	}
	return DefaultCanvas
}

// ParseResolution parses "<W>x<H>" with positive integers.
func ParseResolution(s string) (Canvas, bool) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Canvas{}, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return Canvas{}, false
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return Canvas{}, false
	}
	return Canvas{Width: width, Height: height}, true
}

// Orientation classifies a canvas by its width/height ratio.
type Orientation int

const (
	Portrait Orientation = iota
	Square
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Square:
		return "square"
	}
	return "landscape"
}

func (c Canvas) Orientation() Orientation {
	ratio := float64(c.Width) / float64(c.Height)
	switch {
	case ratio < 0.8:
		return Portrait
	case ratio <= 1.2:
		return Square
	default:
		return Landscape
	}
}

// Short is the smaller side.
func (c Canvas) Short() int {
	return min(c.Width, c.Height)
}

// Scale multiplies both sides by f.
func (c Canvas) Scale(f float64) Canvas {
	return Canvas{
		Width:  int(math.Round(float64(c.Width) * f)),
		Height: int(math.Round(float64(c.Height) * f)),
	}
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}
