package captions

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/scene2video/internal/renderer"
)

const (
	// WordsPerChunk is how many words one caption card shows.
	WordsPerChunk = 3
	// FadeDuration is the nominal fade-in/out of a card.
	FadeDuration = 0.2
)

// Chunk is one caption card shown during [Start, End).
type Chunk struct {
	Text  string
	Start float64
	End   float64
}

// Ramp is the fade length, at most half the card so the ramps never overlap.
func (c Chunk) Ramp() float64 {
	return math.Min(FadeDuration, (c.End-c.Start)/2)
}

// Alpha is the card opacity at time t.
func (c Chunk) Alpha(t float64) float64 {
	r := c.Ramp()
	switch {
	case t < c.Start || t >= c.End || r <= 0:
		return 0
	case t < c.Start+r:
		return (t - c.Start) / r
	case t < c.End-r:
		return 1
	default:
		return (c.End - t) / r
	}
}

// AlphaExpr is Alpha as an engine expression over t.
func (c Chunk) AlphaExpr() string {
	s, e, r := renderer.Format(c.Start), renderer.Format(c.End), renderer.Format(c.Ramp())
	return fmt.Sprintf("if(lt(t,%[1]s),0,if(lt(t,%[1]s+%[3]s),(t-%[1]s)/%[3]s,if(lt(t,%[2]s-%[3]s),1,if(lt(t,%[2]s),(%[2]s-t)/%[3]s,0))))", s, e, r)
}

// EnableExpr limits drawing to the card's interval.
func (c Chunk) EnableExpr() string {
	return fmt.Sprintf("between(t,%s,%s)", renderer.Format(c.Start), renderer.Format(c.End))
}

// Schedule splits text into cards of WordsPerChunk words with equal-width,
// contiguous intervals covering [0, duration).
func Schedule(text string, duration float64) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 || duration <= 0 {
		return nil
	}

	n := (len(words) + WordsPerChunk - 1) / WordsPerChunk
	step := duration / float64(n)
	chunks := make([]Chunk, n)
	for i := 0; i < n; i++ {
		lo := i * WordsPerChunk
		hi := min(lo+WordsPerChunk, len(words))
		chunks[i] = Chunk{
			Text:  strings.Join(words[lo:hi], " "),
			Start: float64(i) * step,
			End:   float64(i+1) * step,
		}
	}
	chunks[n-1].End = duration
	return chunks
}
