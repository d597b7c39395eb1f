package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/lyricfield/internal/content"
)

// Phase is the lifecycle stage of a bubble.
type Phase uint8

const (
	PhaseSpawning Phase = iota
	PhaseSteady
	PhaseFading
)

func (p Phase) String() string {
	switch p {
	case PhaseSpawning:
		return "spawning"
	case PhaseSteady:
		return "steady"
	case PhaseFading:
		return "fading"
	}
	return "unknown"
}

// MarshalText renders the phase by name in JSON and YAML.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for _, v := range []Phase{PhaseSpawning, PhaseSteady, PhaseFading} {
		if v.String() == string(b) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("dynamo: unknown phase %q", b)
}

// Bubble is one animated content item. Size is fixed at spawn; the visible
// radius is Size*Scale.
type Bubble struct {
	ID           string
	ContentID    string
	Type         content.Type
	Name         string
	X, Y         float64
	VX, VY       float64
	Size         float64
	Color        string
	Opacity      float64
	Scale        float64
	Lifespan     float64
	Age          float64
	RelatedCount int
	Phase        Phase

	// Seed offsets the bubble into the shared noise field and breathing wave.
	Seed float64
	// Breath is the current breathing multiplier (1 ± amplitude).
	Breath float64
	// Pulse is the remaining click pulse time in seconds.
	Pulse float64
}

func (b *Bubble) Speed() float64 { return math.Hypot(b.VX, b.VY) }

func (b *Bubble) Radius() float64 { return b.Size }

func (b *Bubble) Expired() bool { return b.Age >= b.Lifespan }

// View copies the renderer-facing fields.
func (b *Bubble) View() BubbleView {
	return BubbleView{
		ID:           b.ID,
		ContentID:    b.ContentID,
		Type:         b.Type,
		Name:         b.Name,
		X:            b.X,
		Y:            b.Y,
		VX:           b.VX,
		VY:           b.VY,
		Size:         b.Size,
		Radius:       b.Size * b.Scale,
		Color:        b.Color,
		Opacity:      b.Opacity,
		Lifespan:     b.Lifespan,
		Age:          b.Age,
		RelatedCount: b.RelatedCount,
		Phase:        b.Phase,
	}
}

// BubbleView is the read-only snapshot of a bubble handed to renderers.
type BubbleView struct {
	ID           string       `json:"id"`
	ContentID    string       `json:"contentId"`
	Type         content.Type `json:"type"`
	Name         string       `json:"name"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	VX           float64      `json:"vx"`
	VY           float64      `json:"vy"`
	Size         float64      `json:"size"`
	Radius       float64      `json:"radius"`
	Color        string       `json:"color"`
	Opacity      float64      `json:"opacity"`
	Lifespan     float64      `json:"lifespan"`
	Age          float64      `json:"age"`
	RelatedCount int          `json:"relatedCount"`
	Phase        Phase        `json:"phase"`
}
