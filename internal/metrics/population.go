package metrics

import "github.com/san-kum/lyricfield/internal/engine"

// Population is the mean number of live bubbles per frame.
type Population struct {
	name    string
	sum     float64
	samples int
}

func NewPopulation() *Population {
	return &Population{name: "population"}
}

func (p *Population) Name() string { return p.name }

func (p *Population) Observe(f engine.Frame) {
	p.sum += float64(len(f.Bubbles))
	p.samples++
}

func (p *Population) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

func (p *Population) Reset() {
	p.sum = 0
	p.samples = 0
}

// Overlap is the mean number of bubbles left overlapping after the
// collision pass.
type Overlap struct {
	name    string
	sum     float64
	samples int
}

func NewOverlap() *Overlap {
	return &Overlap{name: "overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(f engine.Frame) {
	o.sum += float64(f.Collision.Unresolved)
	o.samples++
}

func (o *Overlap) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return o.sum / float64(o.samples)
}

func (o *Overlap) Reset() {
	o.sum = 0
	o.samples = 0
}
