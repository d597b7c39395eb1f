package metrics

import (
	"math"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/engine"
)

// TypeBalance measures how evenly selections spread over the content types
// present in the catalog: 1 is perfectly even, 0 is a single type. It is
// the normalised Shannon entropy of the latest exposure counts.
type TypeBalance struct {
	name  string
	value float64
}

func NewTypeBalance() *TypeBalance {
	return &TypeBalance{name: "type_balance"}
}

func (b *TypeBalance) Name() string { return b.name }

func (b *TypeBalance) Observe(f engine.Frame) {
	exp, avail := f.Stats.ExposureByType, f.Stats.ContentByType
	total := float64(exp.Total())
	present := 0
	h := 0.0
	for _, t := range content.AllTypes {
		if avail.Get(t) == 0 {
			continue
		}
		present++
		if n := float64(exp.Get(t)); n > 0 {
			q := n / total
			h -= q * math.Log(q)
		}
	}
	if present < 2 || total == 0 {
		b.value = 1
		return
	}
	b.value = h / math.Log(float64(present))
}

func (b *TypeBalance) Value() float64 { return b.value }

func (b *TypeBalance) Reset() { b.value = 0 }

// Coverage is the share of the catalog shown at least once during the run.
type Coverage struct {
	name  string
	seen  map[string]struct{}
	total int
}

func NewCoverage() *Coverage {
	return &Coverage{name: "coverage", seen: make(map[string]struct{})}
}

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) Observe(f engine.Frame) {
	c.total = f.Stats.TotalContent
	for _, b := range f.Bubbles {
		c.seen[b.ContentID] = struct{}{}
	}
}

func (c *Coverage) Value() float64 {
	if c.total == 0 {
		return 0
	}
	return math.Min(1, float64(len(c.seen))/float64(c.total))
}

func (c *Coverage) Reset() {
	clear(c.seen)
	c.total = 0
}

// Default returns the metric set recorded by headless runs.
func Default() []engine.Metric {
	return []engine.Metric{NewPopulation(), NewTypeBalance(), NewCoverage(), NewOverlap()}
}
