package metrics

import (
	"context"
	"io"
	"log"
	"math"
	"testing"

	"github.com/san-kum/lyricfield/internal/collision"
	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/tracker"
)

func frameWith(ids ...string) engine.Frame {
	f := engine.Frame{Stats: tracker.Stats{TotalContent: 4}}
	for _, id := range ids {
		f.Bubbles = append(f.Bubbles, dynamo.BubbleView{ContentID: id})
	}
	return f
}

func TestPopulation(t *testing.T) {
	p := NewPopulation()
	if p.Value() != 0 {
		t.Errorf("empty value = %v", p.Value())
	}
	p.Observe(frameWith("a", "b"))
	p.Observe(frameWith("a", "b", "c", "d"))
	if p.Value() != 3 {
		t.Errorf("value = %v, want 3", p.Value())
	}
	p.Reset()
	if p.Value() != 0 {
		t.Errorf("after reset value = %v", p.Value())
	}
}

func TestOverlap(t *testing.T) {
	o := NewOverlap()
	o.Observe(engine.Frame{Collision: collision.Report{Unresolved: 2}})
	o.Observe(engine.Frame{})
	if o.Value() != 1 {
		t.Errorf("value = %v, want 1", o.Value())
	}
}

func TestCoverage(t *testing.T) {
	c := NewCoverage()
	c.Observe(frameWith("a", "b"))
	c.Observe(frameWith("b", "c"))
	if math.Abs(c.Value()-0.75) > 1e-9 {
		t.Errorf("value = %v, want 0.75", c.Value())
	}
	c.Reset()
	if c.Value() != 0 {
		t.Errorf("after reset value = %v", c.Value())
	}
}

func TestTypeBalance(t *testing.T) {
	all := content.TypeCounts{Song: 3, Person: 3, Tag: 3}
	tests := []struct {
		name     string
		avail    content.TypeCounts
		exposure content.TypeCounts
		want     float64
	}{
		{"even", all, content.TypeCounts{Song: 5, Person: 5, Tag: 5}, 1},
		{"single type", all, content.TypeCounts{Song: 9}, 0},
		{"one type present", content.TypeCounts{Tag: 4}, content.TypeCounts{Tag: 7}, 1},
		{"nothing selected", all, content.TypeCounts{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTypeBalance()
			b.Observe(engine.Frame{Stats: tracker.Stats{ContentByType: tt.avail, ExposureByType: tt.exposure}})
			if math.Abs(b.Value()-tt.want) > 1e-9 {
				t.Errorf("value = %v, want %v", b.Value(), tt.want)
			}
		})
	}
}

func TestDefaultMetricsWithEngine(t *testing.T) {
	p := dynamo.DefaultParams()
	p.MaxBubbles, p.MaxDisplayedItems = 3, 3
	p.MinLifespan, p.MaxLifespan = 1, 2
	e := engine.New(p, engine.WithSeed(4), engine.WithLogger(log.New(io.Discard, "", 0)))
	for _, m := range Default() {
		e.AddMetric(m)
	}
	e.Initialize(content.Catalog{Tags: []string{"a", "b", "c", "d", "e", "f"}})

	if _, err := e.RunFor(context.Background(), 10, 0.1); err != nil {
		t.Fatal(err)
	}
	got := e.Metrics()
	if len(got) != 4 {
		t.Fatalf("metrics = %v", got)
	}
	if got["population"] <= 0 || got["population"] > 3 {
		t.Errorf("population = %v", got["population"])
	}
	if got["coverage"] != 1 {
		t.Errorf("coverage = %v, want every tag shown", got["coverage"])
	}
	if got["type_balance"] != 1 {
		t.Errorf("type_balance = %v, want 1 for a single type", got["type_balance"])
	}
}
