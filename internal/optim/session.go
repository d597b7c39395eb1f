package optim

import (
	"context"
	"io"
	"log"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/tracker"
)

// Trial is the outcome of one headless session.
type Trial struct {
	Seed    int64              `json:"seed"`
	Patch   map[string]float64 `json:"patch,omitempty"`
	Metrics map[string]float64 `json:"metrics"`
	Stats   tracker.Stats      `json:"stats"`
}

// Session describes a headless run. Metrics is called once per run so every
// engine gets its own accumulators.
type Session struct {
	Params   dynamo.Params
	Catalog  content.Catalog
	Duration float64
	Dt       float64
	Metrics  func() []engine.Metric
}

// Run plays the session once with seed, after applying patch to a copy of
// the parameters.
func (s Session) Run(ctx context.Context, seed int64, patch map[string]float64) (Trial, error) {
	p := s.Params
	if err := p.Apply(patch); err != nil {
		return Trial{}, err
	}

	e := engine.New(p, engine.WithSeed(seed), engine.WithLogger(log.New(io.Discard, "", 0)))
	if s.Metrics != nil {
		for _, m := range s.Metrics() {
			e.AddMetric(m)
		}
	}
	e.Initialize(s.Catalog)

	last, err := e.RunFor(ctx, s.Duration, s.Dt)
	if err != nil {
		return Trial{}, err
	}
	return Trial{Seed: seed, Patch: patch, Metrics: e.Metrics(), Stats: last.Stats}, nil
}
