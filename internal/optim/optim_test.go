package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/metrics"
)

func testSession() Session {
	return Session{
		Params:   dynamo.DefaultParams(),
		Catalog:  content.Catalog{Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
		Duration: 1,
		Dt:       0.125,
		Metrics:  metrics.Default,
	}
}

func TestEnsembleDeterministic(t *testing.T) {
	ens := NewEnsemble(testSession(), 3, 100)

	first, err := ens.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	second, err := ens.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(first) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(first))
	}
	for i := range first {
		if first[i].Seed != 100+int64(i) {
			t.Errorf("trial %d seed = %d", i, first[i].Seed)
		}
		if first[i].Stats != second[i].Stats {
			t.Errorf("trial %d not reproducible", i)
		}
	}
}

func TestEnsembleRejectsUnknownParam(t *testing.T) {
	_, err := NewEnsemble(testSession(), 2, 1).Run(context.Background(), map[string]float64{"gravity": 1})
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestMean(t *testing.T) {
	got := Mean([]Trial{
		{Metrics: map[string]float64{"coverage": 0.5, "overlap": 2}},
		{Metrics: map[string]float64{"coverage": 1, "overlap": 0}},
	})
	if got["coverage"] != 0.75 || got["overlap"] != 1 {
		t.Errorf("Mean() = %v", got)
	}
	if len(Mean(nil)) != 0 {
		t.Error("mean of nothing should be empty")
	}
}

func TestCombinations(t *testing.T) {
	g := NewGridSearch([]string{"maxBubbles", "windStrength"}, [][]float64{{2, 4}, {0, 5, 10}})
	combos := g.Combinations()
	if len(combos) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(combos))
	}
	if combos[0]["maxBubbles"] != 2 || combos[0]["windStrength"] != 0 {
		t.Errorf("first combination = %v", combos[0])
	}
	if combos[5]["maxBubbles"] != 4 || combos[5]["windStrength"] != 10 {
		t.Errorf("last combination = %v", combos[5])
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"maxBubbles"}, [][]float64{{2, 6, 4}})

	tests := []struct {
		name string
		goal Goal
		want float64
	}{
		{"maximize", Maximize, 6},
		{"minimize", Minimize, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := g.Search(context.Background(), testSession(), "population", tt.goal, 2, 1)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if res.Best["maxBubbles"] != tt.want {
				t.Errorf("best = %v, want maxBubbles %v", res.Best, tt.want)
			}
			if len(res.Points) != 3 {
				t.Errorf("expected 3 points, got %d", len(res.Points))
			}
		})
	}
}

func TestGridSearchErrors(t *testing.T) {
	s := testSession()
	if _, err := NewGridSearch([]string{"maxBubbles"}, nil).Search(context.Background(), s, "population", Maximize, 1, 1); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"maxBubbles"}, [][]float64{{2}}).Search(context.Background(), s, "energy", Maximize, 1, 1); err == nil {
		t.Error("expected error for unknown metric")
	}

	s.Metrics = func() []engine.Metric { return nil }
	if _, err := NewGridSearch(nil, nil).Search(context.Background(), s, "population", Maximize, 1, 1); err == nil {
		t.Error("expected error when the metric is not collected")
	}
}
