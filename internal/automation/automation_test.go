package automation

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/metrics"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testEngine() *engine.Engine {
	p := dynamo.DefaultParams()
	p.MaxBubbles, p.MaxDisplayedItems = 2, 2
	e := engine.New(p, engine.WithSeed(5), engine.WithLogger(log.New(io.Discard, "", 0)))
	for _, m := range metrics.Default() {
		e.AddMetric(m)
	}
	e.Initialize(content.Catalog{Tags: []string{"a", "b", "c", "d", "e", "f"}})
	return e
}

func TestLoadScenario(t *testing.T) {
	path := writeFile(t, "s.yaml", `
name: ramp
steps:
  - name: quiet
    duration: 1
  - duration: 2
    dt: 0.25
    params:
      maxBubbles: 5
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "ramp" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].Params["maxBubbles"] != 5 || sc.Steps[1].Dt != 0.25 {
		t.Errorf("unexpected step %+v", sc.Steps[1])
	}

	if _, err := LoadScenario(writeFile(t, "empty.yaml", "name: nothing\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := LoadScenario(writeFile(t, "bad.yaml", "steps: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestRunScenario(t *testing.T) {
	catPath := writeFile(t, "more.yaml", "tags: [x, y, z, w, v, u, s, r]\n")
	sc := &Scenario{Steps: []ScenarioStep{
		{Name: "small", Duration: 1},
		{Duration: 1, Params: map[string]float64{"maxBubbles": 4, "maxDisplayedItems": 4}},
		{Name: "swap", Duration: 1, Dt: 0.25, Catalog: catPath},
	}}

	results, err := RunScenario(context.Background(), testEngine(), sc, 0.125)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Name != "small" || results[1].Name != "step 2" {
		t.Errorf("names = %s, %s", results[0].Name, results[1].Name)
	}
	if results[0].Metrics["population"] != 2 {
		t.Errorf("first step population = %f, want 2", results[0].Metrics["population"])
	}
	if results[1].Stats.Displayed != 4 {
		t.Errorf("second step displayed = %d, want 4", results[1].Stats.Displayed)
	}
	if results[2].Stats.TotalContent != 8 {
		t.Errorf("catalog swap not applied, total = %d", results[2].Stats.TotalContent)
	}
	if results[2].Time <= results[1].Time {
		t.Error("session time should keep advancing across steps")
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Duration: 0.5},
		{Duration: 0.5, Params: map[string]float64{"gravity": 9.8}},
		{Duration: 0.5},
	}}
	results, err := RunScenario(context.Background(), testEngine(), sc, 0.125)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 completed step, got %d", len(results))
	}
}
