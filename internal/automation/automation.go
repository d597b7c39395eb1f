package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/tracker"
)

// Scenario scripts one continuous session as a sequence of phases.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep applies its params patch and optional catalog swap, then runs
// for Duration seconds.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Catalog  string             `yaml:"catalog"`
	Params   map[string]float64 `yaml:"params"`
}

// StepResult is the state at the end of one step.
type StepResult struct {
	Name    string             `json:"name"`
	Time    float64            `json:"time"`
	Stats   tracker.Stats      `json:"stats"`
	Metrics map[string]float64 `json:"metrics"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// RunScenario plays every step on e in order. Steps without a dt use
// defaultDt. Results up to the failing step are returned with the error.
func RunScenario(ctx context.Context, e *engine.Engine, scenario *Scenario, defaultDt float64) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}

		if step.Catalog != "" {
			cat, err := content.LoadCatalog(step.Catalog)
			if err != nil {
				return results, fmt.Errorf("%s: %w", name, err)
			}
			e.QueueCatalog(cat)
		}
		if len(step.Params) > 0 {
			if err := e.UpdateParams(step.Params); err != nil {
				return results, fmt.Errorf("%s: %w", name, err)
			}
		}

		dt := step.Dt
		if dt <= 0 {
			dt = defaultDt
		}
		last, err := e.RunFor(ctx, step.Duration, dt)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		results = append(results, StepResult{
			Name:    name,
			Time:    last.Time,
			Stats:   last.Stats,
			Metrics: e.Metrics(),
		})
	}

	return results, nil
}
