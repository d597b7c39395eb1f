package optim

import (
	"context"
	"fmt"
	"maps"
	"math"
)

type Goal int

const (
	Maximize Goal = iota
	Minimize
)

func (g Goal) better(a, b float64) bool {
	if g == Minimize {
		return a < b
	}
	return a > b
}

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64 `json:"params"`
	Score  float64            `json:"score"`
}

type SearchResult struct {
	Best   map[string]float64 `json:"best"`
	Score  float64            `json:"score"`
	Points []Point            `json:"points"`
}

// GridSearch evaluates every combination of the given parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Combinations lists the grid in row-major order, last parameter fastest.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.expand(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, maps.Clone(current))
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.expand(depth+1, current, out)
	}
	delete(current, name)
}

// Search scores each combination by the mean of metricName over seeds runs
// starting at seedStart. Ties keep the earlier combination.
func (g *GridSearch) Search(ctx context.Context, s Session, metricName string, goal Goal, seeds int, seedStart int64) (SearchResult, error) {
	if len(g.paramNames) != len(g.ranges) {
		return SearchResult{}, fmt.Errorf("grid search: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	res := SearchResult{Score: math.Inf(1)}
	if goal == Maximize {
		res.Score = math.Inf(-1)
	}

	for _, combo := range g.Combinations() {
		trials, err := NewEnsemble(s, seeds, seedStart).Run(ctx, combo)
		if err != nil {
			return SearchResult{}, fmt.Errorf("grid search %v: %w", combo, err)
		}
		score, ok := Mean(trials)[metricName]
		if !ok {
			return SearchResult{}, fmt.Errorf("grid search: unknown metric %q", metricName)
		}
		res.Points = append(res.Points, Point{Params: combo, Score: score})
		if res.Best == nil || goal.better(score, res.Score) {
			res.Best, res.Score = combo, score
		}
	}
	return res, nil
}
