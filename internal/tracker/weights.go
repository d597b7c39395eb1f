package tracker

import (
	"math"
	"math/rand"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
)

// rotationFloor is the rotation score of an item already in the current cycle.
const rotationFloor = 0.1

// SelectionWeight is the per-candidate score computed on each selection.
type SelectionWeight struct {
	ContentID   string  `json:"contentId"`
	Recency     float64 `json:"recency"`
	Popularity  float64 `json:"popularity"`
	TypeBalance float64 `json:"typeBalance"`
	Rotation    float64 `json:"rotation"`
	Random      float64 `json:"random"`
	Total       float64 `json:"total"`
}

// Weights are the mixing coefficients of the weighted sum.
type Weights struct {
	Recency     float64
	Popularity  float64
	TypeBalance float64
	Random      float64
}

func weightsFrom(p dynamo.Params) Weights {
	return Weights{
		Recency:     p.RecencyWeight,
		Popularity:  p.PopularityWeight,
		TypeBalance: p.TypeBalanceWeight,
		Random:      p.RandomWeight,
	}
}

// Normalized scales the weights to sum to 1. Negative entries count as 0;
// an all-zero set falls back to equal weights.
func (w Weights) Normalized() Weights {
	pos := func(v float64) float64 { return math.Max(0, v) }
	w = Weights{pos(w.Recency), pos(w.Popularity), pos(w.TypeBalance), pos(w.Random)}
	sum := w.Recency + w.Popularity + w.TypeBalance + w.Random
	if sum <= 0 {
		return Weights{0.25, 0.25, 0.25, 0.25}
	}
	return Weights{w.Recency / sum, w.Popularity / sum, w.TypeBalance / sum, w.Random / sum}
}

// scorer holds the read-only inputs of one scoring pass.
type scorer struct {
	weights    Weights
	maxRelated int
	now        float64
	cooldown   float64
	history    history
	rotation   RotationState
	exposure   exposure
	present    []content.Type
}

// recency is 1 for ids outside the recent window and recovers toward 1 as
// the last showing ages.
func (s scorer) recency(id string) float64 {
	at, rank, ok := s.history.lastSeen(id)
	if !ok {
		return 1
	}
	if s.cooldown > 0 {
		age := math.Max(0, s.now-at)
		return 1 - math.Exp(-3*age/s.cooldown)
	}
	return float64(rank) / float64(s.history.limit)
}

func (s scorer) popularity(related int) float64 {
	if s.maxRelated <= 0 || related <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(float64(related))/math.Log1p(float64(s.maxRelated)))
}

func (s scorer) typeBalance(t content.Type) float64 {
	if len(s.present) == 0 {
		return 0
	}
	score := 0.0
	if target, ok := s.exposure.target(s.present); ok && target == t {
		score += 0.5
	}
	deficit := 0.0
	if total := s.exposure.counts.Total(); total > 0 {
		expected := 1 / float64(len(s.present))
		actual := float64(s.exposure.counts.Get(t)) / float64(total)
		deficit = expected - actual
	}
	return score + 0.5*dynamo.Clamp(0.5+deficit, 0, 1)
}

func (s scorer) rotationScore(id string) float64 {
	if s.rotation.Contains(id) {
		return rotationFloor
	}
	return 1
}

// score computes the weight of one candidate. A nil rng leaves out the
// random jitter term.
func (s scorer) score(it content.Item, rng *rand.Rand) SelectionWeight {
	w := SelectionWeight{
		ContentID:   it.ID,
		Recency:     s.recency(it.ID),
		Popularity:  s.popularity(it.RelatedCount),
		TypeBalance: s.typeBalance(it.Type),
		Rotation:    s.rotationScore(it.ID),
	}
	if rng != nil {
		w.Random = rng.Float64()
	}
	sum := s.weights.Recency*w.Recency +
		s.weights.Popularity*w.Popularity +
		s.weights.TypeBalance*w.TypeBalance +
		s.weights.Random*w.Random
	w.Total = w.Rotation * sum
	return w
}

// draw picks an index with probability proportional to Total. An all-zero
// pool is drawn uniformly.
func draw(weights []SelectionWeight, rng *rand.Rand) int {
	sum := 0.0
	for _, w := range weights {
		if w.Total > 0 {
			sum += w.Total
		}
	}
	if sum <= 0 {
		return rng.Intn(len(weights))
	}
	r := rng.Float64() * sum
	for i, w := range weights {
		if w.Total <= 0 {
			continue
		}
		r -= w.Total
		if r < 0 {
			return i
		}
	}
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i].Total > 0 {
			return i
		}
	}
	return len(weights) - 1
}
