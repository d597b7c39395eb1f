package dynamo

import (
	"fmt"
	"sort"
)

// Params is the flat set of named options every component reads. Values are
// not validated beyond the defensive clamping done where they are consumed.
type Params struct {
	CanvasWidth  float64
	CanvasHeight float64

	MaxBubbles  int
	MinLifespan float64
	MaxLifespan float64
	MinVelocity float64
	MaxVelocity float64
	MinSize     float64
	MaxSize     float64

	BuoyancyStrength   float64
	AirResistance      float64
	WindStrength       float64
	BreathingFrequency float64
	BreathingAmplitude float64
	NoiseIntensity     float64

	MaxDisplayedItems int
	RotationCooldown  float64
	HistorySize       int
	RecencyWeight     float64
	PopularityWeight  float64
	TypeBalanceWeight float64
	RandomWeight      float64

	MinDistance          float64
	MaxAttempts          int
	PerformanceThreshold int
	BatchSize            int
	ReducedAttempts      int
}

func DefaultParams() Params {
	return Params{
		CanvasWidth:  1280,
		CanvasHeight: 720,

		MaxBubbles:  14,
		MinLifespan: 10,
		MaxLifespan: 18,
		MinVelocity: 6,
		MaxVelocity: 48,
		MinSize:     28,
		MaxSize:     72,

		BuoyancyStrength:   4,
		AirResistance:      0.995,
		WindStrength:       6,
		BreathingFrequency: 0.35,
		BreathingAmplitude: 0.06,
		NoiseIntensity:     18,

		MaxDisplayedItems: 14,
		RotationCooldown:  45,
		HistorySize:       32,
		RecencyWeight:     0.4,
		PopularityWeight:  0.25,
		TypeBalanceWeight: 0.25,
		RandomWeight:      0.1,

		MinDistance:          8,
		MaxAttempts:          8,
		PerformanceThreshold: 40,
		BatchSize:            16,
		ReducedAttempts:      3,
	}
}

type paramRef struct {
	f *float64
	i *int
}

func (p *Params) ref(name string) (paramRef, bool) {
	switch name {
	case "canvasWidth":
		return paramRef{f: &p.CanvasWidth}, true
	case "canvasHeight":
		return paramRef{f: &p.CanvasHeight}, true
	case "maxBubbles":
		return paramRef{i: &p.MaxBubbles}, true
	case "minLifespan":
		return paramRef{f: &p.MinLifespan}, true
	case "maxLifespan":
		return paramRef{f: &p.MaxLifespan}, true
	case "minVelocity":
		return paramRef{f: &p.MinVelocity}, true
	case "maxVelocity":
		return paramRef{f: &p.MaxVelocity}, true
	case "minSize":
		return paramRef{f: &p.MinSize}, true
	case "maxSize":
		return paramRef{f: &p.MaxSize}, true
	case "buoyancyStrength":
		return paramRef{f: &p.BuoyancyStrength}, true
	case "airResistance":
		return paramRef{f: &p.AirResistance}, true
	case "windStrength":
		return paramRef{f: &p.WindStrength}, true
	case "breathingFrequency":
		return paramRef{f: &p.BreathingFrequency}, true
	case "breathingAmplitude":
		return paramRef{f: &p.BreathingAmplitude}, true
	case "noiseIntensity":
		return paramRef{f: &p.NoiseIntensity}, true
	case "maxDisplayedItems":
		return paramRef{i: &p.MaxDisplayedItems}, true
	case "rotationCooldown":
		return paramRef{f: &p.RotationCooldown}, true
	case "historySize":
		return paramRef{i: &p.HistorySize}, true
	case "recencyWeight":
		return paramRef{f: &p.RecencyWeight}, true
	case "popularityWeight":
		return paramRef{f: &p.PopularityWeight}, true
	case "typeBalanceWeight":
		return paramRef{f: &p.TypeBalanceWeight}, true
	case "randomWeight":
		return paramRef{f: &p.RandomWeight}, true
	case "minDistance":
		return paramRef{f: &p.MinDistance}, true
	case "maxAttempts":
		return paramRef{i: &p.MaxAttempts}, true
	case "performanceThreshold":
		return paramRef{i: &p.PerformanceThreshold}, true
	case "batchSize":
		return paramRef{i: &p.BatchSize}, true
	case "reducedAttempts":
		return paramRef{i: &p.ReducedAttempts}, true
	}
	return paramRef{}, false
}

// ParamNames lists every option accepted by Get, Set and Apply, sorted.
func ParamNames() []string {
	names := []string{
		"canvasWidth", "canvasHeight", "maxBubbles", "minLifespan", "maxLifespan",
		"minVelocity", "maxVelocity", "minSize", "maxSize", "buoyancyStrength",
		"airResistance", "windStrength", "breathingFrequency", "breathingAmplitude",
		"noiseIntensity", "maxDisplayedItems", "rotationCooldown", "historySize",
		"recencyWeight", "popularityWeight", "typeBalanceWeight", "randomWeight",
		"minDistance", "maxAttempts", "performanceThreshold", "batchSize", "reducedAttempts",
	}
	sort.Strings(names)
	return names
}

// Get returns the named option as a float.
func (p Params) Get(name string) (float64, error) {
	r, ok := p.ref(name)
	if !ok {
		return 0, &ParamError{Name: name, Wrapped: ErrUnknownParam}
	}
	if r.i != nil {
		return float64(*r.i), nil
	}
	return *r.f, nil
}

// Set assigns one option. Integer options are truncated.
func (p *Params) Set(name string, value float64) error {
	r, ok := p.ref(name)
	if !ok {
		return &ParamError{Name: name, Wrapped: ErrUnknownParam}
	}
	if r.i != nil {
		*r.i = int(value)
		return nil
	}
	*r.f = value
	return nil
}

// GetParams returns every option keyed by name.
func (p Params) GetParams() map[string]float64 {
	out := make(map[string]float64)
	for _, name := range ParamNames() {
		v, _ := p.Get(name)
		out[name] = v
	}
	return out
}

// Apply performs a partial update. An unknown name rejects the whole patch.
func (p *Params) Apply(patch map[string]float64) error {
	for name := range patch {
		if _, ok := p.ref(name); !ok {
			return fmt.Errorf("apply params: %w", &ParamError{Name: name, Wrapped: ErrUnknownParam})
		}
	}
	for name, v := range patch {
		_ = p.Set(name, v)
	}
	return nil
}

// Bounds returns lo, hi in order regardless of how they were configured.
func Bounds(lo, hi float64) (float64, float64) {
	if lo > hi {
		return hi, lo
	}
	return lo, hi
}

// Clamp limits v to [lo, hi], swapping misordered bounds.
func Clamp(v, lo, hi float64) float64 {
	lo, hi = Bounds(lo, hi)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
