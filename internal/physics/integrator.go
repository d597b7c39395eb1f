package physics

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/lyricfield/internal/dynamo"
)

const (
	// MaxStep bounds a single integration step in seconds.
	MaxStep = 0.1

	refFPS = 60.0

	windFreq   = 0.05 // turns per second
	wanderRate = 0.25 // noise field units per second
	noiseScale = 0.004
)

// Integrator owns the noise field and trig table used by every bubble.
type Integrator struct {
	params dynamo.Params
	noise  *perlin.Perlin
	trig   *dynamo.SineTable
}

func New(params dynamo.Params, seed int64) *Integrator {
	return &Integrator{
		params: params,
		noise:  perlin.NewPerlin(2, 2, 3, seed),
		trig:   dynamo.DefaultSineTable,
	}
}

func (in *Integrator) SetParams(p dynamo.Params) { in.params = p }

// Wind returns the horizontal wind acceleration at time t.
func (in *Integrator) Wind(t float64) float64 {
	gust := 0.7*in.trig.Sin(windFreq*t) + 0.3*in.trig.Sin(windFreq*2.7*t+0.13)
	return in.params.WindStrength * gust
}

// Step advances b by dt seconds at session time t. Non-positive dt is a
// no-op and dt above MaxStep is clamped.
func (in *Integrator) Step(b *dynamo.Bubble, dt, t float64) {
	if dt <= 0 {
		return
	}
	if dt > MaxStep {
		dt = MaxStep
	}
	p := in.params

	b.VY -= p.BuoyancyStrength * dt

	drag := math.Pow(dynamo.Clamp(p.AirResistance, 0, 1), dt*refFPS)
	b.VX *= drag
	b.VY *= drag

	b.VX += in.Wind(t) * dt

	if p.NoiseIntensity != 0 {
		nx, ny := in.wander(b, t)
		b.VX += p.NoiseIntensity * nx * dt
		b.VY += p.NoiseIntensity * ny * dt
	}

	ClampVelocity(b, p.MinVelocity, p.MaxVelocity)

	b.X += b.VX * dt
	b.Y += b.VY * dt
	in.constrain(b)

	b.Breath = 1 + p.BreathingAmplitude*in.trig.Sin(p.BreathingFrequency*t+b.Seed)
}

func (in *Integrator) wander(b *dynamo.Bubble, t float64) (float64, float64) {
	u := b.Seed*97 + t*wanderRate
	nx := in.noise.Noise2D(u, b.Y*noiseScale)
	ny := in.noise.Noise2D(b.X*noiseScale, u+31.7)
	return 2 * nx, 2 * ny
}

// constrain reflects off the side walls and wraps vertically so a bubble
// leaving through the top re-enters from the bottom.
func (in *Integrator) constrain(b *dynamo.Bubble) {
	w, h := in.params.CanvasWidth, in.params.CanvasHeight
	r := b.Radius()

	if w > 2*r {
		if b.X < r {
			b.X = r
			b.VX = math.Abs(b.VX)
		} else if b.X > w-r {
			b.X = w - r
			b.VX = -math.Abs(b.VX)
		}
	} else {
		b.X = w / 2
	}

	if h > 0 {
		if b.Y+r < 0 {
			b.Y = h + r
		} else if b.Y-r > h {
			b.Y = -r
		}
	}
}

// ClampVelocity scales the velocity so its magnitude lies in [lo, hi]. A
// bubble at rest is given the minimum speed straight up.
func ClampVelocity(b *dynamo.Bubble, lo, hi float64) {
	lo, hi = dynamo.Bounds(lo, hi)
	if lo < 0 {
		lo = 0
	}
	speed := b.Speed()
	switch {
	case speed > hi && speed > 0:
		k := hi / speed
		b.VX *= k
		b.VY *= k
	case speed < lo:
		if speed < 1e-9 {
			b.VX, b.VY = 0, -lo
			return
		}
		k := lo / speed
		b.VX *= k
		b.VY *= k
	}
}
