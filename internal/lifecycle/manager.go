package lifecycle

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/lyricfield/internal/collision"
	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/physics"
	"github.com/san-kum/lyricfield/internal/tracker"
)

const (
	// SpawnDuration is the fade and scale in time, capped at SpawnShare of
	// the lifespan.
	SpawnDuration = 0.6
	SpawnShare    = 0.4
	// FadeStart is the share of the lifespan after which a bubble fades out.
	FadeStart = 0.8

	ClickPulseDuration  = 0.45
	ClickPulseAmplitude = 0.25
)

type Manager struct {
	params   dynamo.Params
	tracker  *tracker.Tracker
	physics  *physics.Integrator
	resolver *collision.Resolver
	styler   Styler
	rng      *rand.Rand

	bubbles []*dynamo.Bubble
	index   map[string]*dynamo.Bubble

	elapsed       float64
	lastCollision collision.Report
}

type Option func(*Manager)

func WithStyler(s Styler) Option {
	return func(m *Manager) {
		if s != nil {
			m.styler = s
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// New creates a manager spawning bubbles for tr's selections.
func New(params dynamo.Params, tr *tracker.Tracker, opts ...Option) *Manager {
	m := &Manager{
		params:   params,
		tracker:  tr,
		resolver: collision.New(collision.ConfigFromParams(params)),
		styler:   DefaultStyler,
		index:    make(map[string]*dynamo.Bubble),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m.physics = physics.New(params, m.rng.Int63())
	return m
}

func (m *Manager) SetParams(p dynamo.Params) {
	m.params = p
	m.physics.SetParams(p)
	m.resolver.SetConfig(collision.ConfigFromParams(p))
}

// SetStyler changes the color of bubbles spawned from now on.
func (m *Manager) SetStyler(s Styler) {
	if s != nil {
		m.styler = s
	}
}

func (m *Manager) Len() int { return len(m.bubbles) }

func (m *Manager) Elapsed() float64 { return m.elapsed }

func (m *Manager) LastCollision() collision.Report { return m.lastCollision }

// Target is the population MaintainBubbleCount aims for.
func (m *Manager) Target() int {
	n := m.params.MaxBubbles
	if d := m.params.MaxDisplayedItems; d > 0 && d < n {
		n = d
	}
	return max(0, n)
}

// MaintainBubbleCount spawns bubbles until the target population is reached
// or the tracker runs out of content. It returns the number spawned.
func (m *Manager) MaintainBubbleCount() int {
	target := m.Target()
	spawned := 0
	for attempts := 0; len(m.bubbles) < target && attempts < target; attempts++ {
		if _, err := m.GenerateBubble(); err != nil {
			break
		}
		spawned++
	}
	return spawned
}

// GenerateBubble spawns one bubble for the tracker's next selection.
func (m *Manager) GenerateBubble() (*dynamo.Bubble, error) {
	if m.tracker.TotalContent() == 0 {
		return nil, dynamo.ErrEmptyRegistry
	}
	it, ok := m.tracker.SelectNextContent()
	if !ok {
		return nil, dynamo.ErrNoContentAvailable
	}

	id := uuid.NewString()
	if !m.tracker.TrackDisplayedItem(it.ID, id, it.Type) {
		return nil, fmt.Errorf("track %s: %w", it.ID, dynamo.ErrNoContentAvailable)
	}

	p := m.params
	size := m.sizeFor(it.RelatedCount)
	x, y, _ := m.resolver.FindPlacement(size, m.bubbles, m.rng)

	minL, maxL := dynamo.Bounds(p.MinLifespan, p.MaxLifespan)
	minV, maxV := dynamo.Bounds(p.MinVelocity, p.MaxVelocity)
	speed := minV + (maxV-minV)*0.5*m.rng.Float64()
	heading := 0.5 + 0.25*(m.rng.Float64()-0.5) // mostly upward, in turns

	b := &dynamo.Bubble{
		ID:           id,
		ContentID:    it.ID,
		Type:         it.Type,
		Name:         it.Name,
		X:            x,
		Y:            y,
		VX:           speed * dynamo.DefaultSineTable.Sin(heading),
		VY:           speed * dynamo.DefaultSineTable.Cos(heading),
		Size:         size,
		Color:        m.styler.Resolve(it.Type, it.Roles()),
		Lifespan:     minL + (maxL-minL)*m.rng.Float64(),
		RelatedCount: it.RelatedCount,
		Phase:        dynamo.PhaseSpawning,
		Seed:         m.rng.Float64(),
		Breath:       1,
	}
	m.bubbles = append(m.bubbles, b)
	m.index[id] = b
	return b, nil
}

// sizeFor maps a related count onto [MinSize, MaxSize] on a log scale.
func (m *Manager) sizeFor(related int) float64 {
	lo, hi := dynamo.Bounds(m.params.MinSize, m.params.MaxSize)
	frac := 0.0
	if maxRel := m.tracker.MaxRelated(); maxRel > 0 && related > 0 {
		frac = math.Log1p(float64(related)) / math.Log1p(float64(maxRel))
	}
	return dynamo.Clamp(lo+(hi-lo)*frac, lo, hi)
}

// UpdateFrame advances every bubble by dt seconds: physics, one collision
// pass, then aging. Expired bubbles are untracked and removed. It returns
// the number removed.
func (m *Manager) UpdateFrame(dt float64) int {
	if dt <= 0 {
		return 0
	}
	m.tracker.Advance(dt)
	m.elapsed += dt

	for _, b := range m.bubbles {
		m.physics.Step(b, dt, m.elapsed)
	}
	m.lastCollision = m.resolver.Resolve(m.bubbles)

	removed := 0
	live := m.bubbles[:0]
	for _, b := range m.bubbles {
		b.Age += dt
		if b.Expired() {
			m.tracker.UntrackDisplayedItem(b.ID)
			delete(m.index, b.ID)
			removed++
			continue
		}
		if b.Pulse > 0 {
			b.Pulse = math.Max(0, b.Pulse-dt)
		}
		animate(b)
		live = append(live, b)
	}
	clear(m.bubbles[len(live):])
	m.bubbles = live
	return removed
}

// animate derives phase, opacity and scale from age, breathing and the click
// pulse.
func animate(b *dynamo.Bubble) {
	spawn := math.Min(SpawnDuration, SpawnShare*b.Lifespan)
	fadeAt := FadeStart * b.Lifespan

	var k, scale float64
	switch {
	case b.Age < spawn:
		b.Phase = dynamo.PhaseSpawning
		p := b.Age / spawn
		k = p * (2 - p)
		scale = k
	case b.Age >= fadeAt:
		b.Phase = dynamo.PhaseFading
		k = dynamo.Clamp(1-(b.Age-fadeAt)/(b.Lifespan-fadeAt), 0, 1)
		scale = 0.5 + 0.5*k
	default:
		b.Phase = dynamo.PhaseSteady
		k, scale = 1, 1
	}

	breath := b.Breath
	if breath == 0 {
		breath = 1
	}
	b.Opacity = dynamo.Clamp(k*(0.9+0.5*(breath-1)), 0, 1)
	b.Scale = scale * breath * pulseFactor(b.Pulse)
}

func pulseFactor(remaining float64) float64 {
	if remaining <= 0 {
		return 1
	}
	progress := 1 - remaining/ClickPulseDuration
	return 1 + ClickPulseAmplitude*dynamo.DefaultSineTable.Sin(0.5*progress)
}

// TriggerClickAnimation starts a scale pulse on the bubble. Age and
// lifespan are untouched.
func (m *Manager) TriggerClickAnimation(id string) bool {
	b, ok := m.index[id]
	if !ok {
		return false
	}
	b.Pulse = ClickPulseDuration
	return true
}

// Click pulses the bubble and returns the content item it shows.
func (m *Manager) Click(id string) (content.Item, error) {
	b, ok := m.index[id]
	if !ok {
		return content.Item{}, fmt.Errorf("click %s: %w", id, dynamo.ErrBubbleNotFound)
	}
	m.TriggerClickAnimation(id)
	it, ok := m.tracker.Lookup(b.ContentID)
	if !ok {
		return content.Item{}, fmt.Errorf("click %s: content %s: %w", id, b.ContentID, dynamo.ErrBubbleNotFound)
	}
	return it, nil
}

func (m *Manager) Bubble(id string) (dynamo.BubbleView, bool) {
	b, ok := m.index[id]
	if !ok {
		return dynamo.BubbleView{}, false
	}
	return b.View(), true
}

// Snapshot copies the live bubbles for rendering.
func (m *Manager) Snapshot() []dynamo.BubbleView {
	out := make([]dynamo.BubbleView, len(m.bubbles))
	for i, b := range m.bubbles {
		out[i] = b.View()
	}
	return out
}

// Reset untracks and drops every bubble.
func (m *Manager) Reset() {
	for _, b := range m.bubbles {
		m.tracker.UntrackDisplayedItem(b.ID)
	}
	clear(m.index)
	m.bubbles = nil
}
