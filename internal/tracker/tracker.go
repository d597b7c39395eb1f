package tracker

import (
	"math/rand"
	"time"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
)

// Tracker is the stateful content scheduler. Create one per session.
type Tracker struct {
	registry *content.Registry
	params   dynamo.Params
	rng      *rand.Rand

	displayed map[string]DisplayedEntry // by content id
	byBubble  map[string]string         // bubble id -> content id
	rotation  RotationState
	history   history
	exposure  exposure

	selections int
	elapsed    float64
}

type Option func(*Tracker)

// WithRand sets the random source used for jitter and the weighted draw.
func WithRand(r *rand.Rand) Option {
	return func(t *Tracker) { t.rng = r }
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// New returns a tracker over an empty registry.
func New(params dynamo.Params, opts ...Option) *Tracker {
	t := &Tracker{
		registry:  content.Empty(),
		params:    params,
		displayed: make(map[string]DisplayedEntry),
		byBubble:  make(map[string]string),
		rotation:  newRotationState(),
		history:   newHistory(params.HistorySize),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return t
}

// Initialize rebuilds the registry from a catalog and clears displayed
// entries, rotation, history and exposure.
func (t *Tracker) Initialize(cat content.Catalog) content.BuildReport {
	reg, report := content.Build(cat)
	t.registry = reg
	t.displayed = make(map[string]DisplayedEntry)
	t.byBubble = make(map[string]string)
	t.rotation = newRotationState()
	t.history = newHistory(t.params.HistorySize)
	t.exposure = exposure{}
	t.selections = 0
	return report
}

// SetParams swaps in new selection options. The history window is resized,
// keeping the newest entries.
func (t *Tracker) SetParams(p dynamo.Params) {
	t.params = p
	t.history = t.history.resized(p.HistorySize)
}

// Advance moves the session clock forward by dt seconds.
func (t *Tracker) Advance(dt float64) {
	if dt > 0 {
		t.elapsed += dt
	}
}

func (t *Tracker) Elapsed() float64 { return t.elapsed }

func (t *Tracker) TotalContent() int { return t.registry.Len() }

func (t *Tracker) MaxRelated() int { return t.registry.MaxRelated() }

func (t *Tracker) Lookup(contentID string) (content.Item, bool) {
	return t.registry.Lookup(contentID)
}

// DisplayedContent reports which content id a bubble is tracking.
func (t *Tracker) DisplayedContent(bubbleID string) (string, bool) {
	id, ok := t.byBubble[bubbleID]
	return id, ok
}

func (t *Tracker) IsDisplayed(contentID string) bool {
	_, ok := t.displayed[contentID]
	return ok
}

// candidates returns registry items that are not displayed and, when
// excludeCycle is set, not already in the current cycle.
func (t *Tracker) candidates(excludeCycle bool) []content.Item {
	out := make([]content.Item, 0, t.registry.Len())
	for i := 0; i < t.registry.Len(); i++ {
		it := t.registry.At(i)
		if _, shown := t.displayed[it.ID]; shown {
			continue
		}
		if excludeCycle && t.rotation.Contains(it.ID) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (t *Tracker) scorer() scorer {
	return scorer{
		weights:    weightsFrom(t.params).Normalized(),
		maxRelated: t.registry.MaxRelated(),
		now:        t.elapsed,
		cooldown:   t.params.RotationCooldown,
		history:    t.history,
		rotation:   t.rotation,
		exposure:   t.exposure,
		present:    t.registry.PresentTypes(),
	}
}

// SelectNextContent draws the next item to display. It returns false when
// the registry is empty or every item is currently displayed. The chosen
// item joins the current cycle but is not marked displayed.
func (t *Tracker) SelectNextContent() (content.Item, bool) {
	if t.registry.Len() == 0 {
		return content.Item{}, false
	}

	cands := t.candidates(true)
	if len(cands) == 0 {
		if t.rotation.Size() == 0 {
			return content.Item{}, false
		}
		t.rotation = t.rotation.rotated()
		cands = t.candidates(false)
		if len(cands) == 0 {
			return content.Item{}, false
		}
	}

	sc := t.scorer()
	weights := make([]SelectionWeight, len(cands))
	for i, it := range cands {
		weights[i] = sc.score(it, t.rng)
	}
	chosen := cands[draw(weights, t.rng)]

	t.rotation = t.rotation.withSelected(chosen.ID)
	t.history = t.history.push(chosen.ID, t.elapsed)
	t.exposure = t.exposure.record(chosen.Type)
	t.selections++
	return chosen, true
}

// TrackDisplayedItem registers contentID as shown by bubbleID. It returns
// false when the content is unknown or already displayed, the bubble already
// tracks something, or the displayed set is at capacity.
func (t *Tracker) TrackDisplayedItem(contentID, bubbleID string, typ content.Type) bool {
	if _, ok := t.registry.Lookup(contentID); !ok {
		return false
	}
	if _, ok := t.displayed[contentID]; ok {
		return false
	}
	if _, ok := t.byBubble[bubbleID]; ok {
		return false
	}
	if max := t.params.MaxDisplayedItems; max > 0 && len(t.displayed) >= max {
		return false
	}
	t.displayed[contentID] = DisplayedEntry{
		ContentID:   contentID,
		BubbleID:    bubbleID,
		Type:        typ,
		DisplayedAt: t.elapsed,
	}
	t.byBubble[bubbleID] = contentID
	return true
}

// UntrackDisplayedItem removes the entry held by bubbleID. Unknown ids are
// ignored.
func (t *Tracker) UntrackDisplayedItem(bubbleID string) {
	contentID, ok := t.byBubble[bubbleID]
	if !ok {
		return
	}
	delete(t.byBubble, bubbleID)
	delete(t.displayed, contentID)
}
