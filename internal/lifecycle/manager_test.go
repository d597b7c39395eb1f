package lifecycle

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/tracker"
)

func testCatalog() content.Catalog {
	return content.Catalog{
		Songs: []content.SongRecord{
			{ID: "1", Title: "Harbor Lights", Lyricists: []string{"Ana"}, Composers: []string{"Ben"}, Tags: []string{"ballad"}},
			{ID: "2", Title: "Paper Moon", Lyricists: []string{"Ana"}, Composers: []string{"Cleo"}, Tags: []string{"ballad", "night"}},
			{ID: "3", Title: "Static", Composers: []string{"Ben"}, Arrangers: []string{"Dev"}, Tags: []string{"rock"}},
			{ID: "4", Title: "Glass", Lyricists: []string{"Eve"}, Composers: []string{"Ana"}, Tags: []string{"night"}},
		},
	}
}

func newTestManager(t *testing.T, mutate func(*dynamo.Params)) (*Manager, *tracker.Tracker) {
	t.Helper()
	p := dynamo.DefaultParams()
	p.MaxBubbles = 6
	p.MaxDisplayedItems = 6
	if mutate != nil {
		mutate(&p)
	}
	tr := tracker.New(p, tracker.WithSeed(11))
	tr.Initialize(testCatalog())
	return New(p, tr, WithSeed(3)), tr
}

func TestGenerateBubbleErrors(t *testing.T) {
	p := dynamo.DefaultParams()
	tr := tracker.New(p, tracker.WithSeed(1))
	m := New(p, tr, WithSeed(1))

	if _, err := m.GenerateBubble(); !errors.Is(err, dynamo.ErrEmptyRegistry) {
		t.Fatalf("empty registry: got %v", err)
	}

	tr.Initialize(content.Catalog{Tags: []string{"solo"}})
	if _, err := m.GenerateBubble(); err != nil {
		t.Fatalf("first spawn: %v", err)
	}
	if _, err := m.GenerateBubble(); !errors.Is(err, dynamo.ErrNoContentAvailable) {
		t.Fatalf("exhausted tracker: got %v", err)
	}
}

func TestGenerateBubbleTracksContent(t *testing.T) {
	m, tr := newTestManager(t, nil)
	b, err := m.GenerateBubble()
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := tr.DisplayedContent(b.ID); !ok || id != b.ContentID {
		t.Errorf("bubble %s not tracked (got %q, %v)", b.ID, id, ok)
	}
	p := dynamo.DefaultParams()
	if b.Size < p.MinSize || b.Size > p.MaxSize {
		t.Errorf("size %v outside [%v, %v]", b.Size, p.MinSize, p.MaxSize)
	}
	if s := b.Speed(); s < p.MinVelocity || s > p.MaxVelocity {
		t.Errorf("speed %v outside [%v, %v]", s, p.MinVelocity, p.MaxVelocity)
	}
	if b.Phase != dynamo.PhaseSpawning || b.Color == "" {
		t.Errorf("unexpected spawn state %+v", b)
	}
}

func TestMaintainBubbleCount(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		displayed int
		want      int
	}{
		{"bounded by max bubbles", 4, 10, 4},
		{"bounded by displayed limit", 10, 3, 3},
		{"bounded by content", 40, 0, 12}, // 4 songs, 5 people, 3 tags
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tr := newTestManager(t, func(p *dynamo.Params) {
				p.MaxBubbles = tt.max
				p.MaxDisplayedItems = tt.displayed
			})
			want := min(tt.want, tr.TotalContent())
			if got := m.MaintainBubbleCount(); got != want {
				t.Errorf("spawned %d, want %d", got, want)
			}
			if m.Len() != want {
				t.Errorf("len = %d, want %d", m.Len(), want)
			}
			if again := m.MaintainBubbleCount(); again != 0 {
				t.Errorf("second maintain spawned %d", again)
			}
		})
	}
}

func TestUpdateFrameRemovesAndUntracks(t *testing.T) {
	m, tr := newTestManager(t, func(p *dynamo.Params) {
		p.MinLifespan, p.MaxLifespan = 1, 1
	})
	m.MaintainBubbleCount()
	n := m.Len()
	if n == 0 {
		t.Fatal("nothing spawned")
	}

	sawFading := false
	for i := 0; i < 59; i++ {
		if removed := m.UpdateFrame(1.0 / 60); removed != 0 {
			t.Fatalf("frame %d removed %d before lifespan", i, removed)
		}
		for _, v := range m.Snapshot() {
			if v.Phase == dynamo.PhaseFading {
				sawFading = true
			}
		}
	}
	if !sawFading {
		t.Error("bubbles never entered the fading phase")
	}

	removed := m.UpdateFrame(2.0 / 60)
	if removed != n || m.Len() != 0 {
		t.Fatalf("removed %d of %d, %d left", removed, n, m.Len())
	}
	if got := tr.Stats().Displayed; got != 0 {
		t.Errorf("tracker still shows %d displayed items", got)
	}
}

func TestInvariantsHoldOverTime(t *testing.T) {
	m, tr := newTestManager(t, func(p *dynamo.Params) {
		p.MinLifespan, p.MaxLifespan = 2, 4
	})
	p := dynamo.DefaultParams()

	for frame := 0; frame < 900; frame++ {
		m.UpdateFrame(1.0 / 30)
		m.MaintainBubbleCount()

		seen := map[string]bool{}
		for _, v := range m.Snapshot() {
			if seen[v.ContentID] {
				t.Fatalf("frame %d: content %s shown twice", frame, v.ContentID)
			}
			seen[v.ContentID] = true
			if v.Age >= v.Lifespan {
				t.Fatalf("frame %d: expired bubble %s still live", frame, v.ID)
			}
			if v.Size < p.MinSize || v.Size > p.MaxSize {
				t.Fatalf("frame %d: size %v out of bounds", frame, v.Size)
			}
			speed := math.Hypot(v.VX, v.VY)
			if speed < p.MinVelocity-1e-9 || speed > p.MaxVelocity+1e-9 {
				t.Fatalf("frame %d: speed %v out of bounds", frame, speed)
			}
		}
		if tr.Stats().Displayed != m.Len() {
			t.Fatalf("frame %d: tracker displays %d, manager holds %d", frame, tr.Stats().Displayed, m.Len())
		}
	}
	if tr.Stats().CompletedCycles == 0 {
		t.Error("expected at least one completed cycle over 30s")
	}
}

func TestClickAnimation(t *testing.T) {
	m, _ := newTestManager(t, nil)
	b, err := m.GenerateBubble()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60; i++ {
		m.UpdateFrame(1.0 / 60)
	}
	ageBefore, lifeBefore := b.Age, b.Lifespan

	if !m.TriggerClickAnimation(b.ID) {
		t.Fatal("click on live bubble failed")
	}
	if m.TriggerClickAnimation("missing") {
		t.Error("click on unknown bubble succeeded")
	}
	if b.Age != ageBefore || b.Lifespan != lifeBefore {
		t.Error("click changed age or lifespan")
	}

	m.UpdateFrame(ClickPulseDuration / 2)
	if b.Scale <= b.Breath {
		t.Errorf("expected pulse to enlarge scale: scale=%v breath=%v", b.Scale, b.Breath)
	}
	m.UpdateFrame(ClickPulseDuration)
	if b.Pulse != 0 {
		t.Errorf("pulse did not finish: %v", b.Pulse)
	}
}

func TestClickLookup(t *testing.T) {
	m, _ := newTestManager(t, nil)
	b, err := m.GenerateBubble()
	if err != nil {
		t.Fatal(err)
	}
	it, err := m.Click(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != b.ContentID || it.Name != b.Name {
		t.Errorf("click returned %+v for bubble %+v", it, b)
	}
	if _, err := m.Click("nope"); !errors.Is(err, dynamo.ErrBubbleNotFound) {
		t.Errorf("unknown click: got %v", err)
	}
}

func TestResetUntracksAll(t *testing.T) {
	m, tr := newTestManager(t, nil)
	m.MaintainBubbleCount()
	m.Reset()
	if m.Len() != 0 || tr.Stats().Displayed != 0 {
		t.Errorf("reset left %d bubbles, %d displayed", m.Len(), tr.Stats().Displayed)
	}
}

func TestDefaultStyler(t *testing.T) {
	tests := []struct {
		name  string
		typ   content.Type
		roles []content.RoleCount
		want  string
	}{
		{"song", content.TypeSong, nil, "#7aa2f7"},
		{"tag", content.TypeTag, nil, "#9ece6a"},
		{"lyricist", content.TypePerson, []content.RoleCount{{Role: content.RoleLyricist, Songs: 2}}, "#f7768e"},
		{"mostly composer", content.TypePerson, []content.RoleCount{{Role: content.RoleLyricist, Songs: 1}, {Role: content.RoleComposer, Songs: 3}}, "#e0af68"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultStyler.Resolve(tt.typ, tt.roles); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}
