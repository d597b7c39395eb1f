package tracker

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
)

func testCatalog() content.Catalog {
	return content.Catalog{
		Songs: []content.SongRecord{
			{ID: "1", Title: "Harbor Lights", Lyricists: []string{"Ana"}, Composers: []string{"Ben"}, Tags: []string{"ballad"}},
			{ID: "2", Title: "Paper Moon", Lyricists: []string{"Ana"}, Composers: []string{"Cleo"}, Tags: []string{"ballad", "night"}},
			{ID: "3", Title: "Static", Composers: []string{"Ben"}, Arrangers: []string{"Dev"}, Tags: []string{"rock"}},
		},
	}
}

func newTestTracker(t *testing.T, mutate func(*dynamo.Params)) *Tracker {
	t.Helper()
	p := dynamo.DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	tr := New(p, WithSeed(7))
	tr.Initialize(testCatalog())
	return tr
}

func TestSelectOnEmptyRegistry(t *testing.T) {
	tr := New(dynamo.DefaultParams(), WithSeed(1))
	if _, ok := tr.SelectNextContent(); ok {
		t.Fatal("expected no selection from an empty tracker")
	}
	tr.Initialize(content.Catalog{})
	if _, ok := tr.SelectNextContent(); ok {
		t.Fatal("expected no selection from an empty catalog")
	}
}

func TestTrackUntrackRoundTrip(t *testing.T) {
	tr := newTestTracker(t, nil)
	it, ok := tr.SelectNextContent()
	if !ok {
		t.Fatal("expected a selection")
	}

	before := tr.Stats().Displayed
	if !tr.TrackDisplayedItem(it.ID, "b1", it.Type) {
		t.Fatal("track should succeed")
	}
	if got := tr.Stats().Displayed; got != before+1 {
		t.Errorf("displayed = %d, want %d", got, before+1)
	}
	if id, ok := tr.DisplayedContent("b1"); !ok || id != it.ID {
		t.Errorf("DisplayedContent(b1) = %q, %v", id, ok)
	}

	tr.UntrackDisplayedItem("b1")
	if got := tr.Stats().Displayed; got != before {
		t.Errorf("after untrack displayed = %d, want %d", got, before)
	}
	if tr.IsDisplayed(it.ID) {
		t.Error("content still marked displayed")
	}

	// idempotent
	tr.UntrackDisplayedItem("b1")
	tr.UntrackDisplayedItem("never-tracked")
	if got := tr.Stats().Displayed; got != before {
		t.Errorf("repeated untrack changed displayed to %d", got)
	}
}

func TestTrackRejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(tr *Tracker)
		id     string
		bubble string
	}{
		{
			name:   "unknown content",
			id:     "song:404",
			bubble: "b1",
		},
		{
			name:   "content already displayed",
			setup:  func(tr *Tracker) { tr.TrackDisplayedItem("song:1", "b0", content.TypeSong) },
			id:     "song:1",
			bubble: "b1",
		},
		{
			name:   "bubble already tracking",
			setup:  func(tr *Tracker) { tr.TrackDisplayedItem("song:1", "b1", content.TypeSong) },
			id:     "song:2",
			bubble: "b1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTracker(t, nil)
			if tt.setup != nil {
				tt.setup(tr)
			}
			before := tr.Stats()
			if tr.TrackDisplayedItem(tt.id, tt.bubble, content.TypeSong) {
				t.Fatal("expected track to be rejected")
			}
			if tr.Stats() != before {
				t.Error("rejected track changed stats")
			}
		})
	}
}

func TestTrackRespectsMaxDisplayed(t *testing.T) {
	tr := newTestTracker(t, func(p *dynamo.Params) { p.MaxDisplayedItems = 2 })
	if !tr.TrackDisplayedItem("song:1", "a", content.TypeSong) ||
		!tr.TrackDisplayedItem("song:2", "b", content.TypeSong) {
		t.Fatal("first two tracks should succeed")
	}
	if tr.TrackDisplayedItem("song:3", "c", content.TypeSong) {
		t.Error("third track should exceed the limit")
	}
	tr.UntrackDisplayedItem("a")
	if !tr.TrackDisplayedItem("song:3", "c", content.TypeSong) {
		t.Error("track should succeed after freeing a slot")
	}
}

func TestSelectionsAreUniqueWhileDisplayed(t *testing.T) {
	tr := newTestTracker(t, nil)
	seen := make(map[string]bool)
	for i := 0; i < tr.TotalContent(); i++ {
		it, ok := tr.SelectNextContent()
		if !ok {
			t.Fatalf("selection %d returned none", i)
		}
		if seen[it.ID] {
			t.Fatalf("content %s selected while displayed", it.ID)
		}
		seen[it.ID] = true
		if !tr.TrackDisplayedItem(it.ID, it.ID+"-bubble", it.Type) {
			t.Fatalf("track %s failed", it.ID)
		}
	}
	if _, ok := tr.SelectNextContent(); ok {
		t.Error("expected none once every item is displayed")
	}
}

func TestStatsAndDebugInfoDoNotMutate(t *testing.T) {
	tr := newTestTracker(t, nil)
	it, _ := tr.SelectNextContent()
	tr.TrackDisplayedItem(it.ID, "b1", it.Type)

	before := tr.Stats()
	info := tr.DebugInfo()
	_ = tr.DebugInfo()
	if tr.Stats() != before {
		t.Error("DebugInfo changed stats")
	}
	if info.Stats != before {
		t.Errorf("DebugInfo stats = %+v, want %+v", info.Stats, before)
	}
	if len(info.Displayed) != 1 || info.Displayed[0].BubbleID != "b1" {
		t.Errorf("unexpected displayed entries %+v", info.Displayed)
	}
	for _, c := range info.Candidates {
		if c.Random != 0 {
			t.Errorf("debug candidate %s carries jitter %v", c.ContentID, c.Random)
		}
		if c.ContentID == it.ID {
			t.Errorf("displayed item %s listed as candidate", it.ID)
		}
	}
}

func TestStatsCounts(t *testing.T) {
	tr := newTestTracker(t, nil)
	s := tr.Stats()
	// 3 songs, 4 people (Ana, Ben, Cleo, Dev), 3 tags.
	want := content.TypeCounts{Song: 3, Person: 4, Tag: 3}
	if s.ContentByType != want {
		t.Errorf("content by type = %+v, want %+v", s.ContentByType, want)
	}
	if s.TotalContent != 10 || s.CurrentCycle != 1 {
		t.Errorf("unexpected stats %+v", s)
	}

	tr.SelectNextContent()
	s = tr.Stats()
	if s.Selections != 1 || s.ItemsInCurrentCycle != 1 || s.ExposureByType.Total() != 1 {
		t.Errorf("unexpected stats after one selection %+v", s)
	}
	if math.Abs(s.CycleProgress-0.1) > 1e-9 {
		t.Errorf("cycle progress = %v, want 0.1", s.CycleProgress)
	}
}

func TestInitializeResetsState(t *testing.T) {
	tr := newTestTracker(t, nil)
	it, _ := tr.SelectNextContent()
	tr.TrackDisplayedItem(it.ID, "b1", it.Type)

	tr.Initialize(testCatalog())
	s := tr.Stats()
	if s.Displayed != 0 || s.ItemsInCurrentCycle != 0 || s.Selections != 0 {
		t.Errorf("state not reset: %+v", s)
	}
	if _, ok := tr.DisplayedContent("b1"); ok {
		t.Error("bubble mapping survived initialize")
	}
}

func TestRecencyRecovers(t *testing.T) {
	h := newHistory(4).push("a", 0)
	s := scorer{cooldown: 10, history: h}

	s.now = 0
	if got := s.recency("a"); got != 0 {
		t.Errorf("recency right after selection = %v, want 0", got)
	}
	s.now = 5
	mid := s.recency("a")
	s.now = 30
	late := s.recency("a")
	if !(mid > 0 && mid < late && late < 1) {
		t.Errorf("recency should rise toward 1: mid=%v late=%v", mid, late)
	}
	if got := s.recency("b"); got != 1 {
		t.Errorf("unseen recency = %v, want 1", got)
	}

	h = newHistory(2).push("a", 0).push("b", 0).push("c", 0)
	if _, _, ok := h.lastSeen("a"); ok {
		t.Error("history window should have dropped the oldest entry")
	}
}

func TestPopularityMonotonic(t *testing.T) {
	s := scorer{maxRelated: 20}
	prev := -1.0
	for rc := 0; rc <= 20; rc++ {
		p := s.popularity(rc)
		if p < prev {
			t.Fatalf("popularity(%d)=%v below popularity(%d)=%v", rc, p, rc-1, prev)
		}
		prev = p
	}
	if prev != 1 {
		t.Errorf("popularity(max) = %v, want 1", prev)
	}
}

func TestTypeBalanceFavoursUnderexposed(t *testing.T) {
	present := []content.Type{content.TypeSong, content.TypePerson, content.TypeTag}
	ex := exposure{}.record(content.TypeSong).record(content.TypeSong).record(content.TypeSong)
	s := scorer{exposure: ex, present: present}
	if s.typeBalance(content.TypePerson) <= s.typeBalance(content.TypeSong) {
		t.Error("person should outrank the overexposed song type")
	}
}

func TestNormalizedWeights(t *testing.T) {
	tests := []struct {
		name string
		in   Weights
		want Weights
	}{
		{"already normal", Weights{0.4, 0.25, 0.25, 0.1}, Weights{0.4, 0.25, 0.25, 0.1}},
		{"scaled", Weights{2, 2, 0, 0}, Weights{0.5, 0.5, 0, 0}},
		{"all zero", Weights{}, Weights{0.25, 0.25, 0.25, 0.25}},
		{"negative ignored", Weights{-1, 1, 0, 0}, Weights{0, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			for _, pair := range [][2]float64{
				{got.Recency, tt.want.Recency},
				{got.Popularity, tt.want.Popularity},
				{got.TypeBalance, tt.want.TypeBalance},
				{got.Random, tt.want.Random},
			} {
				if math.Abs(pair[0]-pair[1]) > 1e-9 {
					t.Fatalf("Normalized() = %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestDrawProportional(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	weights := []SelectionWeight{{Total: 0}, {Total: 1}, {Total: 3}}
	counts := make([]int, 3)
	for i := 0; i < 4000; i++ {
		counts[draw(weights, rng)]++
	}
	if counts[0] != 0 {
		t.Errorf("zero weight drawn %d times", counts[0])
	}
	ratio := float64(counts[2]) / float64(counts[1])
	if ratio < 2.5 || ratio > 3.5 {
		t.Errorf("draw ratio = %v, want about 3", ratio)
	}

	zero := []SelectionWeight{{}, {}}
	for i := 0; i < 10; i++ {
		if idx := draw(zero, rng); idx < 0 || idx > 1 {
			t.Fatalf("uniform fallback returned %d", idx)
		}
	}
}
