package tracker

import (
	"maps"

	"github.com/san-kum/lyricfield/internal/content"
)

// DisplayedEntry records one content item currently shown by a bubble.
type DisplayedEntry struct {
	ContentID   string       `json:"contentId"`
	BubbleID    string       `json:"bubbleId"`
	Type        content.Type `json:"type"`
	DisplayedAt float64      `json:"displayedAt"`
}

// RotationState tracks progress through the current rotation cycle.
type RotationState struct {
	CurrentCycle        int
	CompletedCycles     int
	ItemsInCurrentCycle map[string]struct{}
	ForcedRotations     int
}

func newRotationState() RotationState {
	return RotationState{CurrentCycle: 1, ItemsInCurrentCycle: map[string]struct{}{}}
}

func (r RotationState) Contains(id string) bool {
	_, ok := r.ItemsInCurrentCycle[id]
	return ok
}

func (r RotationState) Size() int { return len(r.ItemsInCurrentCycle) }

// withSelected returns the state after id joined the current cycle.
func (r RotationState) withSelected(id string) RotationState {
	next := r
	next.ItemsInCurrentCycle = maps.Clone(r.ItemsInCurrentCycle)
	if next.ItemsInCurrentCycle == nil {
		next.ItemsInCurrentCycle = map[string]struct{}{}
	}
	next.ItemsInCurrentCycle[id] = struct{}{}
	return next
}

// rotated returns the state after a forced rotation: the cycle is cleared
// and counted as completed.
func (r RotationState) rotated() RotationState {
	next := r
	next.ItemsInCurrentCycle = map[string]struct{}{}
	next.ForcedRotations++
	next.CompletedCycles++
	next.CurrentCycle++
	return next
}

type historyEntry struct {
	ID string
	At float64
}

// history is the bounded window of recent selections, oldest first.
type history struct {
	entries []historyEntry
	limit   int
}

func newHistory(limit int) history {
	if limit < 1 {
		limit = 1
	}
	return history{limit: limit}
}

func (h history) push(id string, at float64) history {
	next := append(append([]historyEntry(nil), h.entries...), historyEntry{ID: id, At: at})
	if len(next) > h.limit {
		next = next[len(next)-h.limit:]
	}
	return history{entries: next, limit: h.limit}
}

func (h history) resized(limit int) history {
	if limit < 1 {
		limit = 1
	}
	entries := h.entries
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return history{entries: append([]historyEntry(nil), entries...), limit: limit}
}

// lastSeen finds the newest occurrence of id. rank 0 is the latest selection.
func (h history) lastSeen(id string) (at float64, rank int, ok bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].ID == id {
			return h.entries[i].At, len(h.entries) - 1 - i, true
		}
	}
	return 0, 0, false
}

func (h history) ids() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.ID
	}
	return out
}

// exposure is the cumulative selection tally per type plus the round-robin
// cursor used to break ties for the type balance target.
type exposure struct {
	counts content.TypeCounts
	cursor int
}

func (e exposure) record(t content.Type) exposure {
	next := e
	next.counts.Add(t, 1)
	next.cursor++
	return next
}

// target is the least exposed present type. Ties go to the first type at or
// after the round-robin cursor.
func (e exposure) target(present []content.Type) (content.Type, bool) {
	if len(present) == 0 {
		return 0, false
	}
	start := e.cursor % len(present)
	best := present[start]
	for i := 1; i < len(present); i++ {
		t := present[(start+i)%len(present)]
		if e.counts.Get(t) < e.counts.Get(best) {
			best = t
		}
	}
	return best, true
}
