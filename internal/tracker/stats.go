package tracker

import (
	"sort"

	"github.com/san-kum/lyricfield/internal/content"
)

// Stats is a read-only summary of the tracker. It is comparable so callers
// can detect changes with ==.
type Stats struct {
	TotalContent        int                `json:"totalContent"`
	ContentByType       content.TypeCounts `json:"contentByType"`
	Displayed           int                `json:"displayed"`
	DisplayedByType     content.TypeCounts `json:"displayedByType"`
	ExposureByType      content.TypeCounts `json:"exposureByType"`
	CurrentCycle        int                `json:"currentCycle"`
	CompletedCycles     int                `json:"completedCycles"`
	ForcedRotations     int                `json:"forcedRotations"`
	ItemsInCurrentCycle int                `json:"itemsInCurrentCycle"`
	CycleProgress       float64            `json:"cycleProgress"`
	Selections          int                `json:"selections"`
}

// DebugInfo extends Stats with the displayed entries, the recent window and
// the deterministic part of each candidate's weight.
type DebugInfo struct {
	Stats      Stats             `json:"stats"`
	Displayed  []DisplayedEntry  `json:"displayed"`
	Recent     []string          `json:"recent"`
	NextTarget string            `json:"nextTarget,omitempty"`
	Candidates []SelectionWeight `json:"candidates"`
}

func (t *Tracker) Stats() Stats {
	s := Stats{
		TotalContent:        t.registry.Len(),
		ContentByType:       t.registry.CountByType(),
		Displayed:           len(t.displayed),
		ExposureByType:      t.exposure.counts,
		CurrentCycle:        t.rotation.CurrentCycle,
		CompletedCycles:     t.rotation.CompletedCycles,
		ForcedRotations:     t.rotation.ForcedRotations,
		ItemsInCurrentCycle: t.rotation.Size(),
		Selections:          t.selections,
	}
	for _, e := range t.displayed {
		s.DisplayedByType.Add(e.Type, 1)
	}
	if s.TotalContent > 0 {
		s.CycleProgress = float64(s.ItemsInCurrentCycle) / float64(s.TotalContent)
	}
	return s
}

// DebugInfo never draws from the random source; candidate weights omit the
// jitter term.
func (t *Tracker) DebugInfo() DebugInfo {
	info := DebugInfo{
		Stats:  t.Stats(),
		Recent: t.history.ids(),
	}

	for _, e := range t.displayed {
		info.Displayed = append(info.Displayed, e)
	}
	sort.Slice(info.Displayed, func(i, j int) bool {
		a, b := info.Displayed[i], info.Displayed[j]
		if a.DisplayedAt != b.DisplayedAt {
			return a.DisplayedAt < b.DisplayedAt
		}
		return a.ContentID < b.ContentID
	})

	sc := t.scorer()
	if target, ok := sc.exposure.target(sc.present); ok {
		info.NextTarget = target.String()
	}
	cands := t.candidates(true)
	if len(cands) == 0 {
		cands = t.candidates(false)
	}
	for _, it := range cands {
		info.Candidates = append(info.Candidates, sc.score(it, nil))
	}
	sort.SliceStable(info.Candidates, func(i, j int) bool {
		return info.Candidates[i].Total > info.Candidates[j].Total
	})
	if len(info.Candidates) > 10 {
		info.Candidates = info.Candidates[:10]
	}
	return info
}
