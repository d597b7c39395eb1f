package events

import (
	"context"
	"sync"

	"github.com/san-kum/lyricfield/internal/tracker"
)

type Kind string

const (
	// KindStats is any change to the tracker statistics.
	KindStats Kind = "stats"
	// KindRotation is a forced rotation, which also completes a cycle.
	KindRotation Kind = "rotation"
	// KindCatalog is a change in the number of content items.
	KindCatalog Kind = "catalog"
)

type Event struct {
	Kind  Kind          `json:"kind"`
	Tick  int64         `json:"tick"`
	Time  float64       `json:"time"`
	Stats tracker.Stats `json:"stats"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// MemoryPublisher records events in order.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (m *MemoryPublisher) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
