package events

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/tracker"
)

const (
	queueSize      = 64
	publishTimeout = 2 * time.Second
)

// Emitter is an engine observer publishing stats changes.
type Emitter struct {
	pub    Publisher
	logger *log.Logger

	mu     sync.Mutex
	prev   tracker.Stats
	seen   bool
	closed bool
	queue  chan Event

	dropped atomic.Int64
	done    chan struct{}
}

func NewEmitter(pub Publisher, logger *log.Logger) *Emitter {
	if logger == nil {
		logger = log.New(os.Stderr, "lyricfield: ", log.LstdFlags)
	}
	e := &Emitter{
		pub:    pub,
		logger: logger,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go e.loop()
	return e
}

// Classify names the change from prev to next. ok is false when nothing
// changed.
func Classify(prev, next tracker.Stats) (Kind, bool) {
	switch {
	case next == prev:
		return "", false
	case next.ForcedRotations != prev.ForcedRotations:
		return KindRotation, true
	case next.TotalContent != prev.TotalContent:
		return KindCatalog, true
	}
	return KindStats, true
}

// OnFrame never blocks; events are dropped when the queue is full.
func (e *Emitter) OnFrame(f engine.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	kind := KindStats
	if e.seen {
		k, changed := Classify(e.prev, f.Stats)
		if !changed {
			return
		}
		kind = k
	}
	e.prev, e.seen = f.Stats, true

	select {
	case e.queue <- Event{Kind: kind, Tick: f.Tick, Time: f.Time, Stats: f.Stats}:
	default:
		e.dropped.Add(1)
	}
}

func (e *Emitter) Dropped() int64 { return e.dropped.Load() }

func (e *Emitter) loop() {
	defer close(e.done)
	for ev := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := e.pub.Publish(ctx, ev); err != nil {
			e.logger.Printf("events: %v", err)
		}
		cancel()
	}
}

// Close stops accepting frames and waits for queued events to publish.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()
	<-e.done
}
