package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/lifecycle"
	"github.com/san-kum/lyricfield/internal/tracker"
)

type command func(e *Engine)

type Engine struct {
	mu      sync.Mutex
	params  dynamo.Params
	tracker *tracker.Tracker
	manager *lifecycle.Manager
	logger  *log.Logger

	metrics   []Metric
	observers []Observer

	qmu     sync.Mutex
	pending []command

	tick int64
	last Frame

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type options struct {
	seed      int64
	seeded    bool
	logger    *log.Logger
	styler    lifecycle.Styler
	observers []Observer
	metrics   []Metric
}

type Option func(*options)

// WithSeed makes selection, placement and noise reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed, o.seeded = seed, true }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithStyler(s lifecycle.Styler) Option {
	return func(o *options) { o.styler = s }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

func WithMetric(m Metric) Option {
	return func(o *options) { o.metrics = append(o.metrics, m) }
}

func New(params dynamo.Params, opts ...Option) *Engine {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = time.Now().UnixNano()
	}
	if o.logger == nil {
		o.logger = log.New(os.Stderr, "lyricfield: ", log.LstdFlags)
	}

	rng := rand.New(rand.NewSource(o.seed))
	tr := tracker.New(params, tracker.WithSeed(rng.Int63()))
	mopts := []lifecycle.Option{lifecycle.WithSeed(rng.Int63())}
	if o.styler != nil {
		mopts = append(mopts, lifecycle.WithStyler(o.styler))
	}

	return &Engine{
		params:    params,
		tracker:   tr,
		manager:   lifecycle.New(params, tr, mopts...),
		logger:    o.logger,
		metrics:   o.metrics,
		observers: o.observers,
	}
}

func (e *Engine) AddMetric(m Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = append(e.metrics, m)
}

func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Initialize replaces the catalog immediately. Live bubbles are dropped.
// Use QueueCatalog while the loop is running.
func (e *Engine) Initialize(cat content.Catalog) content.BuildReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(cat)
}

func (e *Engine) load(cat content.Catalog) content.BuildReport {
	e.manager.Reset()
	report := e.tracker.Initialize(cat)
	if report.Skipped() > 0 {
		e.logger.Printf("catalog: skipped %d malformed entries (%+v)", report.Skipped(), report)
	}
	e.logger.Printf("catalog: %d items loaded", e.tracker.TotalContent())
	return report
}

func (e *Engine) enqueue(c command) {
	e.qmu.Lock()
	e.pending = append(e.pending, c)
	e.qmu.Unlock()
	if !e.Running() {
		e.mu.Lock()
		e.drain()
		e.mu.Unlock()
	}
}

// drain runs queued commands. Callers hold mu.
func (e *Engine) drain() {
	e.qmu.Lock()
	cmds := e.pending
	e.pending = nil
	e.qmu.Unlock()
	for _, c := range cmds {
		c(e)
	}
}

// QueueCatalog schedules a catalog swap for the next tick boundary.
func (e *Engine) QueueCatalog(cat content.Catalog) {
	e.enqueue(func(e *Engine) { e.load(cat) })
}

// QueueParams schedules a full parameter swap for the next tick boundary.
func (e *Engine) QueueParams(p dynamo.Params) {
	e.enqueue(func(e *Engine) { e.setParams(p) })
}

// UpdateParams validates a partial update by name and queues it. Unknown
// names reject the whole patch.
func (e *Engine) UpdateParams(patch map[string]float64) error {
	p := e.Params()
	if err := p.Apply(patch); err != nil {
		return fmt.Errorf("update params: %w", err)
	}
	e.enqueue(func(e *Engine) {
		next := e.params
		_ = next.Apply(patch)
		e.setParams(next)
	})
	return nil
}

// QueueStyler swaps the styler used for bubbles spawned after the next tick
// boundary.
func (e *Engine) QueueStyler(s lifecycle.Styler) {
	e.enqueue(func(e *Engine) { e.manager.SetStyler(s) })
}

func (e *Engine) setParams(p dynamo.Params) {
	e.params = p
	e.tracker.SetParams(p)
	e.manager.SetParams(p)
}

// QueueClick schedules a click. The result channel receives exactly one
// value.
func (e *Engine) QueueClick(bubbleID string) <-chan ClickResult {
	ch := make(chan ClickResult, 1)
	e.enqueue(func(e *Engine) {
		it, err := e.manager.Click(bubbleID)
		ch <- ClickResult{Item: it, Err: err}
	})
	return ch
}

// Click queues a click and waits for it to be applied.
func (e *Engine) Click(ctx context.Context, bubbleID string) (content.Item, error) {
	select {
	case res := <-e.QueueClick(bubbleID):
		return res.Item, res.Err
	case <-ctx.Done():
		return content.Item{}, ctx.Err()
	}
}

// Tick advances the session by dt seconds and returns the resulting frame.
func (e *Engine) Tick(dt float64) Frame {
	e.mu.Lock()
	e.drain()
	removed := e.manager.UpdateFrame(dt)
	spawned := e.manager.MaintainBubbleCount()
	e.tick++

	f := Frame{
		Tick:      e.tick,
		Time:      e.manager.Elapsed(),
		Bubbles:   e.manager.Snapshot(),
		Stats:     e.tracker.Stats(),
		Collision: e.manager.LastCollision(),
		Spawned:   spawned,
		Removed:   removed,
	}
	e.last = f
	for _, m := range e.metrics {
		m.Observe(f)
	}
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()

	for _, o := range observers {
		o.OnFrame(f)
	}
	return f
}

// RunFor ticks headlessly for duration seconds of session time.
func (e *Engine) RunFor(ctx context.Context, duration, dt float64) (Frame, error) {
	if dt <= 0 {
		return Frame{}, fmt.Errorf("dt must be positive, got %f", dt)
	}
	if duration <= 0 {
		return Frame{}, fmt.Errorf("duration must be positive, got %f", duration)
	}

	e.resetMetrics()
	var f Frame
	steps := int(duration / dt)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return f, ctx.Err()
		default:
		}
		f = e.Tick(dt)
	}
	return f, nil
}

// Run ticks at fps frames per second until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	dt := 1 / float64(fps)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick(dt)
		}
	}
}

// Start runs the loop in the background. It is a no-op when already
// running.
func (e *Engine) Start(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	go func() {
		defer close(done)
		_ = e.Run(ctx, fps)
	}()
	e.logger.Printf("engine: started at %d fps", fps)
	return nil
}

// Stop cancels the loop and waits for the in-flight tick to finish. No tick
// runs after Stop returns.
func (e *Engine) Stop() {
	e.runMu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	// commands queued while stopping would otherwise wait for a tick
	e.mu.Lock()
	e.drain()
	e.mu.Unlock()
	e.logger.Printf("engine: stopped")
}

func (e *Engine) Running() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.cancel != nil
}

// Last returns the most recent frame.
func (e *Engine) Last() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Engine) Params() dynamo.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *Engine) Stats() tracker.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Stats()
}

func (e *Engine) DebugInfo() tracker.DebugInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.DebugInfo()
}

func (e *Engine) Lookup(contentID string) (content.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Lookup(contentID)
}

// Metrics returns the current value of every metric by name.
func (e *Engine) Metrics() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (e *Engine) resetMetrics() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.metrics {
		m.Reset()
	}
}
