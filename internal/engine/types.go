package engine

import (
	"github.com/san-kum/lyricfield/internal/collision"
	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/tracker"
)

// Frame is the read-only result of one tick.
type Frame struct {
	Tick      int64               `json:"tick"`
	Time      float64             `json:"time"`
	Bubbles   []dynamo.BubbleView `json:"bubbles"`
	Stats     tracker.Stats       `json:"stats"`
	Collision collision.Report    `json:"collision"`
	Spawned   int                 `json:"spawned"`
	Removed   int                 `json:"removed"`
}

type Observer interface {
	OnFrame(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Metric accumulates a value over the frames of a run.
type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

// ClickResult is delivered once a queued click has been applied.
type ClickResult struct {
	Item content.Item
	Err  error
}
