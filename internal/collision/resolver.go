package collision

import (
	"math"
	"math/rand"

	"github.com/san-kum/lyricfield/internal/dynamo"
)

// Margin is added to every push so a resolved pair does not sit exactly on
// the overlap boundary.
const Margin = 0.5

const goldenTurn = 0.6180339887498949

type Config struct {
	Width, Height float64
	MinDistance   float64
	MaxAttempts   int

	// Performance mode kicks in above PerformanceThreshold bubbles.
	PerformanceThreshold int
	BatchSize            int
	ReducedAttempts      int

	PlacementColumns int
	PlacementRows    int
}

func ConfigFromParams(p dynamo.Params) Config {
	return Config{
		Width:                p.CanvasWidth,
		Height:               p.CanvasHeight,
		MinDistance:          math.Max(0, p.MinDistance),
		MaxAttempts:          p.MaxAttempts,
		PerformanceThreshold: p.PerformanceThreshold,
		BatchSize:            p.BatchSize,
		ReducedAttempts:      p.ReducedAttempts,
		PlacementColumns:     8,
		PlacementRows:        6,
	}
}

// Report summarises one Resolve pass.
type Report struct {
	Checked    int  `json:"checked"`
	Adjusted   int  `json:"adjusted"`
	Unresolved int  `json:"unresolved"`
	Attempts   int  `json:"attempts"`
	Batched    bool `json:"batched"`
}

type Resolver struct {
	cfg  Config
	grid *grid
}

func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg, grid: newGrid()}
}

func (r *Resolver) Config() Config { return r.cfg }

func (r *Resolver) SetConfig(cfg Config) { r.cfg = cfg }

// Overlap returns how far a and b are from satisfying the minimum gap. A
// positive value means they overlap.
func Overlap(ax, ay, ar, bx, by, br, minDist float64) float64 {
	return ar + br + minDist - math.Hypot(ax-bx, ay-by)
}

func Overlaps(a, b *dynamo.Bubble, minDist float64) bool {
	return Overlap(a.X, a.Y, a.Radius(), b.X, b.Y, b.Radius(), minDist) > 0
}

// CountOverlaps counts the bubbles a circle at (x, y) would overlap.
func CountOverlaps(x, y, radius float64, existing []*dynamo.Bubble, minDist float64) int {
	n := 0
	for _, b := range existing {
		if Overlap(x, y, radius, b.X, b.Y, b.Radius(), minDist) > 0 {
			n++
		}
	}
	return n
}

func (r *Resolver) performanceMode(n int) bool {
	return r.cfg.PerformanceThreshold > 0 && n > r.cfg.PerformanceThreshold && r.cfg.BatchSize > 0
}

func (r *Resolver) cellSize(bubbles []*dynamo.Bubble) float64 {
	maxR := 0.0
	for _, b := range bubbles {
		maxR = math.Max(maxR, b.Radius())
	}
	return 2*maxR + r.cfg.MinDistance
}

func (r *Resolver) rebuild(bubbles []*dynamo.Bubble, size float64) {
	r.grid.reset(size)
	for i, b := range bubbles {
		r.grid.insert(i, b.X, b.Y)
	}
}

// Resolve separates overlapping bubbles in place. Each bubble is pushed
// away from its worst neighbour at most MaxAttempts times (ReducedAttempts
// in performance mode).
func (r *Resolver) Resolve(bubbles []*dynamo.Bubble) Report {
	var rep Report
	if len(bubbles) < 2 {
		return rep
	}

	size := r.cellSize(bubbles)
	r.rebuild(bubbles, size)

	if !r.performanceMode(len(bubbles)) {
		for i := range bubbles {
			r.settle(bubbles, i, max(1, r.cfg.MaxAttempts), true, &rep)
		}
		return rep
	}

	rep.Batched = true
	budget := max(1, r.cfg.ReducedAttempts)
	for start := 0; start < len(bubbles); start += r.cfg.BatchSize {
		if start > 0 {
			r.rebuild(bubbles, size)
		}
		end := min(start+r.cfg.BatchSize, len(bubbles))
		for i := start; i < end; i++ {
			r.settle(bubbles, i, budget, false, &rep)
		}
	}
	return rep
}

// settle pushes bubble i out of its neighbours. When track is set the grid
// follows every move; otherwise the grid is left stale until the next
// rebuild.
func (r *Resolver) settle(bubbles []*dynamo.Bubble, i, budget int, track bool, rep *Report) {
	b := bubbles[i]
	moved := false

	for attempt := 0; ; attempt++ {
		worst, shortfall := -1, 0.0
		r.grid.near(b.X, b.Y, func(j int) {
			if j == i {
				return
			}
			rep.Checked++
			o := bubbles[j]
			if s := Overlap(b.X, b.Y, b.Radius(), o.X, o.Y, o.Radius(), r.cfg.MinDistance); s > shortfall {
				worst, shortfall = j, s
			}
		})
		if worst < 0 {
			break
		}
		if attempt >= budget {
			rep.Unresolved++
			break
		}
		rep.Attempts++

		fromX, fromY := b.X, b.Y
		r.pushApart(b, bubbles[worst], shortfall+Margin, i)
		if track {
			r.grid.move(i, fromX, fromY, b.X, b.Y)
		}
		moved = true
	}

	if moved {
		rep.Adjusted++
	}
}

// pushApart moves b directly away from o by dist and clamps it to the
// canvas. Coincident centres are split along an angle derived from i.
func (r *Resolver) pushApart(b, o *dynamo.Bubble, dist float64, i int) {
	dx, dy := b.X-o.X, b.Y-o.Y
	d := math.Hypot(dx, dy)
	var ux, uy float64
	if d < 1e-9 {
		turn := float64(i) * goldenTurn
		ux = dynamo.DefaultSineTable.Cos(turn)
		uy = dynamo.DefaultSineTable.Sin(turn)
	} else {
		ux, uy = dx/d, dy/d
	}
	b.X += ux * dist
	b.Y += uy * dist
	r.clamp(b)
}

// clamp keeps b between the side walls and inside the vertical wrap band.
func (r *Resolver) clamp(b *dynamo.Bubble) {
	rad := b.Radius()
	if r.cfg.Width > 2*rad {
		b.X = dynamo.Clamp(b.X, rad, r.cfg.Width-rad)
	}
	if r.cfg.Height > 0 {
		b.Y = dynamo.Clamp(b.Y, -rad, r.cfg.Height+rad)
	}
}

// FindPlacement scans a coarse grid over the canvas, starting at a random
// cell, for a spawn position of the given radius. It returns the first cell
// with no overlaps, or the cell with the fewest. A nil rng starts at the
// first cell and skips jitter.
func (r *Resolver) FindPlacement(radius float64, existing []*dynamo.Bubble, rng *rand.Rand) (x, y float64, overlaps int) {
	cols, rows := max(1, r.cfg.PlacementColumns), max(1, r.cfg.PlacementRows)
	cw, ch := r.cfg.Width/float64(cols), r.cfg.Height/float64(rows)
	cells := cols * rows

	start := 0
	if rng != nil {
		start = rng.Intn(cells)
	}

	overlaps = -1
	for n := 0; n < cells; n++ {
		c := (start + n) % cells
		cx := (float64(c%cols) + 0.5) * cw
		cy := (float64(c/cols) + 0.5) * ch
		cx, cy = r.inside(cx, cy, radius)

		count := CountOverlaps(cx, cy, radius, existing, r.cfg.MinDistance)
		if overlaps < 0 || count < overlaps {
			x, y, overlaps = cx, cy, count
		}
		if count == 0 {
			break
		}
	}

	if rng != nil {
		jx := x + (rng.Float64()-0.5)*cw*0.5
		jy := y + (rng.Float64()-0.5)*ch*0.5
		jx, jy = r.inside(jx, jy, radius)
		if CountOverlaps(jx, jy, radius, existing, r.cfg.MinDistance) <= overlaps {
			x, y = jx, jy
		}
	}
	return x, y, overlaps
}

func (r *Resolver) inside(x, y, radius float64) (float64, float64) {
	if r.cfg.Width > 2*radius {
		x = dynamo.Clamp(x, radius, r.cfg.Width-radius)
	} else {
		x = r.cfg.Width / 2
	}
	if r.cfg.Height > 2*radius {
		y = dynamo.Clamp(y, radius, r.cfg.Height-radius)
	} else {
		y = r.cfg.Height / 2
	}
	return x, y
}
