package dynamo

import "math"

// SineTable holds one period of sin sampled at n points. Lookups take the
// phase in turns (1 turn = 2π) so callers can feed frequency*time directly.
type SineTable struct {
	values []float64
	n      int
}

// DefaultSineTable has 4096 entries (~0.0015 rad resolution).
var DefaultSineTable = NewSineTable(4096)

// NewSineTable precomputes a table of n samples.
func NewSineTable(n int) *SineTable {
	if n < 4 {
		n = 4
	}
	t := &SineTable{values: make([]float64, n), n: n}
	for i := 0; i < n; i++ {
		t.values[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return t
}

// Sin returns sin(2π·turns) using linear interpolation between samples.
func (t *SineTable) Sin(turns float64) float64 {
	frac := turns - math.Floor(turns)
	idx := frac * float64(t.n)
	i := int(idx)
	w := idx - float64(i)
	i0 := i % t.n
	i1 := (i + 1) % t.n
	return t.values[i0]*(1-w) + t.values[i1]*w
}

// Cos returns cos(2π·turns).
func (t *SineTable) Cos(turns float64) float64 {
	return t.Sin(turns + 0.25)
}
