package collision

import "math"

type cellKey struct{ x, y int }

// grid buckets bubble indices by position. Cells are at least as wide as
// the largest interaction distance so a 3x3 neighbourhood covers every
// possible overlap.
type grid struct {
	size  float64
	cells map[cellKey][]int
}

func newGrid() *grid {
	return &grid{size: 1, cells: make(map[cellKey][]int)}
}

func (g *grid) reset(size float64) {
	if size <= 0 || math.IsNaN(size) {
		size = 1
	}
	g.size = size
	clear(g.cells)
}

func (g *grid) key(x, y float64) cellKey {
	return cellKey{int(math.Floor(x / g.size)), int(math.Floor(y / g.size))}
}

func (g *grid) insert(i int, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], i)
}

func (g *grid) remove(i int, x, y float64) {
	k := g.key(x, y)
	cell := g.cells[k]
	for n, v := range cell {
		if v == i {
			cell[n] = cell[len(cell)-1]
			g.cells[k] = cell[:len(cell)-1]
			return
		}
	}
}

func (g *grid) move(i int, fromX, fromY, toX, toY float64) {
	if g.key(fromX, fromY) == g.key(toX, toY) {
		return
	}
	g.remove(i, fromX, fromY)
	g.insert(i, toX, toY)
}

// near calls fn for every index bucketed in the 3x3 block around (x, y).
func (g *grid) near(x, y float64, fn func(j int)) {
	c := g.key(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, j := range g.cells[cellKey{c.x + dx, c.y + dy}] {
				fn(j)
			}
		}
	}
}
