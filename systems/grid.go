package systems

import "image/color"

// CellKind identifies what occupies a grid cell.
type CellKind uint8

const (
	CellOpen  CellKind = iota // Carries velocity and pressure, not painted
	CellFluid                 // Carries velocity and pressure, painted as fluid
	CellSolid                 // Impermeable, no fluid quantities
)

// NoNeighbor marks a neighbor slot that falls outside the region.
const NoNeighbor int32 = -1

// Neighbor slot order used by every stencil in the solver.
const (
	SlotTop = iota
	SlotLeft
	SlotRight
	SlotBottom
)

// Cell is a read-only view of one grid cell.
type Cell struct {
	Index      int
	Center     Vec2
	Kind       CellKind
	Color      color.RGBA
	Velocity   Vec2
	Divergence float32
	Pressure   float32
	Neighbors  [4]int32 // top, left, right, bottom
}

// Grid is a dense, index-addressed Eulerian grid over a Region.
// Fields are stored per-quantity so passes can stream over them; the neighbor
// table is built once and never changes, which lets passes run in parallel
// without aliasing.
type Grid struct {
	Region Region

	Neighbors [][4]int32
	Kind      []CellKind
	Color     []color.RGBA // Display colour of painted cells

	Velocity     []Vec2
	Divergence   []float32
	Pressure     []float32
	pressureNext []float32 // Jacobi write buffer

	solidCount int
}

// NewGrid allocates one cell per index in region and links each cell to its
// four neighbors by probing one cell length in every cardinal direction.
func NewGrid(region Region) *Grid {
	n := region.Len()
	g := &Grid{
		Region:       region,
		Neighbors:    make([][4]int32, n),
		Kind:         make([]CellKind, n),
		Color:        make([]color.RGBA, n),
		Velocity:     make([]Vec2, n),
		Divergence:   make([]float32, n),
		Pressure:     make([]float32, n),
		pressureNext: make([]float32, n),
	}

	step := region.CellSize
	probes := [4]Vec2{
		SlotTop:    {0, step},
		SlotLeft:   {-step, 0},
		SlotRight:  {step, 0},
		SlotBottom: {0, -step},
	}

	for i := 0; i < n; i++ {
		center := region.IndexToTranslationUnchecked(i)
		for slot, d := range probes {
			if idx, ok := region.TranslationToIndex(center.Add(d)); ok {
				g.Neighbors[i][slot] = int32(idx)
			} else {
				g.Neighbors[i][slot] = NoNeighbor
			}
		}
	}

	return g
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.Kind)
}

// Cell returns a view of the cell at index.
func (g *Grid) Cell(index int) (Cell, bool) {
	center, ok := g.Region.IndexToTranslation(index)
	if !ok {
		return Cell{}, false
	}
	return Cell{
		Index:      index,
		Center:     center,
		Kind:       g.Kind[index],
		Color:      g.Color[index],
		Velocity:   g.Velocity[index],
		Divergence: g.Divergence[index],
		Pressure:   g.Pressure[index],
		Neighbors:  g.Neighbors[index],
	}, true
}

// CellAt returns the cell nearest to a world position.
func (g *Grid) CellAt(p Vec2) (Cell, bool) {
	idx, ok := g.Region.TranslationToIndex(p)
	if !ok {
		return Cell{}, false
	}
	return g.Cell(idx)
}

// SetFluid paints the cell nearest to p as fluid with an initial velocity.
// Solid cells and positions outside the region are left untouched.
func (g *Grid) SetFluid(p Vec2, c color.RGBA, vel Vec2) bool {
	idx, ok := g.Region.TranslationToIndex(p)
	if !ok || g.Kind[idx] == CellSolid {
		return false
	}
	g.Kind[idx] = CellFluid
	g.Color[idx] = c
	g.Velocity[idx] = vel
	return true
}

// Reset clears velocity, divergence and pressure on every cell, keeping obstacles.
func (g *Grid) Reset() {
	clear(g.Velocity)
	clear(g.Divergence)
	clear(g.Pressure)
	clear(g.pressureNext)
}
