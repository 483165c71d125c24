package systems

import "image/color"

// MarkSolid turns the cell at index into an impermeable obstacle.
// Marking is idempotent and permanent for the lifetime of the grid: re-marking
// an already solid cell changes nothing and returns false.
func (g *Grid) MarkSolid(index int, c color.RGBA) bool {
	if index < 0 || index >= g.Len() {
		return false
	}
	if g.Kind[index] == CellSolid {
		return false
	}

	g.Kind[index] = CellSolid
	g.Color[index] = c

	// Solid cells carry no fluid quantities
	g.Velocity[index] = Vec2{}
	g.Divergence[index] = 0
	g.Pressure[index] = 0
	g.pressureNext[index] = 0

	g.solidCount++
	return true
}

// MarkSolidAt marks the cell nearest to a world position as solid.
// Returns false if the position is outside the region or the cell was already solid.
func (g *Grid) MarkSolidAt(p Vec2, c color.RGBA) bool {
	idx, ok := g.Region.TranslationToIndex(p)
	if !ok {
		return false
	}
	return g.MarkSolid(idx, c)
}

// IsSolid reports whether the cell at index is an obstacle.
func (g *Grid) IsSolid(index int) bool {
	return index >= 0 && index < g.Len() && g.Kind[index] == CellSolid
}

// IsSolidAt reports whether the cell nearest to a world position is an obstacle.
// Positions outside the region are not solid.
func (g *Grid) IsSolidAt(p Vec2) bool {
	idx, ok := g.Region.TranslationToIndex(p)
	return ok && g.Kind[idx] == CellSolid
}

// SolidCount returns the number of obstacle cells.
func (g *Grid) SolidCount() int {
	return g.solidCount
}

// neighborOrSelf returns the neighbor in slot, or self when the slot is empty or solid.
// This is the zero-normal-derivative substitution used by the pressure stencils.
func (g *Grid) neighborOrSelf(index int, slot int) int {
	n := g.Neighbors[index][slot]
	if n == NoNeighbor || g.Kind[n] == CellSolid {
		return index
	}
	return int(n)
}
