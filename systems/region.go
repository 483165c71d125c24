package systems

// Region is an axis-aligned rectangle of square cells.
// Cell indices are a row-major linearization: index = row*Cols + col.
// Row 0 is the bottom row; rows grow along +Y.
type Region struct {
	Origin   Vec2    // World position of the center of cell 0
	Cols     int     // Cells along X
	Rows     int     // Cells along Y
	CellSize float32 // Edge length of one cell
}

// NewRegion creates a region. Non-positive dimensions produce an empty region.
func NewRegion(origin Vec2, cols, rows int, cellSize float32) Region {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return Region{Origin: origin, Cols: cols, Rows: rows, CellSize: cellSize}
}

// Len returns the number of cells in the region.
func (r Region) Len() int {
	return r.Cols * r.Rows
}

// Extent returns the world position just past the last cell on both axes.
func (r Region) Extent() Vec2 {
	return Vec2{
		X: r.Origin.X + float32(r.Cols)*r.CellSize,
		Y: r.Origin.Y + float32(r.Rows)*r.CellSize,
	}
}

// Contains reports whether p lies inside [Origin, Extent) on both axes.
func (r Region) Contains(p Vec2) bool {
	if p.X < r.Origin.X || p.Y < r.Origin.Y {
		return false
	}
	ext := r.Extent()
	return p.X < ext.X && p.Y < ext.Y
}

// TranslationToIndex converts a world position to the index of the nearest cell.
// Positions before the origin or at/after the extent return false.
// Inside the region the position is rounded, not truncated, to the best candidate cell;
// the upper half of the last column/row stays in that column/row.
func (r Region) TranslationToIndex(p Vec2) (int, bool) {
	if r.CellSize <= 0 || !r.Contains(p) {
		return 0, false
	}

	// Remove origin so that (0,0) is cell 0
	cx := (p.X - r.Origin.X) / r.CellSize
	cy := (p.Y - r.Origin.Y) / r.CellSize

	col := roundHalfUp(cx)
	if col >= r.Cols {
		col = r.Cols - 1
	}
	row := roundHalfUp(cy)
	if row >= r.Rows {
		row = r.Rows - 1
	}

	return row*r.Cols + col, true
}

// IndexToTranslation returns the world position of a cell.
// Invalid indices return false.
func (r Region) IndexToTranslation(index int) (Vec2, bool) {
	if index < 0 || index >= r.Len() {
		return Vec2{}, false
	}
	return r.IndexToTranslationUnchecked(index), true
}

// IndexToTranslationUnchecked is IndexToTranslation for indices the caller knows are valid.
func (r Region) IndexToTranslationUnchecked(index int) Vec2 {
	col := index % r.Cols
	row := index / r.Cols
	return Vec2{
		X: r.Origin.X + float32(col)*r.CellSize,
		Y: r.Origin.Y + float32(row)*r.CellSize,
	}
}

// ColRow splits a valid index into its column and row.
func (r Region) ColRow(index int) (col, row int) {
	return index % r.Cols, index / r.Cols
}
