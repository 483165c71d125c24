package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidsand/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float32 // Delta from query origin
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a bucketed cell grid.
// It plays the broad-phase collider for the particle sensors: it is rebuilt
// every tick and only reports candidate overlaps, it does no fluid math.
type SpatialGrid struct {
	cellSize float32
	originX  float32
	originY  float32
	cols     int
	rows     int
	cells    [][]ecs.Entity // flat grid of entity lists
}

// NewSpatialGrid creates a spatial grid covering [origin, origin+size).
// Positions outside are clamped into the border buckets.
func NewSpatialGrid(originX, originY, width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		originX:  originX,
		originY:  originY,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto finds entities within radius and appends them to dst.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	// A point within radius is never more than ceil(radius/cellSize) buckets away
	cellRadius := int(math.Ceil(float64(radius / g.cellSize)))

	centerCol, centerRow := g.colRow(x, y)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}

				pos := posMap.Get(e)
				if pos == nil {
					continue
				}

				dx := pos.X - x
				dy := pos.Y - y
				distSq := dx*dx + dy*dy
				if distSq < radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// colRow returns the clamped bucket coordinates for a world position.
func (g *SpatialGrid) colRow(x, y float32) (int, int) {
	col := int((x - g.originX) / g.cellSize)
	row := int((y - g.originY) / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat bucket index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col, row := g.colRow(x, y)
	return row*g.cols + col
}
