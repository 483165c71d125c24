package ui

import (
	"fmt"

	"github.com/pthm-cable/fluidsand/systems"
)

// Inspector shows the grid cell under the cursor.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders the panel for cell c.
func (in *Inspector) Draw(c systems.Cell) {
	r := in.renderer
	pad := r.Theme.Padding
	r.DrawPanel(in.x, in.y, in.width, 8*r.Theme.LineHeight+pad*2)

	x := in.x + pad
	y := r.DrawSectionHeader(x, in.y+pad, fmt.Sprintf("Cell %d", c.Index))
	y = r.DrawLabelValue(x, y, "Center", fmt.Sprintf("(%.1f, %.1f)", c.Center.X, c.Center.Y))
	y = r.DrawLabelValue(x, y, "Kind", kindLabel(c.Kind))
	y = r.DrawLabelValue(x, y, "Velocity", fmt.Sprintf("(%.2f, %.2f)", c.Velocity.X, c.Velocity.Y))
	y = r.DrawLabelValue(x, y, "Pressure", fmt.Sprintf("%.4f", c.Pressure))
	y = r.DrawLabelValue(x, y, "Divergence", fmt.Sprintf("%.4f", c.Divergence))
	n := c.Neighbors
	r.DrawLabelValue(x, y, "Neighbors", fmt.Sprintf("T%d L%d R%d B%d",
		n[systems.SlotTop], n[systems.SlotLeft], n[systems.SlotRight], n[systems.SlotBottom]))
}

func kindLabel(k systems.CellKind) string {
	switch k {
	case systems.CellFluid:
		return "fluid"
	case systems.CellSolid:
		return "solid"
	}
	return "open"
}
