package ui

import (
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/tools"
)

const (
	toolWidth  = 80
	toolHeight = 28
	modeWidth  = 110
)

// ToolbarAction reports what the user clicked on the tool bar this frame.
type ToolbarAction struct {
	Tool       tools.Tool
	ToggleMode bool
}

// Toolbar is the strip of tool buttons along the top of the window.
type Toolbar struct {
	x, y   float32
	labels string
}

// NewToolbar creates a tool bar anchored at (x, y).
func NewToolbar(x, y float32) *Toolbar {
	names := make([]string, len(tools.All))
	for i, t := range tools.All {
		names[i] = t.String()
	}
	return &Toolbar{x: x, y: y, labels: strings.Join(names, ";")}
}

// Bounds returns the screen rectangle covered by the bar.
func (tb *Toolbar) Bounds() rl.Rectangle {
	return rl.Rectangle{
		X:      tb.x,
		Y:      tb.y,
		Width:  float32(len(tools.All))*toolWidth + 10 + modeWidth,
		Height: toolHeight,
	}
}

// Contains reports whether a screen point is over the bar.
func (tb *Toolbar) Contains(x, y float32) bool {
	b := tb.Bounds()
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Draw renders the bar with active selected and returns the user's choice.
func (tb *Toolbar) Draw(active tools.Tool, modeLabel string) ToolbarAction {
	b := tb.Bounds()
	rl.DrawRectangle(int32(b.X)-4, int32(b.Y)-4, int32(b.Width)+8, int32(b.Height)+8, DefaultTheme().PanelBg)

	selected := gui.ToggleGroup(rl.Rectangle{X: tb.x, Y: tb.y, Width: toolWidth, Height: toolHeight}, tb.labels, int32(active))

	modeBounds := rl.Rectangle{
		X:      tb.x + float32(len(tools.All))*toolWidth + 10,
		Y:      tb.y,
		Width:  modeWidth,
		Height: toolHeight,
	}
	return ToolbarAction{
		Tool:       tools.Tool(selected),
		ToggleMode: gui.Button(modeBounds, modeLabel),
	}
}
