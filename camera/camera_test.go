package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 0, 0, 2560, 1440)

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected camera at (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.MinZoom != 0.5 {
		t.Errorf("expected min zoom 0.5, got %f", cam.MinZoom)
	}
}

func TestWorldToScreenFlipsY(t *testing.T) {
	cam := New(1280, 720, 0, 0, 1280, 720)

	tests := []struct {
		name   string
		wx, wy float32
		sx, sy float32
	}{
		{"center", 640, 360, 640, 360},
		{"world origin is bottom-left", 0, 0, 0, 720},
		{"world top-right", 1280, 720, 1280, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := cam.WorldToScreen(tt.wx, tt.wy)
			if !near(sx, tt.sx) || !near(sy, tt.sy) {
				t.Errorf("WorldToScreen(%v, %v) = (%v, %v), want (%v, %v)", tt.wx, tt.wy, sx, sy, tt.sx, tt.sy)
			}
		})
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, -100, 50, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(300, -200)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInsideWorld(t *testing.T) {
	cam := New(1280, 720, 0, 0, 2560, 1440)

	cam.Pan(-10000, 10000) // left and down on screen
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if !near(minX, 0) || !near(minY, 0) {
		t.Errorf("visible min = (%v, %v), want (0, 0)", minX, minY)
	}

	cam.Pan(10000, -10000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if !near(maxX, 2560) || !near(maxY, 1440) {
		t.Errorf("visible max = (%v, %v), want (2560, 1440)", maxX, maxY)
	}
}

func TestPanScreenDirection(t *testing.T) {
	cam := New(1280, 720, 0, 0, 2560, 1440)
	x, y := cam.X, cam.Y

	cam.Pan(100, 100) // right and down on screen
	if cam.X <= x {
		t.Errorf("X = %v, want > %v", cam.X, x)
	}
	if cam.Y >= y {
		t.Errorf("Y = %v, want < %v", cam.Y, y)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(1280, 720, 0, 0, 2560, 1440)

	cam.SetZoom(10)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}

	cam.SetZoom(0.1)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestResizeRaisesMinZoom(t *testing.T) {
	cam := New(1280, 720, 0, 0, 1280, 720)
	cam.Resize(1920, 1080)

	if cam.MinZoom != 1.5 || cam.Zoom != 1.5 {
		t.Errorf("MinZoom = %v, Zoom = %v, want 1.5 and 1.5", cam.MinZoom, cam.Zoom)
	}
}

func TestInWorldAndVisible(t *testing.T) {
	cam := New(1280, 720, 0, 0, 1280, 720)

	if !cam.InWorld(0, 720) || cam.InWorld(-1, 10) || cam.InWorld(10, 721) {
		t.Error("InWorld disagrees with world rectangle")
	}
	if !cam.IsVisible(1285, 360, 10) {
		t.Error("circle overlapping right edge reported invisible")
	}
	if cam.IsVisible(1300, 360, 10) {
		t.Error("circle beyond right edge reported visible")
	}
}
