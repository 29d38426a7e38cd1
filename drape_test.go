package drape

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
)

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.3, 0.3}, {1, 1}, {2, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		e0, e1, x, want float64
	}{
		{0, 1, -1, 0},
		{0, 1, 0, 0},
		{0, 1, 0.5, 0.5},
		{0, 1, 1, 1},
		{0, 1, 3, 1},
		{0, 2, 0.5, 0.15625},
		// Coincident edges step hard.
		{1, 1, 0.99, 0},
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		if got := smoothstep(tt.e0, tt.e1, tt.x); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("smoothstep(%v, %v, %v) = %v, want %v", tt.e0, tt.e1, tt.x, got, tt.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},
		{110, 70, true},
		{60, 45, true},
		{9, 45, false},
		{60, 71, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestColorToRGBA(t *testing.T) {
	got := Color{1, 0.5, 0, 0.5}.toRGBA()
	want := color.RGBA{R: 127, G: 63, B: 0, A: 127}
	if got != want {
		t.Errorf("toRGBA = %v, want %v", got, want)
	}
	if got := (Color{2, -1, 0, 1}).toRGBA(); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("out of range toRGBA = %v", got)
	}
}

func TestNodeTypeString(t *testing.T) {
	tests := []struct {
		typ  NodeType
		want string
	}{
		{NodeTypeContainer, "container"},
		{NodeTypeMesh, "mesh"},
		{NodeTypePlane, "plane"},
		{NodeTypeOccluder, "occluder"},
		{NodeType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := LogOutput
	LogOutput = &buf
	t.Cleanup(func() { LogOutput = prev })
	return &buf
}

func TestLogf(t *testing.T) {
	buf := captureLog(t)
	logf("loaded %s in %d ms", "mesh", 12)
	if got := buf.String(); got != "[drape] loaded mesh in 12 ms\n" {
		t.Errorf("logf wrote %q", got)
	}
}

func TestDebugfGated(t *testing.T) {
	buf := captureLog(t)
	debugf("hidden")
	debugLog(1, debugStats{triangleCount: 4})
	if buf.Len() != 0 {
		t.Errorf("debug output with debug off: %q", buf.String())
	}

	SetDebugMode(true)
	defer SetDebugMode(false)
	debugf("shown %d", 1)
	debugLog(7, debugStats{triangleCount: 4, drawCallCount: 2})
	out := buf.String()
	for _, want := range []string{"shown 1", "frame 7", "triangles: 4 | draw calls: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output %q missing %q", out, want)
		}
	}
}
