package drape

import (
	"image"
	"image/color"
	"math"
	"testing"
)

const uvEpsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestPatternTextureRepeatFollowsScale(t *testing.T) {
	tests := []struct {
		scale        float64
		wantX, wantY float64
	}{
		{1, 1, 0.5},
		{0.5, 2, 1},
		{1.5, 1 / 1.5, 0.5 / 1.5},
		{0, 1, 0.5},
	}
	for _, tt := range tests {
		tex := NewPatternTexture(nil)
		tex.SetTransform(PatternTransform{Scale: tt.scale})
		if !approxEqual(tex.Repeat.X, tt.wantX, uvEpsilon) || !approxEqual(tex.Repeat.Y, tt.wantY, uvEpsilon) {
			t.Errorf("scale %v: Repeat = %+v, want (%v, %v)", tt.scale, tex.Repeat, tt.wantX, tt.wantY)
		}
	}
}

func TestPatternTextureIndependentOfHistory(t *testing.T) {
	a := NewPatternTexture(nil)
	for _, s := range []float64{0.5, 1.5, 0.7, 1.2, 0.9} {
		a.SetTransform(PatternTransform{Scale: s, Rotation: 90, OffsetX: s})
	}
	a.SetTransform(PatternTransform{Scale: 0.8, Rotation: -90, OffsetX: 0.1, OffsetY: 0.2})

	b := NewPatternTexture(nil)
	b.SetTransform(PatternTransform{Scale: 0.8, Rotation: -90, OffsetX: 0.1, OffsetY: 0.2})

	if a.UVMatrix() != b.UVMatrix() {
		t.Errorf("UVMatrix = %v, want %v", a.UVMatrix(), b.UVMatrix())
	}
}

func TestPatternTextureIdentity(t *testing.T) {
	tex := NewPatternTexture(nil)
	want := [6]float64{1, 0, 0, 1, 0, 0}
	got := tex.UVMatrix()
	for i := range want {
		if !approxEqual(got[i], want[i], uvEpsilon) {
			t.Fatalf("UVMatrix = %v, want %v", got, want)
		}
	}
}

func TestPatternTextureMapUV(t *testing.T) {
	tex := NewPatternTexture(nil)
	tex.SetTransform(PatternTransform{Scale: 1, OffsetX: 0.25, OffsetY: -0.5})
	u, v := tex.MapUV(0.5, 0.5)
	// Center maps to center scaled by repeat, plus offset.
	if !approxEqual(u, 0.75, uvEpsilon) || !approxEqual(v, 0.0, uvEpsilon) {
		t.Errorf("MapUV(0.5, 0.5) = (%v, %v), want (0.75, 0)", u, v)
	}

	// The center of rotation is fixed under any rotation at unit repeat.
	tex.Repeat = Vec2{X: 1, Y: 1}
	tex.Offset = Vec2{}
	tex.Rotation = degToRad(90)
	u, v = tex.MapUV(0.5, 0.5)
	if !approxEqual(u, 0.5, uvEpsilon) || !approxEqual(v, 0.5, uvEpsilon) {
		t.Errorf("rotated center = (%v, %v), want (0.5, 0.5)", u, v)
	}
	// A quarter turn moves (1, 0.5) onto (0.5, 0).
	u, v = tex.MapUV(1, 0.5)
	if !approxEqual(u, 0.5, 1e-9) || !approxEqual(v, 0, 1e-9) {
		t.Errorf("rotated (1, 0.5) = (%v, %v), want (0.5, 0)", u, v)
	}
}

func TestPatternTextureSourcePoint(t *testing.T) {
	tex := NewPatternTexture(nil)
	tex.Width, tex.Height = 200, 100
	x, y := tex.SourcePoint(0, 0)
	if x != 0 || y != 100 {
		t.Errorf("SourcePoint(0, 0) = (%v, %v), want (0, 100)", x, y)
	}
	x, y = tex.SourcePoint(1, 1)
	if x != 200 || y != 0 {
		t.Errorf("SourcePoint(1, 1) = (%v, %v), want (200, 0)", x, y)
	}
}

func TestAlphaMapImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	src.Set(1, 0, color.RGBA{A: 255})

	got := alphaMapImage(src)
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, G: 255, B: 255, A: 200}) {
		t.Errorf("pixel 0 = %v", c)
	}
	if c := got.NRGBAAt(1, 0); c.A != 0 || c.R != 255 {
		t.Errorf("pixel 1 = %v", c)
	}
}

func TestOpaqueImage(t *testing.T) {
	if opaqueImage(nil) != nil {
		t.Error("opaqueImage(nil) should be nil")
	}
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 128})
	got := opaqueImage(src).(*image.NRGBA)
	c := got.NRGBAAt(0, 0)
	if c.A != 255 {
		t.Errorf("alpha = %d, want 255", c.A)
	}
	if c.R != 40 || c.G != 50 || c.B != 60 {
		t.Errorf("rgb = (%d, %d, %d), want (40, 50, 60)", c.R, c.G, c.B)
	}
}
