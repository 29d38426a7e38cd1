package drape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

func newTestRenderer() *Renderer {
	c := NewComposer(NewStore(DefaultState()), nil, DefaultCalibration())
	return NewRenderer(c, 64)
}

func TestRendererCanvasSize(t *testing.T) {
	r := newTestRenderer()
	if b := r.Canvas().Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("canvas = %v, want 64x64", b)
	}
}

func TestRendererDrawWithoutScene(t *testing.T) {
	r := newTestRenderer()
	r.Draw(nil, 1)
	r.Draw(ebiten.NewImage(8, 8), 2)
	if r.stats.drawCallCount != 0 {
		t.Errorf("draw calls = %d without a scene", r.stats.drawCallCount)
	}
}

func TestRendererBackfaceCulling(t *testing.T) {
	tests := []struct {
		name        string
		mirror      bool
		doubleSided bool
		want        int
	}{
		{"front", false, false, 2},
		{"back", true, false, 0},
		{"back double sided", true, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer()
			scene, garment, _ := newTestScene()
			garment.Material.DoubleSided = tt.doubleSided
			if tt.mirror {
				garment.SetScale(-25, 25, 1)
			}
			r.drawNode(garment, scene.Camera.ViewProjection())
			if r.stats.triangleCount != tt.want {
				t.Errorf("triangles = %d, want %d", r.stats.triangleCount, tt.want)
			}
		})
	}
}

func TestRendererVertexColors(t *testing.T) {
	r := newTestRenderer()
	scene, garment, _ := newTestScene()
	garment.Material.Shaded = false
	garment.Material.Color = Color{1, 0.5, 0.25, 1}
	garment.Opacity = 0.5
	r.drawNode(garment, scene.Camera.ViewProjection())

	// Premultiplied by opacity.
	v := garment.vertices[0]
	if v.ColorA != 0.5 || v.ColorR != 0.5 || v.ColorG != 0.25 || v.ColorB != 0.125 {
		t.Errorf("vertex color = (%v, %v, %v, %v)", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
	}
	// Missing texture samples the white pixel center.
	if v.SrcX != 0.5 || v.SrcY != 0.5 {
		t.Errorf("src = (%v, %v), want the white pixel center", v.SrcX, v.SrcY)
	}
	// The panel straddles the canvas center.
	if v.DstX >= 32 || v.DstY >= 32 {
		t.Errorf("top-left corner projected to (%v, %v)", v.DstX, v.DstY)
	}
}

func TestRendererSkipsEmptyGeometry(t *testing.T) {
	r := newTestRenderer()
	n := NewMesh("empty", &Geometry{}, &Material{Color: ColorWhite})
	r.drawNode(n, mgl32.Ident4())
	if r.stats.drawCallCount != 0 {
		t.Errorf("draw calls = %d for empty geometry", r.stats.drawCallCount)
	}
}

// shadedPatchColor draws a white shaded patch at the highlight target and
// returns the red channel of its first vertex.
func shadedPatchColor(t *testing.T, actions ...Action) float32 {
	t.Helper()
	r := newTestRenderer()
	for _, a := range actions {
		r.composer.store.Dispatch(a)
	}
	scene, _, _ := newTestScene()
	target := r.composer.Compositor.Rig.Highlight.Target
	patch := NewMesh("patch", NewPlaneGeometry(1, 1), &Material{Color: ColorWhite, Blend: BlendNormal, Shaded: true})
	patch.SetPosition(target.X(), target.Y(), target.Z())
	r.drawNode(patch, scene.Camera.ViewProjection())
	if r.stats.drawCallCount != 1 {
		t.Fatalf("draw calls = %d, want 1", r.stats.drawCallCount)
	}
	return patch.vertices[0].ColorR
}

func TestRendererShadeAboveOne(t *testing.T) {
	base := shadedPatchColor(t)
	if base != 1 {
		t.Fatalf("default shade = %v, want 1", base)
	}
	tests := []struct {
		name    string
		actions []Action
	}{
		{"highlight", []Action{SetHighlight(1)}},
		{"lightness", []Action{SetLightness(1.5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shadedPatchColor(t, tt.actions...); got <= base {
				t.Errorf("vertex red = %v, want above %v", got, base)
			}
		})
	}
}
