package drape

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func approxColor(a, b [4]float64) bool {
	for i := range a {
		if !approxEqual(a[i], b[i], 1e-9) {
			return false
		}
	}
	return true
}

func TestBlendNormal(t *testing.T) {
	src := [4]float64{0.5, 0, 0, 0.5}
	dst := [4]float64{0, 0, 1, 1}
	got := BlendNormal.Blend(src, dst)
	want := [4]float64{0.5, 0, 0.5, 1}
	if !approxColor(got, want) {
		t.Errorf("Blend = %v, want %v", got, want)
	}
}

func TestBlendAdditiveSaturating(t *testing.T) {
	tests := []struct {
		name     string
		src, dst [4]float64
		want     [4]float64
	}{
		{
			// Uncovered canvas takes the light color as is.
			name: "empty destination",
			src:  [4]float64{0.3, 0.3, 0.3, 1},
			dst:  [4]float64{0, 0, 0, 0},
			want: [4]float64{0.3, 0.3, 0.3, 1},
		},
		{
			// Covered pixels are scaled by the inverse light color only.
			name: "opaque destination",
			src:  [4]float64{0.25, 0.5, 0, 1},
			dst:  [4]float64{0.8, 0.8, 0.8, 1},
			want: [4]float64{0.6, 0.4, 0.8, 1},
		},
		{
			name: "black light is a no-op on covered pixels",
			src:  [4]float64{0, 0, 0, 1},
			dst:  [4]float64{0.2, 0.4, 0.6, 1},
			want: [4]float64{0.2, 0.4, 0.6, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendAdditiveSaturating.Blend(tt.src, tt.dst)
			if !approxColor(got, tt.want) {
				t.Errorf("Blend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendReverseSubtractiveMask(t *testing.T) {
	// Premultiplied white at alpha a over an opaque destination scales the
	// destination by a.
	for _, a := range []float64{0, 0.25, 0.5, 1} {
		src := [4]float64{a, a, a, a}
		dst := [4]float64{0.8, 0.6, 0.4, 1}
		got := BlendReverseSubtractiveMask.Blend(src, dst)
		want := [4]float64{0.8 * a, 0.6 * a, 0.4 * a, a}
		if !approxColor(got, want) {
			t.Errorf("a=%v: Blend = %v, want %v", a, got, want)
		}
	}
}

func TestBlendClamps(t *testing.T) {
	m := BlendMode{Equation: BlendEquationSubtract, Source: BlendFactorOne, Destination: BlendFactorOne}
	got := m.Blend([4]float64{0.2, 0.2, 0.2, 0.2}, [4]float64{0.5, 0.5, 0.5, 0.5})
	if got != ([4]float64{}) {
		t.Errorf("Blend = %v, want zero", got)
	}
}

func TestBlendModeEbitenBlend(t *testing.T) {
	tests := []struct {
		mode BlendMode
		want ebiten.Blend
	}{
		{BlendNormal, ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}},
		{BlendAdditiveSaturating, ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOneMinusDestinationAlpha,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceColor,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}},
		{BlendReverseSubtractiveMask, ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOneMinusDestinationAlpha,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOneMinusDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationReverseSubtract,
			BlendOperationAlpha:         ebiten.BlendOperationReverseSubtract,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.EbitenBlend(); got != tt.want {
				t.Errorf("EbitenBlend() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBlendModeString(t *testing.T) {
	if got := (BlendMode{}).String(); got != "custom" {
		t.Errorf("String() = %q, want custom", got)
	}
	if got := BlendAdditiveSaturating.String(); got != "additive-saturating" {
		t.Errorf("String() = %q", got)
	}
}
