package drape

import (
	"math"
	"testing"
)

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	if s.Piece != PieceManShirt {
		t.Errorf("Piece = %q, want %q", s.Piece, PieceManShirt)
	}
	if s.Transform != (PatternTransform{Scale: 1}) {
		t.Errorf("Transform = %+v", s.Transform)
	}
	if s.Color != (ColorAdjustment{Saturation: 1, Lightness: 1}) {
		t.Errorf("Color = %+v", s.Color)
	}
	if s.Lighting != (LightingAdjustment{}) {
		t.Errorf("Lighting = %+v", s.Lighting)
	}
}

func TestSliderRangeClamp(t *testing.T) {
	tests := []struct {
		name string
		r    SliderRange
		in   float64
		want float64
	}{
		{"scale below", ScaleRange, 0.1, 0.5},
		{"scale above", ScaleRange, 3, 1.5},
		{"scale inside", ScaleRange, 1.1, 1.1},
		{"hue below", HueRange, -200, -180},
		{"shadow above", ShadowRange, 0.9, 0.7},
		{"nan", SaturationRange, math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Clamp(tt.in)
			if got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if !tt.r.Contains(got) {
				t.Errorf("Contains(%v) = false", got)
			}
		})
	}
}

func TestSliderRangesMatchDefaults(t *testing.T) {
	d := DefaultState()
	checks := []struct {
		name string
		r    SliderRange
		v    float64
	}{
		{"scale", ScaleRange, d.Transform.Scale},
		{"hue", HueRange, d.Color.Hue},
		{"saturation", SaturationRange, d.Color.Saturation},
		{"lightness", LightnessRange, d.Color.Lightness},
		{"shadow", ShadowRange, d.Lighting.Shadow},
		{"highlight", HighlightRange, d.Lighting.Highlight},
	}
	for _, c := range checks {
		if !c.r.Contains(c.v) {
			t.Errorf("%s default %v outside [%v, %v]", c.name, c.v, c.r.Min, c.r.Max)
		}
	}
}

func TestCardinal(t *testing.T) {
	tests := []struct {
		in   float64
		want int
		ok   bool
	}{
		{0, 0, true},
		{90, 90, true},
		{-90, -90, true},
		{180, 180, true},
		{-180, 180, true},
		{270, -90, true},
		{-270, 90, true},
		{450, 90, true},
		{45, 0, false},
		{89.5, 0, false},
	}
	for _, tt := range tests {
		got, ok := cardinal(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("cardinal(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
