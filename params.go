package drape

import "math"

// PieceID names a garment whose assets live under a directory of the same name.
type PieceID string

const (
	PieceManShirt  PieceID = "man_shirt"
	PieceSilkScarf PieceID = "silk_scarf"
)

// DefaultPiece is the garment shown on startup.
const DefaultPiece = PieceManShirt

// Pieces lists the garments shipped with the asset pack, in menu order.
var Pieces = []PieceID{PieceManShirt, PieceSilkScarf}

// PatternTransform positions the pattern tile on the garment UVs.
// Rotation is in degrees. Offsets are unbounded; the texture wraps.
type PatternTransform struct {
	OffsetX  float64
	OffsetY  float64
	Scale    float64
	Rotation float64
}

// ColorAdjustment is the global canvas filter. Hue is in degrees.
type ColorAdjustment struct {
	Hue        float64
	Saturation float64
	Lightness  float64
}

// LightingAdjustment drives the two spotlights of the lighting rig.
type LightingAdjustment struct {
	Shadow    float64
	Highlight float64
}

// State is a full snapshot of the user-editable parameters.
type State struct {
	Piece     PieceID
	Transform PatternTransform
	Color     ColorAdjustment
	Lighting  LightingAdjustment
}

// DefaultTransform returns the identity pattern placement.
func DefaultTransform() PatternTransform {
	return PatternTransform{Scale: 1}
}

// DefaultColor returns the neutral color adjustment.
func DefaultColor() ColorAdjustment {
	return ColorAdjustment{Hue: 0, Saturation: 1, Lightness: 1}
}

// DefaultLighting returns lighting with both spotlights off.
func DefaultLighting() LightingAdjustment {
	return LightingAdjustment{}
}

// DefaultState returns the startup parameter state.
func DefaultState() State {
	return State{
		Piece:     DefaultPiece,
		Transform: DefaultTransform(),
		Color:     DefaultColor(),
		Lighting:  DefaultLighting(),
	}
}

// SliderRange documents the bounds a UI control allows for a parameter.
// The core never re-validates; UI code clamps with Clamp before dispatch.
type SliderRange struct {
	Min, Max, Step float64
}

// Clamp restricts v to [Min, Max].
func (r SliderRange) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return max(r.Min, min(r.Max, v))
}

// Contains reports whether v lies within the range, inclusive.
func (r SliderRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	ScaleRange      = SliderRange{Min: 0.5, Max: 1.5, Step: 0.01}
	HueRange        = SliderRange{Min: -180, Max: 180, Step: 1}
	SaturationRange = SliderRange{Min: 0, Max: 2, Step: 0.01}
	LightnessRange  = SliderRange{Min: 0.5, Max: 1.5, Step: 0.01}
	ShadowRange     = SliderRange{Min: 0, Max: 0.7, Step: 0.01}
	HighlightRange  = SliderRange{Min: 0, Max: 1, Step: 0.01}
)

// cardinal reports which cardinal rotation deg matches, if any. -270 and 270
// fold onto 90 and -90; -180 folds onto 180.
func cardinal(deg float64) (int, bool) {
	d := math.Mod(deg, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	switch d {
	case 0:
		return 0, true
	case 90:
		return 90, true
	case -90:
		return -90, true
	case 180:
		return 180, true
	}
	return 0, false
}
