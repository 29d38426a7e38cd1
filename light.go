package drape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SpotLight is a cone light aimed from Position at Target. Angle is the outer
// half-angle in radians; Penumbra in [0, 1] is the fraction of the cone over
// which the light fades out.
type SpotLight struct {
	Name       string
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	Angle      float64
	Penumbra   float64
	Intensity  float64
	CastShadow bool
}

// cone returns the angular attenuation for a point p.
func (s *SpotLight) cone(p mgl32.Vec3) float64 {
	axis := s.Target.Sub(s.Position).Normalize()
	toP := p.Sub(s.Position).Normalize()
	cosTheta := float64(axis.Dot(toP))
	outer := math.Cos(s.Angle)
	inner := math.Cos(s.Angle * (1 - s.Penumbra))
	return smoothstep(outer, inner, cosTheta)
}

// SphereOccluder is a sphere that blocks light from shadow-casting lights.
type SphereOccluder struct {
	Center mgl32.Vec3
	Radius float64
}

// transmittance returns 1 when the segment from p to light clears the sphere
// and falls to 0 as it passes through its core. softness is the penumbra
// band width relative to the radius.
func (o SphereOccluder) transmittance(p, light mgl32.Vec3, softness float64) float64 {
	seg := light.Sub(p)
	segLen2 := float64(seg.Dot(seg))
	if segLen2 == 0 {
		return 1
	}
	t := float64(o.Center.Sub(p).Dot(seg)) / segLen2
	if t <= 0 || t >= 1 {
		// The sphere is behind the point or beyond the light.
		return 1
	}
	closest := p.Add(seg.Mul(float32(t)))
	d := float64(closest.Sub(o.Center).Len())
	band := o.Radius * softness
	return smoothstep(o.Radius-band, o.Radius+band, d)
}

// LightingRig is the ambient light plus the highlight and shadow spotlights
// used to shade the garment, and the occluders that cast the soft shadow.
type LightingRig struct {
	Ambient   float64
	Highlight SpotLight
	Shadow    SpotLight
	Occluders []SphereOccluder
	// Softness is the shadow penumbra width as a fraction of occluder radius.
	Softness float64
}

// NewLightingRig returns the rig with both spotlights off and full ambient.
func NewLightingRig() *LightingRig {
	return &LightingRig{
		Ambient: 1,
		Highlight: SpotLight{
			Name:     "highlight",
			Position: mgl32.Vec3{-25, 15, 15},
			Target:   mgl32.Vec3{-5, 5, 0},
			Angle:    math.Pi / 9,
			Penumbra: 0.5,
		},
		Shadow: SpotLight{
			Name:       "shadow",
			Position:   mgl32.Vec3{0, -10, 25},
			Target:     mgl32.Vec3{10, 5, 0},
			Angle:      math.Pi / 3,
			CastShadow: true,
		},
		Softness: 0.3,
	}
}

// Spots returns the rig's spotlights.
func (r *LightingRig) Spots() []*SpotLight {
	return []*SpotLight{&r.Highlight, &r.Shadow}
}

// ShadeVertex returns the non-negative light factor for a world-space
// position and unit normal. It may exceed 1; the shaded color is clamped per
// channel after the texel is scaled.
func (r *LightingRig) ShadeVertex(p, n mgl32.Vec3) float64 {
	total := r.Ambient
	for _, s := range r.Spots() {
		if s.Intensity <= 0 {
			continue
		}
		l := s.Position.Sub(p).Normalize()
		ndotl := float64(n.Dot(l))
		if ndotl <= 0 {
			continue
		}
		contrib := s.Intensity * ndotl * s.cone(p)
		if s.CastShadow {
			for _, o := range r.Occluders {
				contrib *= o.transmittance(p, s.Position, r.Softness)
			}
		}
		total += contrib
	}
	return max(0, total)
}
