package drape

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Layer names used for the nodes built by the compositor.
const (
	LayerRoot     = "layers"
	LayerGarment  = "garment"
	LayerLight    = "light"
	LayerOverlay  = "overlay"
	LayerOccluder = "occluder"
)

// render orders; lower draws first
const (
	orderGarment = -1 << 20
	orderLight   = 0
	orderOverlay = 1
)

// Assets is the GPU-side asset set of a piece. It is created on the game
// thread from decoded Resources and owns its images.
type Assets struct {
	Piece   PieceID
	Mesh    *Geometry
	Pattern *ebiten.Image
	Overlay *ebiten.Image
	Light   *ebiten.Image
	Base    *ebiten.Image
}

// UploadResources converts decoded resources to ebiten images. Missing
// resources stay nil.
func UploadResources(res *Resources) *Assets {
	a := &Assets{Piece: res.Piece, Mesh: res.Mesh}
	a.Pattern = newImageOrNil(res.Pattern)
	a.Overlay = newImageOrNil(res.Overlay)
	a.Light = newImageOrNil(res.Light)
	a.Base = newImageOrNil(res.Base)
	return a
}

func newImageOrNil(img image.Image) *ebiten.Image {
	if img == nil {
		return nil
	}
	return ebiten.NewImageFromImage(img)
}

// Dispose releases the images.
func (a *Assets) Dispose() {
	for _, img := range []*ebiten.Image{a.Pattern, a.Overlay, a.Light, a.Base} {
		if img != nil {
			img.Deallocate()
		}
	}
	a.Pattern, a.Overlay, a.Light, a.Base = nil, nil, nil, nil
}

// Compositor maintains the layer stack that fakes lighting and color changes
// on a flat garment photo: the shaded pattern mesh, a light-map plane, an
// overlay mask plane, a canvas-wide color filter and the base image drawn on
// top. It follows the parameter store and updates layer state synchronously
// on every dispatch.
type Compositor struct {
	store ParameterStore
	cal   Calibration
	sub   Subscription

	Pattern *PatternTexture
	Rig     *LightingRig
	Filter  *ColorFilter
	Base    *ebiten.Image

	garment  *Node
	light    *Node
	overlay  *Node
	occluder *Node
}

// NewCompositor creates a compositor bound to store and applies its current
// state.
func NewCompositor(store ParameterStore, cal Calibration) *Compositor {
	c := &Compositor{
		store:   store,
		cal:     cal,
		Pattern: NewPatternTexture(nil),
		Rig:     NewLightingRig(),
		Filter:  NewColorFilter(),
	}
	c.applyState(store.State())
	c.sub = store.Subscribe(c.onAction)
	return c
}

// Close stops following the store.
func (c *Compositor) Close() {
	c.sub.Remove()
}

func (c *Compositor) applyState(s State) {
	c.ApplyTransform(s.Transform)
	c.ApplyLighting(s.Lighting, s.Color.Lightness)
	c.ApplyColor(s.Color)
}

func (c *Compositor) onAction(a Action, s State) {
	switch a.Type {
	case ActionSetScale, ActionSetRotation, ActionSetOffsetX, ActionSetOffsetY, ActionResetScale:
		c.ApplyTransform(s.Transform)
	case ActionSetShadow, ActionSetHighlight, ActionSetLightness, ActionResetLights:
		c.ApplyLighting(s.Lighting, s.Color.Lightness)
	case ActionSetHue, ActionSetSaturation:
		c.ApplyColor(s.Color)
	case ActionResetColors:
		// Lightness drives the ambient light.
		c.ApplyColor(s.Color)
		c.ApplyLighting(s.Lighting, s.Color.Lightness)
	}
}

// ApplyTransform recomputes the pattern UV transform from t.
func (c *Compositor) ApplyTransform(t PatternTransform) {
	c.Pattern.SetTransform(t)
}

// ApplyLighting sets spotlight intensities and the ambient level. Shadow
// removes ambient light in proportion to the coupling factor, floored at 0.
func (c *Compositor) ApplyLighting(l LightingAdjustment, lightness float64) {
	c.Rig.Highlight.Intensity = l.Highlight
	c.Rig.Shadow.Intensity = l.Shadow
	c.Rig.Ambient = max(0, lightness-l.Shadow*c.cal.AmbientShadowCoupling)
}

// ApplyColor updates the canvas filter.
func (c *Compositor) ApplyColor(col ColorAdjustment) {
	c.Filter.Set(col.Hue, col.Saturation)
}

// BuildLayers instantiates the layer stack for a loaded piece and returns its
// root. Layers whose resource failed to load are omitted; without a mesh the
// stack has no drag target.
func (c *Compositor) BuildLayers(a *Assets) *Node {
	root := NewContainer(LayerRoot)
	c.garment, c.light, c.overlay = nil, nil, nil

	c.Pattern.Image = a.Pattern
	if a.Pattern != nil {
		b := a.Pattern.Bounds()
		c.Pattern.Width, c.Pattern.Height = b.Dx(), b.Dy()
	}
	c.Base = a.Base

	if a.Mesh != nil {
		g := NewMesh(LayerGarment, a.Mesh, &Material{
			Pattern: c.Pattern,
			Color:   ColorWhite,
			Blend:   BlendNormal,
			Shaded:  true,
		})
		g.Tag = TagGarment
		g.RenderOrder = orderGarment
		s := float32(c.cal.MeshScale)
		g.SetScale(s, s, 1)
		root.AddChild(g)
		c.garment = g
	}

	size := float32(c.cal.PlaneSize)
	if a.Light != nil {
		p := NewPlane(LayerLight, size, size, a.Light, BlendAdditiveSaturating)
		p.SetPosition(0, 0, float32(c.cal.LightDepth))
		p.RenderOrder = orderLight
		root.AddChild(p)
		c.light = p
	}
	if a.Overlay != nil {
		p := NewPlane(LayerOverlay, size, size, a.Overlay, BlendReverseSubtractiveMask)
		p.SetPosition(0, 0, float32(c.cal.OverlayDepth))
		p.RenderOrder = orderOverlay
		root.AddChild(p)
		c.overlay = p
	}

	occ := NewOccluder(LayerOccluder, 10)
	occ.SetPosition(8, -10, 10)
	root.AddChild(occ)
	c.occluder = occ
	c.Rig.Occluders = []SphereOccluder{{Center: occ.WorldPosition(), Radius: 10}}

	return root
}

// Garment returns the drag target of the current stack, or nil.
func (c *Compositor) Garment() *Node { return c.garment }

// LightPlane returns the light-map plane, or nil when the light map is missing.
func (c *Compositor) LightPlane() *Node { return c.light }

// OverlayPlane returns the overlay mask plane, or nil.
func (c *Compositor) OverlayPlane() *Node { return c.overlay }

// Occluder returns the invisible shadow-casting sphere.
func (c *Compositor) Occluder() *Node { return c.occluder }
