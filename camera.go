package drape

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking at Target. FOV is the vertical field
// of view in degrees. Viewport is the screen-space rectangle the camera
// renders into; pointer positions are mapped through it.
type Camera struct {
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Viewport Rect

	viewProj    mgl32.Mat4
	invViewProj mgl32.Mat4
	dirty       bool
}

// NewCamera creates a camera on the +Z axis at distance, looking at the
// origin, with a square aspect.
func NewCamera(fov, distance, near, far float64, viewport Rect) *Camera {
	return &Camera{
		FOV:      fov,
		Aspect:   1,
		Near:     near,
		Far:      far,
		Position: mgl32.Vec3{0, 0, float32(distance)},
		Up:       mgl32.Vec3{0, 1, 0},
		Viewport: viewport,
		dirty:    true,
	}
}

// Invalidate forces the matrices to be recomputed after a field was changed
// directly.
func (c *Camera) Invalidate() {
	c.dirty = true
}

// SetViewport updates the screen rectangle.
func (c *Camera) SetViewport(r Rect) {
	c.Viewport = r
	c.dirty = true
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	proj := mgl32.Perspective(mgl32.DegToRad(float32(c.FOV)), float32(c.Aspect), float32(c.Near), float32(c.Far))
	view := mgl32.LookAtV(c.Position, c.Target, c.Up)
	c.viewProj = proj.Mul4(view)
	c.invViewProj = c.viewProj.Inv()
	c.dirty = false
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.update()
	return c.viewProj
}

// Project maps a world-space point to viewport pixels. ok is false for points
// behind the camera.
func (c *Camera) Project(p mgl32.Vec3) (x, y, depth float64, ok bool) {
	c.update()
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x, y = c.NDCToScreen(float64(ndc.X()), float64(ndc.Y()))
	return x, y, float64(ndc.Z()), true
}

// ScreenToNDC maps a screen position to normalized device coordinates in
// [-1, 1], Y up. Points outside the viewport map outside that range.
func (c *Camera) ScreenToNDC(sx, sy float64) (float64, float64) {
	vp := c.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		return 0, 0
	}
	return (sx-vp.X)/vp.Width*2 - 1, -((sy-vp.Y)/vp.Height*2 - 1)
}

// NDCToScreen is the inverse of ScreenToNDC.
func (c *Camera) NDCToScreen(nx, ny float64) (float64, float64) {
	vp := c.Viewport
	return vp.X + (nx+1)/2*vp.Width, vp.Y + (1-ny)/2*vp.Height
}

// RayFromNDC builds a world-space ray from the near plane through the point
// (nx, ny) on the far plane.
func (c *Camera) RayFromNDC(nx, ny float64) Ray {
	c.update()
	near := unproject(c.invViewProj, mgl32.Vec3{float32(nx), float32(ny), -1})
	far := unproject(c.invViewProj, mgl32.Vec3{float32(nx), float32(ny), 1})
	return Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

// RayFromScreen is ScreenToNDC followed by RayFromNDC.
func (c *Camera) RayFromScreen(sx, sy float64) Ray {
	return c.RayFromNDC(c.ScreenToNDC(sx, sy))
}

func unproject(inv mgl32.Mat4, ndc mgl32.Vec3) mgl32.Vec3 {
	v := inv.Mul4x1(ndc.Vec4(1))
	if v.W() == 0 {
		return v.Vec3()
	}
	return v.Vec3().Mul(1 / v.W())
}
