package drape

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// PatternTexture is the repeating pattern tile mapped onto the garment UVs,
// with a 2D UV transform applied before sampling. The transform is rebuilt
// from scratch by SetTransform, so the result never depends on history.
type PatternTexture struct {
	Image *ebiten.Image

	// Width and Height are the tile's pixel size. They are copied from Image
	// when one is attached and may be set directly for headless use.
	Width, Height int

	Offset   Vec2
	Repeat   Vec2
	Rotation float64 // radians, counterclockwise around Center
	Center   Vec2
}

// NewPatternTexture wraps img with the identity transform.
func NewPatternTexture(img *ebiten.Image) *PatternTexture {
	t := &PatternTexture{
		Image:  img,
		Repeat: Vec2{X: 1, Y: 1},
		Center: Vec2{X: 0.5, Y: 0.5},
	}
	if img != nil {
		b := img.Bounds()
		t.Width, t.Height = b.Dx(), b.Dy()
	}
	return t
}

// SetTransform derives offset, repeat and rotation from a pattern transform.
// The vertical repeat is half the horizontal one to match the aspect of the
// garment UV layout.
func (t *PatternTexture) SetTransform(pt PatternTransform) {
	scale := pt.Scale
	if scale <= 0 {
		scale = 1
	}
	t.Repeat = Vec2{X: 1 / scale, Y: 0.5 / scale}
	t.Offset = Vec2{X: pt.OffsetX, Y: pt.OffsetY}
	t.Rotation = degToRad(pt.Rotation)
	t.Center = Vec2{X: 0.5, Y: 0.5}
}

// UVMatrix returns the affine UV transform as [a, b, c, d, tx, ty] where
// u' = a*u + c*v + tx and v' = b*u + d*v + ty.
func (t *PatternTexture) UVMatrix() [6]float64 {
	c := math.Cos(t.Rotation)
	s := math.Sin(t.Rotation)
	sx, sy := t.Repeat.X, t.Repeat.Y
	cx, cy := t.Center.X, t.Center.Y
	return [6]float64{
		sx * c,
		-sy * s,
		sx * s,
		sy * c,
		-sx*(c*cx+s*cy) + cx + t.Offset.X,
		-sy*(-s*cx+c*cy) + cy + t.Offset.Y,
	}
}

// MapUV applies the UV transform to (u, v).
func (t *PatternTexture) MapUV(u, v float64) (float64, float64) {
	m := t.UVMatrix()
	return m[0]*u + m[2]*v + m[4], m[1]*u + m[3]*v + m[5]
}

// SourcePoint converts mesh UVs to a source pixel position inside the tile.
// V runs bottom-up, image rows run top-down. Values outside the image are
// left unwrapped; the draw call samples with address repeat.
func (t *PatternTexture) SourcePoint(u, v float64) (float32, float32) {
	mu, mv := t.MapUV(u, v)
	return float32(mu * float64(t.Width)), float32((1 - mv) * float64(t.Height))
}

// alphaMapImage converts a grayscale mask into white with alpha taken from
// the green channel, the way an alpha map over a white material samples it.
func alphaMapImage(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, g, _, _ := src.At(x, y).RGBA()
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(g >> 8)})
		}
	}
	return dst
}

// opaqueImage drops alpha from a light map. Light maps contribute color only.
func opaqueImage(src image.Image) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = 255
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}
