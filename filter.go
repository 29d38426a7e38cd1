package drape

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// colorMatrixShaderSrc applies a 4x5 row-major color matrix to
// un-premultiplied source colors. Ebitengine uses premultiplied alpha, so
// the result is clamped and re-premultiplied.
const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// Lazy shader compilation (no sync.Once, scene state is single-threaded).
var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("drape: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// ColorMatrix is a 4x5 row-major color transform:
// [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrix [20]float64

// IdentityColorMatrix returns the matrix that leaves colors unchanged.
func IdentityColorMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// HueRotateMatrix returns the CSS hue-rotate(deg) matrix.
func HueRotateMatrix(deg float64) ColorMatrix {
	rad := degToRad(deg)
	c, s := math.Cos(rad), math.Sin(rad)
	return ColorMatrix{
		0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928, 0, 0,
		0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283, 0, 0,
		0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SaturateMatrix returns the CSS saturate(s) matrix. s=1 is normal, 0 is
// grayscale.
func SaturateMatrix(s float64) ColorMatrix {
	return ColorMatrix{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s, 0, 0,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s, 0, 0,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Mul returns m applied after n (m * n).
func (m ColorMatrix) Mul(n ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var v float64
			for k := 0; k < 4; k++ {
				v += m[row*5+k] * n[k*5+col]
			}
			if col == 4 {
				v += m[row*5+4]
			}
			out[row*5+col] = v
		}
	}
	return out
}

// Transform applies the matrix to an un-premultiplied color, clamping each
// channel to [0, 1].
func (m ColorMatrix) Transform(c Color) Color {
	in := [4]float64{c.R, c.G, c.B, c.A}
	var out [4]float64
	for row := 0; row < 4; row++ {
		v := m[row*5+4]
		for k := 0; k < 4; k++ {
			v += m[row*5+k] * in[k]
		}
		out[row] = clamp01(v)
	}
	return Color{out[0], out[1], out[2], out[3]}
}

// ColorFilter is the global hue/saturation filter drawn over the 3D canvas.
// Hue rotation is applied first, then saturation.
type ColorFilter struct {
	Hue        float64
	Saturation float64
	// Opacity scales the filtered output's alpha; it carries the reveal fade.
	Opacity float64

	Matrix      ColorMatrix
	uniforms    map[string]any
	matrixF32   [20]float32 // persistent buffer to avoid per-frame slice escape
	matrixSlice []float32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorFilter creates a filter with no hue shift and unit saturation.
func NewColorFilter() *ColorFilter {
	f := &ColorFilter{
		uniforms: make(map[string]any, 1),
		Opacity:  1,
	}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	f.Set(0, 1)
	return f
}

// Set updates hue (degrees) and saturation and recomputes the matrix.
func (f *ColorFilter) Set(hue, saturation float64) {
	f.Hue = hue
	f.Saturation = saturation
	f.Matrix = SaturateMatrix(saturation).Mul(HueRotateMatrix(hue))
}

// IsIdentity reports whether the filter would leave the canvas unchanged.
func (f *ColorFilter) IsIdentity() bool {
	return f.Hue == 0 && f.Saturation == 1 && f.Opacity == 1
}

// Apply draws src into dst at (x, y) through the filter.
func (f *ColorFilter) Apply(src, dst *ebiten.Image, x, y float64) {
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	// Alpha row scaled by opacity.
	for i := 15; i < 20; i++ {
		f.matrixF32[i] = float32(f.Matrix[i] * f.Opacity)
	}
	bounds := src.Bounds()
	f.shaderOp.GeoM.Reset()
	f.shaderOp.GeoM.Translate(x, y)
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}
