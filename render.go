package drape

import (
	"image/color"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// whitePixelImage stands in for a pattern that has not loaded. No sync.Once,
// rendering is single-threaded.
var whitePixelImage *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// shadedTriangleShaderSrc samples the source with repeat wrapping and
// bilinear filtering, scales it by the vertex color, and clamps the result
// per channel. Vertex colors of shaded materials carry a light factor that
// may exceed 1, so the clamp has to follow the multiply.
const shadedTriangleShaderSrc = `//kage:unit pixels
package main

func texel(p vec2) vec4 {
	origin := imageSrc0Origin()
	return imageSrc0UnsafeAt(mod(p-origin, imageSrc0Size()) + origin)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	p := src - 0.5
	f := fract(p)
	p0 := floor(p) + 0.5
	top := mix(texel(p0), texel(p0+vec2(1, 0)), f.x)
	bottom := mix(texel(p0+vec2(0, 1)), texel(p0+vec2(1, 1)), f.x)
	c := mix(top, bottom, f.y) * color
	a := clamp(c.a, 0, 1)
	return vec4(clamp(c.rgb, vec3(0), vec3(a)), a)
}
`

var shadedTriangleShader *ebiten.Shader

func ensureShadedTriangleShader() *ebiten.Shader {
	if shadedTriangleShader == nil {
		s, err := ebiten.NewShader([]byte(shadedTriangleShaderSrc))
		if err != nil {
			panic("drape: failed to compile shaded triangle shader: " + err.Error())
		}
		shadedTriangleShader = s
	}
	return shadedTriangleShader
}

// sortTri is one projected triangle awaiting depth sorting.
type sortTri struct {
	i0, i1, i2 uint32
	depth      float32
}

// Renderer draws a composer's scene. The 3D layers go into a square
// offscreen canvas, which is drawn to the screen through the color filter;
// the base image goes on top of it, unfiltered.
type Renderer struct {
	composer *Composer

	canvas *ebiten.Image
	list   []*Node
	tris   []sortTri
	valid  []bool

	triOp    ebiten.DrawTrianglesOptions
	shadedOp ebiten.DrawTrianglesShaderOptions
	baseOp   ebiten.DrawImageOptions

	// Snapshots, when set, captures the screen at the end of Draw.
	Snapshots *Snapshotter
	// FPS, when set, is drawn in the top-left corner.
	FPS *FPSOverlay

	stats debugStats
}

// NewRenderer creates a renderer with a size x size canvas.
func NewRenderer(c *Composer, size int) *Renderer {
	return &Renderer{
		composer: c,
		canvas:   ebiten.NewImage(size, size),
	}
}

// Canvas returns the offscreen 3D canvas.
func (r *Renderer) Canvas() *ebiten.Image {
	return r.canvas
}

// Draw renders one frame into screen. A nil screen is allowed and skips all
// drawing, so the loop can be driven headless.
func (r *Renderer) Draw(screen *ebiten.Image, frame uint64) {
	if screen == nil {
		return
	}
	scene := r.composer.Scene()
	if scene == nil {
		return
	}
	r.stats = debugStats{}
	start := time.Now()

	r.canvas.Clear()
	vp := scene.Camera.ViewProjection()
	r.list = scene.drawList(r.list)
	for _, n := range r.list {
		r.drawNode(n, vp)
	}
	drawn := time.Now()

	view := scene.Camera.Viewport
	comp := r.composer.Compositor
	reveal := r.composer.Reveal
	comp.Filter.Opacity = reveal
	comp.Filter.Apply(r.canvas, screen, view.X, view.Y)

	if comp.Base != nil {
		b := comp.Base.Bounds()
		r.baseOp.GeoM.Reset()
		r.baseOp.GeoM.Scale(view.Width/float64(b.Dx()), view.Height/float64(b.Dy()))
		r.baseOp.GeoM.Translate(view.X, view.Y)
		r.baseOp.ColorScale.Reset()
		r.baseOp.ColorScale.ScaleAlpha(float32(reveal))
		r.baseOp.Filter = ebiten.FilterLinear
		screen.DrawImage(comp.Base, &r.baseOp)
		r.stats.drawCallCount++
	}
	r.stats.drawCallCount++

	if r.FPS != nil {
		r.FPS.Draw(screen)
	}
	if r.Snapshots != nil {
		r.Snapshots.flush(screen)
	}

	if globalDebug {
		r.stats.drawTime = drawn.Sub(start)
		r.stats.composeTime = time.Since(drawn)
		debugLog(frame, r.stats)
	}
}

// drawNode projects, shades and submits one node into the canvas.
func (r *Renderer) drawNode(n *Node, vp mgl32.Mat4) {
	geom := n.Geometry
	mat := n.Material
	if geom.TriangleCount() == 0 {
		return
	}
	shadeStart := time.Now()

	model := n.WorldMatrix()
	mvp := vp.Mul4(model)
	normalMat := model.Mat3().Inv().Transpose()

	cw := float32(r.canvas.Bounds().Dx())
	ch := float32(r.canvas.Bounds().Dy())

	src, srcW, srcH := mat.Image, 0, 0
	if mat.Pattern != nil {
		src = mat.Pattern.Image
	}
	if src == nil {
		src = ensureWhitePixel()
	}
	b := src.Bounds()
	srcW, srcH = b.Dx(), b.Dy()

	alpha := float32(mat.Color.A * n.Opacity)
	rig := r.composer.Compositor.Rig

	verts, _ := ensureVertexBuffers(n, len(geom.Positions), 0)
	if cap(r.valid) < len(verts) {
		r.valid = make([]bool, len(verts))
	}
	r.valid = r.valid[:len(verts)]

	for i, p := range geom.Positions {
		clip := mvp.Mul4x1(p.Vec4(1))
		if clip.W() <= 0 {
			r.valid[i] = false
			continue
		}
		r.valid[i] = true
		ndc := clip.Vec3().Mul(1 / clip.W())

		var u, v float32
		if i < len(geom.UVs) {
			u, v = geom.UVs[i][0], geom.UVs[i][1]
		}
		var sx, sy float32
		switch {
		case mat.Pattern != nil && mat.Pattern.Image != nil:
			sx, sy = mat.Pattern.SourcePoint(float64(u), float64(v))
		case src == whitePixelImage:
			sx, sy = 0.5, 0.5
		default:
			sx, sy = u*float32(srcW), (1-v)*float32(srcH)
		}

		shade := float32(1)
		if mat.Shaded && i < len(geom.Normals) {
			wp := mgl32.TransformCoordinate(p, model)
			wn := normalMat.Mul3x1(geom.Normals[i]).Normalize()
			shade = float32(rig.ShadeVertex(wp, wn))
		}

		verts[i] = ebiten.Vertex{
			DstX:   (ndc.X() + 1) / 2 * cw,
			DstY:   (1 - ndc.Y()) / 2 * ch,
			SrcX:   sx,
			SrcY:   sy,
			ColorR: float32(mat.Color.R) * shade * alpha,
			ColorG: float32(mat.Color.G) * shade * alpha,
			ColorB: float32(mat.Color.B) * shade * alpha,
			ColorA: alpha,
		}
	}

	// Painter's order: no depth buffer, so triangles go far to near.
	r.tris = r.tris[:0]
	for t := 0; t < geom.TriangleCount(); t++ {
		i0, i1, i2 := geom.Indices[3*t], geom.Indices[3*t+1], geom.Indices[3*t+2]
		if !r.valid[i0] || !r.valid[i1] || !r.valid[i2] {
			continue
		}
		a, bv, c := &verts[i0], &verts[i1], &verts[i2]
		if !mat.DoubleSided {
			// Front faces wind counterclockwise in NDC, which is negative
			// area once Y points down.
			area := (bv.DstX-a.DstX)*(c.DstY-a.DstY) - (c.DstX-a.DstX)*(bv.DstY-a.DstY)
			if area >= 0 {
				continue
			}
		}
		depth := mvp.Mul4x1(geom.Positions[i0].Vec4(1)).W() +
			mvp.Mul4x1(geom.Positions[i1].Vec4(1)).W() +
			mvp.Mul4x1(geom.Positions[i2].Vec4(1)).W()
		r.tris = append(r.tris, sortTri{i0, i1, i2, depth})
	}
	if len(r.tris) == 0 {
		return
	}
	sort.Slice(r.tris, func(i, j int) bool { return r.tris[i].depth > r.tris[j].depth })

	_, inds := ensureVertexBuffers(n, len(verts), 3*len(r.tris))
	for k, t := range r.tris {
		inds[3*k], inds[3*k+1], inds[3*k+2] = t.i0, t.i1, t.i2
	}

	if globalDebug {
		r.stats.shadeTime += time.Since(shadeStart)
	}
	if mat.Shaded {
		r.shadedOp = ebiten.DrawTrianglesShaderOptions{}
		r.shadedOp.Blend = mat.Blend.EbitenBlend()
		r.shadedOp.Images[0] = src
		r.canvas.DrawTrianglesShader32(verts, inds, ensureShadedTriangleShader(), &r.shadedOp)
	} else {
		r.triOp = ebiten.DrawTrianglesOptions{}
		r.triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		r.triOp.Blend = mat.Blend.EbitenBlend()
		r.triOp.Filter = ebiten.FilterLinear
		if mat.Pattern != nil {
			r.triOp.Address = ebiten.AddressRepeat
		}
		r.canvas.DrawTriangles32(verts, inds, src, &r.triOp)
	}
	r.stats.triangleCount += len(r.tris)
	r.stats.drawCallCount++
}
