package drape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed triangle list. Triangles wind counterclockwise when
// seen from their front side. Normals and UVs are optional but, when present,
// have one entry per position.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// TriangleCount returns the number of triangles in the geometry.
func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

// Triangle returns the three corner positions of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c mgl32.Vec3) {
	return g.Positions[g.Indices[3*i]], g.Positions[g.Indices[3*i+1]], g.Positions[g.Indices[3*i+2]]
}

// ComputeNormals replaces Normals with area-weighted vertex normals.
func (g *Geometry) ComputeNormals() {
	normals := make([]mgl32.Vec3, len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		p0, p1, p2 := g.Positions[i0], g.Positions[i1], g.Positions[i2]
		// Cross product length is twice the area, which weights the sum.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		}
	}
	g.Normals = normals
}

// Bounds returns the axis-aligned bounding box of the positions.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return
	}
	lo, hi = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// NewPlaneGeometry builds a width x height quad in the XY plane, centered on
// the origin and facing +Z. UV (0,0) is the bottom-left corner.
func NewPlaneGeometry(width, height float32) *Geometry {
	hw, hh := width/2, height/2
	return &Geometry{
		Positions: []mgl32.Vec3{{-hw, hh, 0}, {hw, hh, 0}, {-hw, -hh, 0}, {hw, -hh, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []mgl32.Vec2{{0, 1}, {1, 1}, {0, 0}, {1, 0}},
		Indices:   []uint32{0, 2, 1, 2, 3, 1},
	}
}

// NewSphereGeometry builds a UV sphere centered on the origin.
func NewSphereGeometry(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(3, widthSegments)
	heightSegments = max(2, heightSegments)

	g := &Geometry{}
	grid := make([][]uint32, heightSegments+1)
	var index uint32
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi
			theta := v * math.Pi
			n := mgl32.Vec3{
				float32(-math.Cos(phi) * math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			g.Positions = append(g.Positions, n.Mul(radius))
			g.Normals = append(g.Normals, n)
			g.UVs = append(g.UVs, mgl32.Vec2{float32(u), float32(1 - v)})
			row[ix] = index
			index++
		}
		grid[iy] = row
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// Ray is a half-line in world space. Dir need not be normalized; hit
// distances are expressed in multiples of Dir.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

const rayEpsilon = 1e-7

// intersectTriangle is the Moller-Trumbore test. Both faces hit. Returns the
// ray parameter of the hit and whether there was one in front of the origin.
func intersectTriangle(r Ray, a, b, c mgl32.Vec3) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if det > -rayEpsilon && det < rayEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= rayEpsilon {
		return 0, false
	}
	return t, true
}

// Intersect returns the nearest hit of r against the geometry transformed by
// model, as a ray parameter.
func (g *Geometry) Intersect(r Ray, model mgl32.Mat4) (float32, bool) {
	if g == nil {
		return 0, false
	}
	best := float32(math.MaxFloat32)
	found := false
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		a = mgl32.TransformCoordinate(a, model)
		b = mgl32.TransformCoordinate(b, model)
		c = mgl32.TransformCoordinate(c, model)
		if t, ok := intersectTriangle(r, a, b, c); ok && t < best {
			best, found = t, true
		}
	}
	return best, found
}
