package drape

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// quadOBJ is a unit quad facing +Z with UVs and a shared normal.
const quadOBJ = `# quad
o panel
v -0.5 -0.5 0
v 0.5 -0.5 0
v 0.5 0.5 0
v -0.5 0.5 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestDecodeOBJQuad(t *testing.T) {
	g, err := DecodeOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("DecodeOBJ: %v", err)
	}
	if g.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", g.TriangleCount())
	}
	if len(g.Positions) != 4 {
		t.Errorf("Positions = %d, want 4 (shared corners)", len(g.Positions))
	}
	if len(g.UVs) != 4 || g.UVs[2] != (mgl32.Vec2{1, 1}) {
		t.Errorf("UVs = %v", g.UVs)
	}
	for i, n := range g.Normals {
		if n != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("Normals[%d] = %v, want +Z", i, n)
		}
	}
	// Fan triangulation around the first corner.
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i := range want {
		if g.Indices[i] != want[i] {
			t.Fatalf("Indices = %v, want %v", g.Indices, want)
		}
	}
}

func TestDecodeOBJVariants(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		tris    int
		verts   int
		wantUVs bool
	}{
		{
			name:  "positions only",
			src:   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
			tris:  1,
			verts: 3,
		},
		{
			name:    "position and uv",
			src:     "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n",
			tris:    1,
			verts:   3,
			wantUVs: true,
		},
		{
			name:  "position and normal",
			src:   "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 2\nf 1//1 2//1 3//1\n",
			tris:  1,
			verts: 3,
		},
		{
			name:  "negative indices",
			src:   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n",
			tris:  1,
			verts: 3,
		},
		{
			name:  "comments and blank lines",
			src:   "# header\n\nv 0 0 0 # origin\nv 1 0 0\nv 0 1 0\nusemtl cloth\ns off\nf 1 2 3\n",
			tris:  1,
			verts: 3,
		},
		{
			name:  "pentagon",
			src:   "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0.5 1.5 0\nv 0 1 0\nf 1 2 3 4 5\n",
			tris:  3,
			verts: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := DecodeOBJ(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("DecodeOBJ: %v", err)
			}
			if g.TriangleCount() != tt.tris {
				t.Errorf("TriangleCount = %d, want %d", g.TriangleCount(), tt.tris)
			}
			if len(g.Positions) != tt.verts {
				t.Errorf("Positions = %d, want %d", len(g.Positions), tt.verts)
			}
			if (g.UVs != nil) != tt.wantUVs {
				t.Errorf("UVs present = %v, want %v", g.UVs != nil, tt.wantUVs)
			}
			if len(g.Normals) != len(g.Positions) {
				t.Errorf("Normals = %d, want %d", len(g.Normals), len(g.Positions))
			}
			// Computed or read, a CCW triangle in XY faces +Z.
			if n := g.Normals[0]; !approxEqual(float64(n.Z()), 1, 1e-6) {
				t.Errorf("Normals[0] = %v, want +Z unit", n)
			}
		})
	}
}

func TestDecodeOBJErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"no faces", "v 0 0 0\n", ""},
		{"bad float", "v 0 x 0\n", "obj line 1"},
		{"short vertex", "v 0 0\n", "expected 3 values"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "index is zero"},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n", "out of range"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", "fewer than 3"},
		{"bad uv index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", "uv index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOBJ(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr == "" {
				if !errors.Is(err, ErrNoGeometry) {
					t.Errorf("err = %v, want ErrNoGeometry", err)
				}
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
