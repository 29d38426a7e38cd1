package drape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoGeometry is returned when a model file contains no faces.
var ErrNoGeometry = errors.New("drape: model has no geometry")

// objVertexKey identifies a unique position/uv/normal combination.
type objVertexKey struct {
	v, vt, vn int
}

type objDecoder struct {
	line      int
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3

	geom      *Geometry
	seen      map[objVertexKey]uint32
	hasNormal bool
	hasUV     bool
}

// DecodeOBJ reads a Wavefront OBJ model and merges every object and group into
// one indexed geometry. Polygons are fan-triangulated. Materials, smoothing
// groups and lines are ignored. Normals are computed when the file has none.
func DecodeOBJ(r io.Reader) (*Geometry, error) {
	dec := &objDecoder{
		geom: &Geometry{},
		seen: make(map[objVertexKey]uint32),
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		dec.line++
		if err := dec.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if len(dec.geom.Indices) == 0 {
		return nil, ErrNoGeometry
	}
	if !dec.hasNormal {
		dec.geom.ComputeNormals()
	}
	if !dec.hasUV {
		dec.geom.UVs = nil
	}
	return dec.geom, nil
}

func (dec *objDecoder) formatError(format string, args ...any) error {
	return fmt.Errorf("obj line %d: %s", dec.line, fmt.Sprintf(format, args...))
}

func (dec *objDecoder) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "v":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, mgl32.Vec3{v[0], v[1], v[2]}.Normalize())
	case "vt":
		v, err := dec.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, mgl32.Vec2{v[0], v[1]})
	case "f":
		return dec.parseFace(fields[1:])
	}
	return nil
}

func (dec *objDecoder) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.formatError("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, dec.formatError("%v", err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to a
// 0-based one. Zero is invalid.
func (dec *objDecoder) resolveIndex(s string, count int, kind string) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.formatError("%s index %q: %v", kind, s, err)
	}
	var idx int
	switch {
	case val > 0:
		idx = val - 1
	case val < 0:
		idx = count + val
	default:
		return 0, dec.formatError("%s index is zero", kind)
	}
	if idx < 0 || idx >= count {
		return 0, dec.formatError("%s index %d out of range", kind, val)
	}
	return idx, nil
}

func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face with fewer than 3 vertices")
	}
	corners := make([]uint32, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		key := objVertexKey{v: -1, vt: -1, vn: -1}
		var err error
		if key.v, err = dec.resolveIndex(parts[0], len(dec.positions), "vertex"); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if key.vt, err = dec.resolveIndex(parts[1], len(dec.uvs), "uv"); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if key.vn, err = dec.resolveIndex(parts[2], len(dec.normals), "normal"); err != nil {
				return err
			}
		}
		corners[i] = dec.vertex(key)
	}
	for i := 1; i+1 < len(corners); i++ {
		dec.geom.Indices = append(dec.geom.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// vertex returns the output index for key, emitting a new vertex the first
// time a combination is seen.
func (dec *objDecoder) vertex(key objVertexKey) uint32 {
	if idx, ok := dec.seen[key]; ok {
		return idx
	}
	g := dec.geom
	idx := uint32(len(g.Positions))
	g.Positions = append(g.Positions, dec.positions[key.v])
	var uv mgl32.Vec2
	if key.vt >= 0 {
		uv = dec.uvs[key.vt]
		dec.hasUV = true
	}
	g.UVs = append(g.UVs, uv)
	var n mgl32.Vec3
	if key.vn >= 0 {
		n = dec.normals[key.vn]
		dec.hasNormal = true
	}
	g.Normals = append(g.Normals, n)
	dec.seen[key] = idx
	return idx
}
