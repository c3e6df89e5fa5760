package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("read obj %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ReadOBJ parses OBJ geometry from r. It understands v, vt, vn and f
// records; polygons with more than three corners are split into a fan.
// Other records (groups, materials, smoothing) are ignored.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("obj")
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			mesh.Positions = append(mesh.Positions, math3d.V3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texcoord: %w", line, err)
			}
			mesh.TexCoords = append(mesh.TexCoords, math3d.V2(v[0], v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			mesh.Normals = append(mesh.Normals, math3d.V3(v[0], v[1], v[2]).Normalize())
		case "f":
			if err := mesh.addPolygon(fields[1:]); err != nil {
				return nil, fmt.Errorf("line %d: face: %w", line, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// addPolygon appends a face record, fan-triangulated around its first corner.
func (m *Mesh) addPolygon(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("%w: %d corners", ErrBadFace, len(corners))
	}
	type ref struct{ v, t, n int }
	refs := make([]ref, len(corners))
	for i, c := range corners {
		parts := strings.Split(c, "/")
		if len(parts) > 3 {
			return fmt.Errorf("%w: %q", ErrBadFace, c)
		}
		var err error
		if refs[i].v, err = resolveIndex(parts[0], len(m.Positions)); err != nil {
			return err
		}
		refs[i].t, refs[i].n = -1, -1
		if len(parts) > 1 && parts[1] != "" {
			if refs[i].t, err = resolveIndex(parts[1], len(m.TexCoords)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if refs[i].n, err = resolveIndex(parts[2], len(m.Normals)); err != nil {
				return err
			}
		}
	}
	for i := 1; i+1 < len(refs); i++ {
		a, b, c := refs[0], refs[i], refs[i+1]
		m.Faces = append(m.Faces, Face{
			V: [3]int{a.v, b.v, c.v},
			T: [3]int{a.t, b.t, c.t},
			N: [3]int{a.n, b.n, c.n},
		})
	}
	return nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a
// 0-based one, checked against the number of elements read so far.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadFace, s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("%w: zero index", ErrBadFace)
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("%w: %s of %d", ErrBadFace, s, count)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
