package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50
)

// ErrTruncatedSTL is returned when a binary STL is shorter than its
// triangle count requires.
var ErrTruncatedSTL = errors.New("truncated stl")

// LoadSTL loads a binary or ASCII STL file. STL stores a facet normal per
// triangle and no texture coordinates; the facet normal becomes the normal
// of all three corners.
func LoadSTL(path string) (*Mesh, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	mesh, err := ParseSTL(b)
	if err != nil {
		return nil, fmt.Errorf("read stl %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseSTL decodes STL data, detecting the ASCII variant by its leading
// "solid" keyword and a size that does not match the binary layout.
func ParseSTL(b []byte) (*Mesh, error) {
	if isASCIISTL(b) {
		return parseASCIISTL(b)
	}
	return parseBinarySTL(b)
}

func isASCIISTL(b []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(b, " \t\r\n"), []byte("solid")) {
		return false
	}
	if len(b) < stlHeaderSize+4 {
		return true
	}
	count := binary.LittleEndian.Uint32(b[stlHeaderSize:])
	return len(b) != stlHeaderSize+4+int(count)*stlRecordSize
}

func parseBinarySTL(b []byte) (*Mesh, error) {
	if len(b) < stlHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedSTL, len(b))
	}
	count := int(binary.LittleEndian.Uint32(b[stlHeaderSize:]))
	body := b[stlHeaderSize+4:]
	if len(body) < count*stlRecordSize {
		return nil, fmt.Errorf("%w: %d triangles need %d bytes, have %d",
			ErrTruncatedSTL, count, count*stlRecordSize, len(body))
	}

	mesh := NewMesh("stl")
	mesh.Positions = make([]math3d.Vec3, 0, count*3)
	mesh.Normals = make([]math3d.Vec3, 0, count)
	for i := range count {
		rec := body[i*stlRecordSize:]
		mesh.addFacet(toVec3(rec[0:12]), toVec3(rec[12:24]), toVec3(rec[24:36]), toVec3(rec[36:48]))
		// rec[48:50] is the attribute byte count, unused.
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseASCIISTL(b []byte) (*Mesh, error) {
	mesh := NewMesh("stl")
	sc := bufio.NewScanner(bytes.NewReader(b))

	var (
		normal math3d.Vec3
		corner []math3d.Vec3
		line   int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("line %d: malformed facet", line)
			}
			v, err := parseFloats(fields[2:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normal = math3d.V3(v[0], v[1], v[2])
			corner = corner[:0]
		case "vertex":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			corner = append(corner, math3d.V3(v[0], v[1], v[2]))
		case "endfacet":
			if len(corner) != 3 {
				return nil, fmt.Errorf("line %d: facet with %d vertices: %w", line, len(corner), ErrBadFace)
			}
			mesh.addFacet(normal, corner[0], corner[1], corner[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// addFacet appends one unshared triangle. A zero facet normal is replaced
// by the winding normal.
func (m *Mesh) addFacet(n, a, b, c math3d.Vec3) {
	if n.Len() == 0 {
		n = b.Sub(a).Cross(c.Sub(a))
	}
	base := len(m.Positions)
	ni := len(m.Normals)
	m.Positions = append(m.Positions, a, b, c)
	m.Normals = append(m.Normals, n.Normalize())
	m.Faces = append(m.Faces, Face{
		V: [3]int{base, base + 1, base + 2},
		T: [3]int{-1, -1, -1},
		N: [3]int{ni, ni, ni},
	})
}

func toVec3(b []byte) math3d.Vec3 {
	return math3d.V3(toFloat32(b[0:4]), toFloat32(b[4:8]), toFloat32(b[8:12]))
}

func toFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

