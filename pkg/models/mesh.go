// Package models loads triangle meshes and exposes their per-face
// attributes to the renderer.
package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

var (
	// ErrEmptyMesh is returned when a file parses but holds no triangles.
	ErrEmptyMesh = errors.New("mesh has no faces")
	// ErrBadFace is returned when a face references a missing attribute.
	ErrBadFace = errors.New("face index out of range")
	// ErrUnsupportedFormat is returned by Load for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
)

// Mesh is an indexed triangle mesh. Positions, texture coordinates and
// normals live in separate pools, as in Wavefront OBJ; each face corner
// indexes into every pool independently. A negative index means the
// attribute is absent for that corner.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	TexCoords []math3d.Vec2
	Normals   []math3d.Vec3
	Faces     []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is one triangle.
type Face struct {
	V [3]int // Indices into Mesh.Positions
	T [3]int // Indices into Mesh.TexCoords, -1 if absent
	N [3]int // Indices into Mesh.Normals, -1 if absent
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Load reads a mesh, choosing the decoder from the file extension.
func Load(path string) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err = LoadOBJ(path)
	case ".glb", ".gltf":
		mesh, err = LoadGLB(path)
	case ".stl":
		mesh, err = LoadSTL(path)
	default:
		return nil, fmt.Errorf("load %s: %w: %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return mesh, nil
}

// Validate checks that the mesh has faces and every face index is in range.
func (m *Mesh) Validate() error {
	if len(m.Faces) == 0 {
		return ErrEmptyMesh
	}
	for i, f := range m.Faces {
		for c := range 3 {
			if f.V[c] < 0 || f.V[c] >= len(m.Positions) {
				return fmt.Errorf("face %d corner %d: vertex %d: %w", i, c, f.V[c], ErrBadFace)
			}
			if f.T[c] >= len(m.TexCoords) {
				return fmt.Errorf("face %d corner %d: texcoord %d: %w", i, c, f.T[c], ErrBadFace)
			}
			if f.N[c] >= len(m.Normals) {
				return fmt.Errorf("face %d corner %d: normal %d: %w", i, c, f.N[c], ErrBadFace)
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Transform applies a transformation matrix to all positions and normals.
func (m *Mesh) Transform(mat math3d.Mat4) {
	nmat := mat.InverseTranspose()
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
	}
	for i := range m.Normals {
		m.Normals[i] = nmat.MulVec3Dir(m.Normals[i]).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales its largest extent to
// 2, so it fits the [-1,1] cube the default camera frames.
func (m *Mesh) Normalize() {
	m.CalculateBounds()
	size := m.Size()
	extent := max(size.X, size.Y, size.Z)
	if extent == 0 {
		return
	}
	s := 2 / extent
	m.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(m.Center().Negate())))
}

// CalculateSmoothNormals replaces the normal pool with area-weighted
// per-position normals and points every face corner at them.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		v0 := m.Positions[f.V[0]]
		n := m.Positions[f.V[1]].Sub(v0).Cross(m.Positions[f.V[2]].Sub(v0)) // Don't normalize yet
		for c := range 3 {
			normals[f.V[c]] = normals[f.V[c]].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
	for i := range m.Faces {
		m.Faces[i].N = m.Faces[i].V
	}
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// FaceVertexIndices returns the position indices of face.
func (m *Mesh) FaceVertexIndices(face int) [3]int {
	return m.Faces[face].V
}

// FaceTextureIndices returns the texture coordinate indices of face.
func (m *Mesh) FaceTextureIndices(face int) [3]int {
	return m.Faces[face].T
}

// VertexPosition returns position i.
func (m *Mesh) VertexPosition(i int) math3d.Vec3 {
	return m.Positions[i]
}

// VertexTexCoord returns texture coordinate i, or (0,0) for a negative index.
func (m *Mesh) VertexTexCoord(i int) math3d.Vec2 {
	if i < 0 {
		return math3d.Vec2{}
	}
	return m.TexCoords[i]
}

// FaceNormal returns the unit normal of the face's own triangle, following
// counter-clockwise winding.
func (m *Mesh) FaceNormal(face int) math3d.Vec3 {
	f := m.Faces[face]
	v0 := m.Positions[f.V[0]]
	return m.Positions[f.V[1]].Sub(v0).Cross(m.Positions[f.V[2]].Sub(v0)).Normalize()
}

// VertexNormal returns the supplied normal for a face corner, falling back
// to the face normal when the file carried none.
func (m *Mesh) VertexNormal(face, corner int) math3d.Vec3 {
	if n := m.Faces[face].N[corner]; n >= 0 {
		return m.Normals[n]
	}
	return m.FaceNormal(face)
}
