package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

func TestCubeTopology(t *testing.T) {
	m := Cube(1)
	if m.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8", m.VertexCount())
	}
	if m.FaceCount() != 12 {
		t.Errorf("FaceCount = %d, want 12", m.FaceCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := m.Size(); got != math3d.V3(1, 1, 1) {
		t.Errorf("Size = %v, want (1,1,1)", got)
	}
}

// TestCubeNormalsPointOutward checks that the winding normal agrees with the
// supplied normal and points away from the center for every triangle.
func TestCubeNormalsPointOutward(t *testing.T) {
	m := Cube(2)
	for f := range m.FaceCount() {
		fn := m.FaceNormal(f)
		for c := range 3 {
			vn := m.VertexNormal(f, c)
			if fn.Dot(vn) < 0.999 {
				t.Errorf("face %d corner %d: face normal %v disagrees with %v", f, c, fn, vn)
			}
		}
		idx := m.FaceVertexIndices(f)
		centroid := m.VertexPosition(idx[0]).Add(m.VertexPosition(idx[1])).Add(m.VertexPosition(idx[2])).Scale(1.0 / 3)
		if centroid.Dot(fn) <= 0 {
			t.Errorf("face %d normal %v points inward", f, fn)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh *Mesh
		want error
	}{
		{"empty", NewMesh("empty"), ErrEmptyMesh},
		{
			"vertex out of range",
			&Mesh{
				Positions: []math3d.Vec3{{}, {}},
				Faces:     []Face{{V: [3]int{0, 1, 2}, T: [3]int{-1, -1, -1}, N: [3]int{-1, -1, -1}}},
			},
			ErrBadFace,
		},
		{
			"texcoord out of range",
			&Mesh{
				Positions: []math3d.Vec3{{}, {}, {}},
				Faces:     []Face{{V: [3]int{0, 1, 2}, T: [3]int{0, 0, 0}, N: [3]int{-1, -1, -1}}},
			},
			ErrBadFace,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mesh.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	m := Cube(10)
	m.Transform(math3d.Translate(math3d.V3(5, -3, 2)))
	m.Normalize()

	if c := m.Center(); c.Len() > 1e-9 {
		t.Errorf("Center after Normalize = %v, want origin", c)
	}
	size := m.Size()
	if math.Abs(size.X-2) > 1e-9 {
		t.Errorf("largest extent = %v, want 2", size.X)
	}
}

func TestVertexTexCoordMissing(t *testing.T) {
	m := Cube(1)
	if got := m.VertexTexCoord(-1); got != (math3d.Vec2{}) {
		t.Errorf("VertexTexCoord(-1) = %v, want zero", got)
	}
	if got := m.VertexTexCoord(2); got != math3d.V2(1, 1) {
		t.Errorf("VertexTexCoord(2) = %v, want (1,1)", got)
	}
}

func TestVertexNormalFallback(t *testing.T) {
	m := &Mesh{
		Positions: []math3d.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Faces:     []Face{{V: [3]int{0, 1, 2}, T: [3]int{-1, -1, -1}, N: [3]int{-1, -1, -1}}},
	}
	if got := m.VertexNormal(0, 1); got != math3d.V3(0, 0, 1) {
		t.Errorf("VertexNormal fallback = %v, want (0,0,1)", got)
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := Cube(2)
	m.CalculateSmoothNormals()
	got := m.Normals[6] // (+h, +h, +h) corner
	if got.X <= 0 || got.Y <= 0 || got.Z <= 0 {
		t.Errorf("corner normal = %v, want it inside the +x+y+z octant", got)
	}
	if math.Abs(got.Len()-1) > 1e-9 {
		t.Errorf("corner normal length = %v, want 1", got.Len())
	}
	if m.Faces[0].N != m.Faces[0].V {
		t.Error("faces should index normals by position after smoothing")
	}
}

func TestLoadUnsupported(t *testing.T) {
	if _, err := Load("model.fbx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.fbx) = %v, want ErrUnsupportedFormat", err)
	}
}
