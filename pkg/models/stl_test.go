package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

func binarySTL(t *testing.T, tris [][4][3]float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, stlHeaderSize))
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(tris))); err != nil {
		t.Fatal(err)
	}
	for _, tri := range tris {
		if err := binary.Write(&buf, binary.LittleEndian, tri); err != nil {
			t.Fatal(err)
		}
		buf.Write([]byte{0, 0})
	}
	return buf.Bytes()
}

func TestParseBinarySTL(t *testing.T) {
	data := binarySTL(t, [][4][3]float32{
		{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {0, 1, 1}},
	})
	m, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL: %v", err)
	}
	if m.FaceCount() != 2 || m.VertexCount() != 6 {
		t.Fatalf("got %d faces / %d vertices, want 2 / 6", m.FaceCount(), m.VertexCount())
	}
	if got := m.VertexPosition(1); got != math3d.V3(1, 0, 0) {
		t.Errorf("position 1 = %v, want (1,0,0)", got)
	}
	// A zero facet normal is rebuilt from the winding.
	if got := m.VertexNormal(1, 0); got != math3d.V3(0, 0, 1) {
		t.Errorf("rebuilt normal = %v, want (0,0,1)", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseBinarySTLTruncated(t *testing.T) {
	data := binarySTL(t, [][4][3]float32{{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}}})
	if _, err := ParseSTL(data[:len(data)-10]); !errors.Is(err, ErrTruncatedSTL) {
		t.Errorf("ParseSTL = %v, want ErrTruncatedSTL", err)
	}
}

func TestParseASCIISTL(t *testing.T) {
	src := `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 2 0 0
      vertex 0 2 0
    endloop
  endfacet
endsolid tri
`
	m, err := ParseSTL([]byte(src))
	if err != nil {
		t.Fatalf("ParseSTL: %v", err)
	}
	if m.FaceCount() != 1 {
		t.Fatalf("FaceCount = %d, want 1", m.FaceCount())
	}
	if m.Size() != math3d.V3(2, 2, 0) {
		t.Errorf("Size = %v, want (2,2,0)", m.Size())
	}
}

func TestParseASCIISTLBadFacet(t *testing.T) {
	src := "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid x\n"
	if _, err := ParseSTL([]byte(src)); !errors.Is(err, ErrBadFace) {
		t.Errorf("ParseSTL = %v, want ErrBadFace", err)
	}
}
