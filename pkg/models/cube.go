package models

import "github.com/taigrr/tinyrender/pkg/math3d"

// Cube returns an axis-aligned cube of edge length size centered on the
// origin: 8 shared positions, 12 counter-clockwise triangles, a normal per
// side and a full [0,1] texture square on every side.
func Cube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube")
	m.Positions = []math3d.Vec3{
		{X: -h, Y: -h, Z: -h}, // 0
		{X: h, Y: -h, Z: -h},  // 1
		{X: h, Y: h, Z: -h},   // 2
		{X: -h, Y: h, Z: -h},  // 3
		{X: -h, Y: -h, Z: h},  // 4
		{X: h, Y: -h, Z: h},   // 5
		{X: h, Y: h, Z: h},    // 6
		{X: -h, Y: h, Z: h},   // 7
	}
	m.TexCoords = []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m.Normals = []math3d.Vec3{
		{Z: 1}, {Z: -1}, {X: 1}, {X: -1}, {Y: 1}, {Y: -1},
	}

	// Each side as a quad a,b,c,d counter-clockwise seen from outside.
	sides := []struct {
		quad   [4]int
		normal int
	}{
		{[4]int{4, 5, 6, 7}, 0}, // +z
		{[4]int{1, 0, 3, 2}, 1}, // -z
		{[4]int{5, 1, 2, 6}, 2}, // +x
		{[4]int{0, 4, 7, 3}, 3}, // -x
		{[4]int{7, 6, 2, 3}, 4}, // +y
		{[4]int{0, 1, 5, 4}, 5}, // -y
	}
	for _, s := range sides {
		q, n := s.quad, s.normal
		m.Faces = append(m.Faces,
			Face{V: [3]int{q[0], q[1], q[2]}, T: [3]int{0, 1, 2}, N: [3]int{n, n, n}},
			Face{V: [3]int{q[0], q[2], q[3]}, T: [3]int{0, 2, 3}, N: [3]int{n, n, n}},
		)
	}
	m.CalculateBounds()
	return m
}
