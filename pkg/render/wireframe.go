package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Wireframe draws projected mesh edges with Bresenham lines. It is a quick
// preview and performs no depth test.
type Wireframe struct {
	m  math3d.Mat4
	fb *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(t Transform, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		m:  t.Matrix(),
		fb: fb,
	}
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	a := w.m.MulVec3(p1)
	b := w.m.MulVec3(p2)
	if !a.IsFinite() || !b.IsFinite() {
		return
	}
	// Endpoints far outside the target would make Bresenham walk forever.
	if !w.near(a) && !w.near(b) {
		return
	}
	w.fb.DrawLine(int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(b.X)), int(math.Round(b.Y)), color)
}

func (w *Wireframe) near(p math3d.Vec3) bool {
	return p.X >= -float64(w.fb.Width) && p.X <= 2*float64(w.fb.Width) &&
		p.Y >= -float64(w.fb.Height) && p.Y <= 2*float64(w.fb.Height)
}

// DrawMesh draws the three edges of every face.
func (w *Wireframe) DrawMesh(mesh Mesh, color Color) {
	for face := range mesh.FaceCount() {
		idx := mesh.FaceVertexIndices(face)
		for c := range 3 {
			w.DrawLine3D(mesh.VertexPosition(idx[c]), mesh.VertexPosition(idx[(c+1)%3]), color)
		}
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.V3(0, 0, 0)
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}
