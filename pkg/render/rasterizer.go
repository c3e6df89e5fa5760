package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// DegenerateEpsilon is the smallest |cross.z| (twice the screen-space
// area) a triangle may have before Barycentric treats it as degenerate.
const DegenerateEpsilon = 1e-2

// Barycentric returns the barycentric weights of p with respect to the
// screen-space triangle abc, using only x and y. A degenerate triangle
// yields (-1, 1, 1), which every inside test rejects.
func Barycentric(a, b, c, p math3d.Vec3) math3d.Vec3 {
	sx := math3d.V3(c.X-a.X, b.X-a.X, a.X-p.X)
	sy := math3d.V3(c.Y-a.Y, b.Y-a.Y, a.Y-p.Y)
	u := sx.Cross(sy)
	if math.Abs(u.Z) < DegenerateEpsilon {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}

// Inside reports whether all weights are non-negative.
func Inside(bar math3d.Vec3) bool {
	return bar.X >= 0 && bar.Y >= 0 && bar.Z >= 0
}

// RasterStats counts what a rasterizer did since the last reset.
type RasterStats struct {
	Triangles     int // Triangles submitted
	Skipped       int // Triangles with non-finite vertices
	Covered       int // Pixels inside a triangle
	DepthRejected int // Covered pixels that lost the depth test
	Discarded     int // Pixels the fragment stage discarded
	Written       int // Pixels written to the color target
}

// Rasterizer fills screen-space triangles into a color target and a depth
// buffer of the same size. It is not safe for concurrent use.
type Rasterizer struct {
	fb    *Framebuffer
	depth *DepthBuffer
	Stats RasterStats
}

// NewRasterizer creates a rasterizer over fb and depth.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{fb: fb, depth: depth}
}

// Width returns the target width.
func (r *Rasterizer) Width() int {
	return r.depth.Width
}

// Height returns the target height.
func (r *Rasterizer) Height() int {
	return r.depth.Height
}

// DrawTriangle rasterizes pts with sh. Pixels are visited inside the
// triangle's bounding box clamped to the target, which is the only
// clipping performed. A pixel is shaded when its interpolated depth is
// strictly greater than the stored one; the depth is stored before the
// fragment stage runs, and the color is written unless it discards.
func (r *Rasterizer) DrawTriangle(pts [3]math3d.Vec3, sh Shader) {
	r.Stats.Triangles++
	for _, p := range pts {
		if !p.IsFinite() {
			r.Stats.Skipped++
			return
		}
	}

	lo := pts[0].Min(pts[1]).Min(pts[2])
	hi := pts[0].Max(pts[1]).Max(pts[2])
	x0 := int(math.Max(0, math.Floor(lo.X)))
	y0 := int(math.Max(0, math.Floor(lo.Y)))
	x1 := int(math.Min(float64(r.Width()-1), math.Ceil(hi.X)))
	y1 := int(math.Min(float64(r.Height()-1), math.Ceil(hi.Y)))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := math3d.V3(float64(x), float64(y), 0)
			bar := Barycentric(pts[0], pts[1], pts[2], p)
			if !Inside(bar) {
				continue
			}
			r.Stats.Covered++

			z := pts[0].Z*bar.X + pts[1].Z*bar.Y + pts[2].Z*bar.Z
			if !r.depth.TestAndSet(x, y, z) {
				r.Stats.DepthRejected++
				continue
			}
			c, discard := sh.Fragment(bar)
			if discard {
				r.Stats.Discarded++
				continue
			}
			if r.fb != nil {
				r.fb.SetPixel(x, y, c)
			}
			r.Stats.Written++
		}
	}
}

// DrawMesh runs every face of mesh through sh in mesh order.
func (r *Rasterizer) DrawMesh(mesh Mesh, sh Shader) {
	for face := range mesh.FaceCount() {
		var pts [3]math3d.Vec3
		for corner := range 3 {
			pts[corner] = sh.Vertex(face, corner)
		}
		r.DrawTriangle(pts, sh)
	}
}
