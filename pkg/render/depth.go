package render

import (
	"image"
	"math"
)

// DepthBuffer is a per-pixel record of the largest depth written in the
// current pass. Larger values are closer to the viewer. Empty pixels hold
// -Inf.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64 // Row-major, bottom row first
}

// NewDepthBuffer returns a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Clear resets every pixel to -Inf.
func (d *DepthBuffer) Clear() {
	// Use copy-doubling for faster clearing
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the depth at (x, y), or -Inf out of bounds.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(-1)
	}
	return d.Values[x+y*d.Width]
}

// TestAndSet stores z at (x, y) if it is strictly greater than the current
// value and reports whether it did. Ties keep the earlier value.
func (d *DepthBuffer) TestAndSet(x, y int, z float64) bool {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return false
	}
	idx := x + y*d.Width
	if z > d.Values[idx] {
		d.Values[idx] = z
		return true
	}
	return false
}

// Range returns the smallest and largest finite depths, and ok=false when
// nothing has been written.
func (d *DepthBuffer) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, z := range d.Values {
		if math.IsInf(z, 0) || math.IsNaN(z) {
			continue
		}
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
	}
	return lo, hi, hi >= lo
}

// ToImage renders the buffer as a top-down grayscale image: the closest
// depth is white, the farthest written depth is dark gray and empty pixels
// are black.
func (d *DepthBuffer) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.Width, d.Height))
	lo, hi, ok := d.Range()
	if !ok {
		return img
	}
	span := hi - lo
	for y := range d.Height {
		dst := (d.Height - 1 - y) * img.Stride
		for x := range d.Width {
			z := d.Values[x+y*d.Width]
			if math.IsInf(z, -1) {
				continue
			}
			t := 1.0
			if span > 0 {
				t = (z - lo) / span
			}
			img.Pix[dst+x] = uint8(32 + t*223)
		}
	}
	return img
}
