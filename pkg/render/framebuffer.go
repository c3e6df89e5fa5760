// Package render implements a CPU triangle rasterizer with programmable
// vertex and fragment stages, depth buffering and shadow mapping.
package render

import (
	"image"
	"image/color"
)

// Framebuffer is the color target of a render pass. Rows are stored
// bottom-up: (0, 0) is the bottom-left pixel, matching screen space after
// the viewport transform. ToImage flips it into a top-down image.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data, bottom row first
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FlipVertical mirrors the rows in place.
func (fb *Framebuffer) FlipVertical() {
	w := fb.Width
	for top, bot := 0, fb.Height-1; top < bot; top, bot = top+1, bot-1 {
		a := fb.Pixels[top*w : (top+1)*w]
		b := fb.Pixels[bot*w : (bot+1)*w]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}

// ToImage converts the framebuffer to a top-down image.RGBA, flipping the
// bottom-left origin into image coordinates.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		row := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
		dst := (fb.Height - 1 - y) * img.Stride
		for x, c := range row {
			img.Pix[dst+x*4] = c.R
			img.Pix[dst+x*4+1] = c.G
			img.Pix[dst+x*4+2] = c.B
			img.Pix[dst+x*4+3] = c.A
		}
	}
	return img
}

// Bounds reports the pixel-space (x0, y0, x1, y1) box holding every pixel
// that differs from bg, and ok=false when none does.
func (fb *Framebuffer) Bounds(bg color.RGBA) (x0, y0, x1, y1 int, ok bool) {
	x0, y0 = fb.Width, fb.Height
	x1, y1 = -1, -1
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.Pixels[y*fb.Width+x] == bg {
				continue
			}
			x0, y0 = min(x0, x), min(y0, y)
			x1, y1 = max(x1, x), max(y1, y)
		}
	}
	return x0, y0, x1, y1, x1 >= 0
}
