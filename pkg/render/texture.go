package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"golang.org/x/image/draw"
)

// ErrTexture wraps every texture load failure.
var ErrTexture = errors.New("texture")

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// Texture holds a 2D image for diffuse, normal and specular lookups.
// Sampling is nearest-pixel; there is no filtering.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data, top row first
	Wrap   WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
		Wrap:   WrapRepeat,
	}
}

// SolidTexture returns a 1×1 texture of c. It stands in for maps that failed
// to load so a render can continue.
func SolidTexture(c Color) *Texture {
	t := NewTexture(1, 1)
	t.Pixels[0] = c
	return t
}

// FlatNormalTexture is the tangent-space placeholder: every texel decodes to
// (0, 0, 1), i.e. the interpolated normal.
func FlatNormalTexture() *Texture {
	return SolidTexture(RGB(128, 128, 255))
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string) (*Texture, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTexture, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	tex := NewTexture(b.Dx(), b.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			i := rgba.PixOffset(x, y)
			tex.Pixels[y*tex.Width+x] = Color{R: rgba.Pix[i], G: rgba.Pix[i+1], B: rgba.Pix[i+2], A: rgba.Pix[i+3]}
		}
	}
	return tex
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the texel nearest to uv. V=0 is the bottom of the image.
func (t *Texture) Sample(uv math3d.Vec2) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u := t.wrapCoord(uv.X)
	// Flip V coordinate (image Y=0 at top, UV V=0 at bottom)
	v := 1.0 - t.wrapCoord(uv.Y)

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

// Normal decodes the texel at uv as a unit vector: RGB in [0,255] maps to
// XYZ in [-1,1].
func (t *Texture) Normal(uv math3d.Vec2) math3d.Vec3 {
	c := t.Sample(uv)
	return math3d.V3(
		float64(c.R)/255*2-1,
		float64(c.G)/255*2-1,
		float64(c.B)/255*2-1,
	).Normalize()
}

// Specular returns the specular exponent stored in the red channel at uv.
func (t *Texture) Specular(uv math3d.Vec2) float64 {
	return float64(t.Sample(uv).R)
}

// wrapCoord applies the wrap mode to a coordinate.
func (t *Texture) wrapCoord(coord float64) float64 {
	switch t.Wrap {
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	default:
		coord = coord - math.Floor(coord) // fmod to [0,1)
	}
	return coord
}
