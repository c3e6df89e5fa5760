package render

import (
	"errors"
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// twoRow is a 1×2 texture: red on the top image row, blue on the bottom.
func twoRow() *Texture {
	tex := NewTexture(1, 2)
	tex.Pixels[0] = ColorRed
	tex.Pixels[1] = ColorBlue
	return tex
}

func TestTextureSample(t *testing.T) {
	tests := []struct {
		name string
		wrap WrapMode
		uv   math3d.Vec2
		want Color
	}{
		{"v near 0 is the bottom row", WrapRepeat, math3d.V2(0.5, 0.25), ColorBlue},
		{"v near 1 is the top row", WrapRepeat, math3d.V2(0.5, 0.75), ColorRed},
		{"repeat wraps", WrapRepeat, math3d.V2(2.5, 1.25), ColorBlue},
		{"repeat negative", WrapRepeat, math3d.V2(-0.5, -0.25), ColorRed},
		{"clamp above", WrapClamp, math3d.V2(0.5, 1.5), ColorRed},
		{"clamp below", WrapClamp, math3d.V2(0.5, -3), ColorBlue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := twoRow()
			tex.Wrap = tt.wrap
			if got := tex.Sample(tt.uv); got != tt.want {
				t.Errorf("Sample(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}

	if got := (&Texture{}).Sample(math3d.V2(0.5, 0.5)); got != (Color{}) {
		t.Errorf("empty texture sample = %v", got)
	}
}

func TestTextureNormalAndSpecular(t *testing.T) {
	n := FlatNormalTexture().Normal(math3d.V2(0.3, 0.3))
	if math.Abs(n.Len()-1) > 1e-9 || n.Z < 0.999 {
		t.Errorf("flat normal = %v, want about (0,0,1)", n)
	}

	n = SolidTexture(RGB(0, 128, 128)).Normal(math3d.V2(0, 0))
	if n.X > -0.999 {
		t.Errorf("RGB(0,128,128) decodes to %v, want about -x", n)
	}

	if got := SolidTexture(RGB(40, 200, 200)).Specular(math3d.V2(0, 0)); got != 40 {
		t.Errorf("Specular = %v, want the red channel 40", got)
	}
}

func TestTextureFromImage(t *testing.T) {
	src := testImage()
	// A sub-image with a non-zero origin must still index from (0, 0).
	sub := src.SubImage(image.Rect(1, 0, 4, 2))
	tex := TextureFromImage(sub)
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size %dx%d, want 3x2", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(2, 1); got != ColorBlue {
		t.Errorf("GetPixel(2,1) = %v, want blue", got)
	}
	if got := tex.GetPixel(0, 0); got != ColorGreen {
		t.Errorf("GetPixel(0,0) = %v, want green", got)
	}
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffuse.tga")
	if err := SaveImage(path, testImage()); err != nil {
		t.Fatal(err)
	}
	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 4 || tex.Height != 2 {
		t.Errorf("size %dx%d, want 4x2", tex.Width, tex.Height)
	}
	// uv (0, 1) is the top-left texel.
	if got := tex.Sample(math3d.V2(0.01, 0.99)); got != ColorRed {
		t.Errorf("top-left sample = %v, want red", got)
	}

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.tga"))
	if !errors.Is(err, ErrTexture) {
		t.Errorf("missing file: err = %v, want ErrTexture", err)
	}
}
