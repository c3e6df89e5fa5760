package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// facingTriangle is a single triangle in the z=0 plane facing +z.
func facingTriangle() *triMesh {
	n := math3d.V3(0, 0, 1)
	return &triMesh{
		pos:   []math3d.Vec3{math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(0, 1, 0)},
		uv:    []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0.5, 1)},
		norm:  []math3d.Vec3{n, n, n},
		faces: [][3]int{{0, 1, 2}},
	}
}

// frontCamera looks at the origin from +z.
func frontCamera() Transform {
	return NewCamera(math3d.V3(0, 0, 3), math3d.V3(0, 0, 0), math3d.Up()).Transform(100, 100)
}

// shadeCenter draws mesh with the given shading and returns the center pixel.
func shadeCenter(t *testing.T, s Shading, cfg ShaderConfig) Color {
	t.Helper()
	fb, _, r := newTarget(100, 100)
	sh, err := NewShader(s, cfg)
	if err != nil {
		t.Fatalf("NewShader(%v): %v", s, err)
	}
	r.DrawMesh(cfg.Mesh, sh)
	return fb.GetPixel(50, 50)
}

func baseConfig(light math3d.Vec3) ShaderConfig {
	return ShaderConfig{
		Mesh:      facingTriangle(),
		Transform: frontCamera(),
		Light:     light,
		Color:     ColorWhite,
		Kd:        1,
	}
}

func closeColor(a, b Color, tol int) bool {
	d := func(x, y uint8) bool { return abs(int(x)-int(y)) <= tol }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

func TestParseShading(t *testing.T) {
	tests := []struct {
		name string
		want Shading
	}{
		{"flat", ShadingFlat},
		{"gouraud", ShadingGouraud},
		{"Phong", ShadingPhong},
		{"DEPTH", ShadingDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShading(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseShading(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := ParseShading("toon"); !errors.Is(err, ErrUnknownShading) {
		t.Errorf("unknown name error = %v, want ErrUnknownShading", err)
	}
	if got := ShadingPhong.String(); got != "phong" {
		t.Errorf("String() = %q", got)
	}
	if _, err := NewShader(Shading(42), ShaderConfig{}); !errors.Is(err, ErrUnknownShading) {
		t.Errorf("NewShader(42) error = %v", err)
	}
}

func TestFlatShader(t *testing.T) {
	t.Run("facing the light", func(t *testing.T) {
		got := shadeCenter(t, ShadingFlat, baseConfig(math3d.V3(0, 0, 1)))
		if got != ColorWhite {
			t.Errorf("center = %v, want white", got)
		}
	})

	t.Run("oblique light", func(t *testing.T) {
		// cos 60° = 0.5
		got := shadeCenter(t, ShadingFlat, baseConfig(math3d.V3(0, 0.8660254, 0.5)))
		if !closeColor(got, RGB(127, 127, 127), 1) {
			t.Errorf("center = %v, want half intensity", got)
		}
	})

	t.Run("facing away is discarded", func(t *testing.T) {
		fb, depth, r := newTarget(100, 100)
		cfg := baseConfig(math3d.V3(0, 0, -1))
		r.DrawMesh(cfg.Mesh, NewFlatShader(cfg))
		if got := fb.GetPixel(50, 50); got != ColorBlack {
			t.Errorf("center = %v, want background", got)
		}
		if r.Stats.Discarded == 0 {
			t.Error("no fragments discarded")
		}
		if math.Abs(depth.At(50, 50)-127.5) > 1e-9 {
			t.Errorf("discarded fragment depth = %v, want 127.5", depth.At(50, 50))
		}
	})

	t.Run("diffuse texture", func(t *testing.T) {
		cfg := baseConfig(math3d.V3(0, 0, 1))
		cfg.Diffuse = SolidTexture(ColorGreen)
		if got := shadeCenter(t, ShadingFlat, cfg); got != ColorGreen {
			t.Errorf("center = %v, want green", got)
		}
	})
}

func TestGouraudShader(t *testing.T) {
	cfg := baseConfig(math3d.V3(0, 0, 1))
	m := cfg.Mesh.(*triMesh)
	// Bottom corners face the light, the apex faces sideways.
	m.norm[2] = math3d.V3(1, 0, 0)

	fb, _, r := newTarget(100, 100)
	r.DrawMesh(m, NewGouraudShader(cfg))

	bottom := fb.GetPixel(50, 15).R
	middle := fb.GetPixel(50, 50).R
	top := fb.GetPixel(50, 85).R
	if !(bottom > middle && middle > top) {
		t.Errorf("intensity should fall toward the apex: %d, %d, %d", bottom, middle, top)
	}
	if bottom < 240 {
		t.Errorf("near-lit corner = %d, want close to 255", bottom)
	}
}

func TestPhongShader(t *testing.T) {
	tests := []struct {
		name   string
		light  math3d.Vec3
		adjust func(*ShaderConfig)
		want   Color
		tol    int
	}{
		{
			name:  "diffuse head-on",
			light: math3d.V3(0, 0, 1),
			want:  ColorWhite,
		},
		{
			name:   "grazing light leaves ambient",
			light:  math3d.V3(1, 0, 0),
			adjust: func(c *ShaderConfig) { c.Ambient = 20 },
			want:   RGB(20, 20, 20),
		},
		{
			name:  "specular only",
			light: math3d.V3(0, 0, 1),
			adjust: func(c *ShaderConfig) {
				c.Kd, c.Ks, c.Shininess = 0, 1, 16
			},
			want: ColorWhite,
		},
		{
			name:  "specular map exponent",
			light: math3d.V3(0, 0, 1),
			adjust: func(c *ShaderConfig) {
				c.Kd, c.Ks = 0, 0.5
				c.Specular = SolidTexture(RGB(4, 0, 0))
			},
			want: RGB(127, 127, 127),
		},
		{
			name:  "object-space normal map",
			light: math3d.V3(0, 0, 1),
			adjust: func(c *ShaderConfig) {
				// Decodes to +x, perpendicular to the light.
				c.Normal = SolidTexture(RGB(255, 128, 128))
			},
			want: ColorBlack,
			tol:  2,
		},
		{
			name:  "flat tangent normal map",
			light: math3d.V3(0, 0, 1),
			adjust: func(c *ShaderConfig) {
				c.Normal = FlatNormalTexture()
				c.TangentNormals = true
			},
			want: ColorWhite,
			tol:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(tt.light)
			if tt.adjust != nil {
				tt.adjust(&cfg)
			}
			if got := shadeCenter(t, ShadingPhong, cfg); !closeColor(got, tt.want, tt.tol) {
				t.Errorf("center = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhongShadowAttenuation(t *testing.T) {
	cfg := baseConfig(math3d.V3(0, 0, 1))
	// A light-pass buffer that is closer than everything shadows every pixel.
	occluder := NewDepthBuffer(100, 100)
	for i := range occluder.Values {
		occluder.Values[i] = 1e6
	}
	cfg.Shadow = &ShadowMap{Depth: occluder, Matrix: math3d.Identity(), Bias: DefaultShadowBias, Factor: 0.3}

	got := shadeCenter(t, ShadingPhong, cfg)
	if !closeColor(got, RGB(76, 76, 76), 1) {
		t.Errorf("shadowed center = %v, want 0.3 of white", got)
	}
}

func TestDepthShader(t *testing.T) {
	cam := frontCamera()
	light := LightTransform(math3d.V3(0, 0, 1), math3d.V3(0, 0, 0), math3d.Up(), cam.Viewport)
	cfg := ShaderConfig{Mesh: facingTriangle(), Transform: light}

	got := shadeCenter(t, ShadingDepth, cfg)
	// z=0 lands mid-range: 255 * 127.5 / 255.
	if !closeColor(got, RGB(127, 127, 127), 1) {
		t.Errorf("center = %v, want mid gray", got)
	}
}

func TestVertexRoundsToPixels(t *testing.T) {
	cfg := baseConfig(math3d.V3(0, 0, 1))
	for _, s := range []Shading{ShadingFlat, ShadingGouraud, ShadingPhong, ShadingDepth} {
		sh, err := NewShader(s, cfg)
		if err != nil {
			t.Fatal(err)
		}
		for c := range 3 {
			p := sh.Vertex(0, c)
			if p.X != float64(int(p.X)) || p.Y != float64(int(p.Y)) {
				t.Errorf("%v corner %d = %v, want whole-pixel x and y", s, c, p)
			}
		}
	}
}
