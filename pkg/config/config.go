// Package config loads render settings from a TOML file and merges them with
// command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds everything one render run needs.
type Config struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Shading string `toml:"shading"`
	// Normalize recenters loaded meshes and scales them to fit [-1, 1].
	Normalize bool   `toml:"normalize"`
	Workers   int    `toml:"workers"`
	LogLevel  string `toml:"log_level"`

	Camera Camera `toml:"camera"`
	Light  Light  `toml:"light"`
	Maps   Maps   `toml:"maps"`
	Output Output `toml:"output"`
}

type Camera struct {
	Eye          [3]float64 `toml:"eye"`
	Center       [3]float64 `toml:"center"`
	Up           [3]float64 `toml:"up"`
	Orthographic bool       `toml:"orthographic"`
}

type Light struct {
	Direction [3]float64 `toml:"direction"`
	Ambient   float64    `toml:"ambient"`
	Diffuse   float64    `toml:"diffuse"`
	Specular  float64    `toml:"specular"`
	Shininess float64    `toml:"shininess"`

	Shadows      bool    `toml:"shadows"`
	ShadowBias   float64 `toml:"shadow_bias"`
	ShadowFactor float64 `toml:"shadow_factor"`
}

// Maps are texture paths. Empty means unused.
type Maps struct {
	Diffuse  string `toml:"diffuse"`
	Normal   string `toml:"normal"`
	Specular string `toml:"specular"`
	// Tangent reads the normal map in tangent space.
	Tangent bool `toml:"tangent"`
	// Clamp samples edge texels for UVs outside [0, 1] instead of tiling.
	Clamp bool `toml:"clamp"`
}

// Output are file paths. Depth and ZBuffer are optional debug dumps.
type Output struct {
	Image   string `toml:"image"`
	Depth   string `toml:"depth"`
	ZBuffer string `toml:"zbuffer"`
}

// Default returns the settings used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Width:     800,
		Height:    800,
		Shading:   render.ShadingPhong.String(),
		Normalize: true,
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		Camera: Camera{
			Eye:    [3]float64{1, 1, 3},
			Center: [3]float64{0, 0, 0},
			Up:     [3]float64{0, 1, 0},
		},
		Light: Light{
			Direction:    [3]float64{1, 1, 1},
			Ambient:      render.DefaultAmbient,
			Diffuse:      render.DefaultDiffuse,
			Specular:     render.DefaultSpecular,
			Shininess:    render.DefaultShininess,
			Shadows:      true,
			ShadowBias:   render.DefaultShadowBias,
			ShadowFactor: render.DefaultShadowFactor,
		},
		Output: Output{Image: "output.tga"},
	}
}

// Load reads a TOML file over Default. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the file setting alone.
type Flags struct {
	Width     int
	Height    int
	Shading   string
	Diffuse   string
	Normal    string
	Specular  string
	Tangent   bool
	Clamp     bool
	NoShadows bool
	Output    string
	Depth     string
	ZBuffer   string
	Workers   int
	LogLevel  string
}

// Resolve applies flags on top of c.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Shading != "" {
		c.Shading = flags.Shading
	}
	if flags.Diffuse != "" {
		c.Maps.Diffuse = flags.Diffuse
	}
	if flags.Normal != "" {
		c.Maps.Normal = flags.Normal
	}
	if flags.Specular != "" {
		c.Maps.Specular = flags.Specular
	}
	if flags.Tangent {
		c.Maps.Tangent = true
	}
	if flags.Clamp {
		c.Maps.Clamp = true
	}
	if flags.NoShadows {
		c.Light.Shadows = false
	}
	if flags.Output != "" {
		c.Output.Image = flags.Output
	}
	if flags.Depth != "" {
		c.Output.Depth = flags.Depth
	}
	if flags.ZBuffer != "" {
		c.Output.ZBuffer = flags.ZBuffer
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if _, err := render.ParseShading(c.Shading); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if vec(c.Light.Direction).Len() == 0 {
		return fmt.Errorf("%w: zero light direction", ErrInvalid)
	}
	if vec(c.Camera.Eye) == vec(c.Camera.Center) {
		return fmt.Errorf("%w: camera eye equals center", ErrInvalid)
	}
	if vec(c.Camera.Up).Len() == 0 {
		return fmt.Errorf("%w: zero up vector", ErrInvalid)
	}
	if c.Output.Image == "" {
		return fmt.Errorf("%w: no output path", ErrInvalid)
	}
	return nil
}

// RenderOptions converts c into the renderer's options. Texture maps are
// loaded separately.
func (c Config) RenderOptions() (render.Options, error) {
	shading, err := render.ParseShading(c.Shading)
	if err != nil {
		return render.Options{}, err
	}

	cam := render.NewCamera(vec(c.Camera.Eye), vec(c.Camera.Center), vec(c.Camera.Up))
	cam.Orthographic = c.Camera.Orthographic

	opts := render.DefaultOptions()
	opts.Width, opts.Height = c.Width, c.Height
	opts.Camera = cam
	opts.Light = vec(c.Light.Direction)
	opts.Shading = shading
	opts.TangentNormals = c.Maps.Tangent
	opts.Ambient = c.Light.Ambient
	opts.Kd = c.Light.Diffuse
	opts.Ks = c.Light.Specular
	opts.Shininess = c.Light.Shininess
	opts.Shadows = c.Light.Shadows
	opts.ShadowBias = c.Light.ShadowBias
	opts.ShadowFactor = c.Light.ShadowFactor
	return opts, nil
}

func vec(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}
