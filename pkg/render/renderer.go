package render

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/taigrr/tinyrender/pkg/math3d"
)

// ErrInvalidOptions is returned by Render for unusable options.
var ErrInvalidOptions = errors.New("invalid render options")

// Options configures one render.
type Options struct {
	Width, Height int
	Camera        *Camera
	// Light is the world-space direction toward the light.
	Light      math3d.Vec3
	Shading    Shading
	Background Color
	Color      Color

	Diffuse        *Texture
	Normal         *Texture
	Specular       *Texture
	TangentNormals bool

	Ambient   float64
	Kd        float64
	Ks        float64
	Shininess float64

	// Shadows enables the light pass. Only Phong shading consumes it.
	Shadows      bool
	ShadowBias   float64
	ShadowFactor float64
}

// DefaultOptions returns an 800×800 Phong render of the [-1,1] cube seen
// from (1, 1, 3), lit from (1, 1, 1), with shadows.
func DefaultOptions() Options {
	return Options{
		Width:        800,
		Height:       800,
		Camera:       NewCamera(math3d.V3(1, 1, 3), math3d.V3(0, 0, 0), math3d.Up()),
		Light:        math3d.V3(1, 1, 1),
		Shading:      ShadingPhong,
		Background:   ColorBlack,
		Color:        ColorWhite,
		Ambient:      DefaultAmbient,
		Kd:           DefaultDiffuse,
		Ks:           DefaultSpecular,
		Shininess:    DefaultShininess,
		Shadows:      true,
		ShadowBias:   DefaultShadowBias,
		ShadowFactor: DefaultShadowFactor,
	}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.Camera == nil {
		return fmt.Errorf("%w: no camera", ErrInvalidOptions)
	}
	if o.Light.Len() == 0 {
		return fmt.Errorf("%w: zero light direction", ErrInvalidOptions)
	}
	return nil
}

// Frame holds every buffer a render produced.
type Frame struct {
	Image *Framebuffer
	Depth *DepthBuffer // camera-pass z-buffer

	// Light pass output; nil when shadows were off.
	ShadowImage *Framebuffer
	Shadow      *ShadowMap

	Stats   RasterStats
	Elapsed time.Duration
}

// Renderer runs the shadow and camera passes over a mesh.
type Renderer struct {
	logger *log.Logger
}

// NewRenderer creates a renderer. A nil logger discards output.
func NewRenderer(logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{logger: logger}
}

// Render draws mesh with opts. Passes run in order: the light pass first
// when shadows apply, then the camera pass consulting its depth buffer.
// Faces are drawn in mesh order.
func (r *Renderer) Render(mesh Mesh, opts Options) (*Frame, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if mesh == nil || mesh.FaceCount() == 0 {
		return nil, fmt.Errorf("%w: empty mesh", ErrInvalidOptions)
	}

	start := time.Now()
	cam := opts.Camera.Transform(opts.Width, opts.Height)
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("camera pass: %w", err)
	}

	cfg := ShaderConfig{
		Mesh:           mesh,
		Transform:      cam,
		Light:          opts.Light,
		Color:          opts.Color,
		Diffuse:        opts.Diffuse,
		Normal:         opts.Normal,
		Specular:       opts.Specular,
		TangentNormals: opts.TangentNormals,
		Ambient:        opts.Ambient,
		Kd:             opts.Kd,
		Ks:             opts.Ks,
		Shininess:      opts.Shininess,
	}

	frame := &Frame{}
	if opts.Shadows && opts.Shading == ShadingPhong {
		sm, img, stats, err := r.lightPass(mesh, opts, cam)
		if err != nil {
			return nil, err
		}
		cfg.Shadow = sm
		frame.Shadow = sm
		frame.ShadowImage = img
		r.logger.Debug("light pass", "triangles", stats.Triangles, "written", stats.Written)
	}

	sh, err := NewShader(opts.Shading, cfg)
	if err != nil {
		return nil, err
	}
	frame.Image = NewFramebuffer(opts.Width, opts.Height)
	frame.Image.Clear(opts.Background)
	frame.Depth = NewDepthBuffer(opts.Width, opts.Height)

	rast := NewRasterizer(frame.Image, frame.Depth)
	rast.DrawMesh(mesh, sh)
	frame.Stats = rast.Stats
	frame.Elapsed = time.Since(start)

	r.logger.Debug("camera pass",
		"shading", opts.Shading,
		"faces", mesh.FaceCount(),
		"covered", rast.Stats.Covered,
		"written", rast.Stats.Written,
		"discarded", rast.Stats.Discarded,
		"elapsed", frame.Elapsed,
	)
	return frame, nil
}

// lightPass renders mesh depth-only from the light and wraps the result in
// a ShadowMap for the camera transform cam.
func (r *Renderer) lightPass(mesh Mesh, opts Options, cam Transform) (*ShadowMap, *Framebuffer, RasterStats, error) {
	light := LightTransform(opts.Light, opts.Camera.Center, opts.Camera.Up, cam.Viewport)
	if err := light.Validate(); err != nil {
		return nil, nil, RasterStats{}, fmt.Errorf("light pass: %w", err)
	}

	img := NewFramebuffer(opts.Width, opts.Height)
	img.Clear(ColorBlack)
	depth := NewDepthBuffer(opts.Width, opts.Height)
	rast := NewRasterizer(img, depth)
	rast.DrawMesh(mesh, NewDepthShader(ShaderConfig{Mesh: mesh, Transform: light}))

	sm, err := NewShadowMap(depth, light, cam)
	if err != nil {
		return nil, nil, rast.Stats, fmt.Errorf("light pass: %w", err)
	}
	if opts.ShadowBias != 0 {
		sm.Bias = opts.ShadowBias
	}
	if opts.ShadowFactor != 0 {
		sm.Factor = opts.ShadowFactor
	}
	return sm, img, rast.Stats, nil
}

// RenderWireframe draws only the projected edges of mesh in opts.Color over
// opts.Background. No shading, depth test or light pass is involved.
func (r *Renderer) RenderWireframe(mesh Mesh, opts Options) (*Frame, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if mesh == nil || mesh.FaceCount() == 0 {
		return nil, fmt.Errorf("%w: empty mesh", ErrInvalidOptions)
	}

	start := time.Now()
	cam := opts.Camera.Transform(opts.Width, opts.Height)
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("wireframe: %w", err)
	}

	fb := NewFramebuffer(opts.Width, opts.Height)
	fb.Clear(opts.Background)
	NewWireframe(cam, fb).DrawMesh(mesh, opts.Color)

	frame := &Frame{Image: fb, Depth: NewDepthBuffer(opts.Width, opts.Height), Elapsed: time.Since(start)}
	r.logger.Debug("wireframe", "faces", mesh.FaceCount(), "elapsed", frame.Elapsed)
	return frame, nil
}
