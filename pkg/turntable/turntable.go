// Package turntable renders a sequence of frames orbiting a mesh.
package turntable

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
	"golang.org/x/sync/errgroup"
)

// MaxPitch keeps the orbit off the poles, where the view would be parallel
// to up.
const MaxPitch = 1.5

// ErrNoFrames is returned when fewer than one frame is requested.
var ErrNoFrames = errors.New("turntable: no frames requested")

// Orbit places a camera on a sphere around Center. Yaw turns about +y,
// starting on +z; Pitch lifts toward +y.
type Orbit struct {
	Center     math3d.Vec3
	Radius     float64
	Yaw, Pitch float64
}

// OrbitFrom returns the orbit that puts the camera at eye.
func OrbitFrom(eye, center math3d.Vec3) Orbit {
	d := eye.Sub(center)
	r := d.Len()
	if r == 0 {
		return Orbit{Center: center}
	}
	return Orbit{
		Center: center,
		Radius: r,
		Yaw:    math.Atan2(d.X, d.Z),
		Pitch:  math.Asin(math3d.Clamp(d.Y/r, -1, 1)),
	}
}

// Eye returns the camera position.
func (o Orbit) Eye() math3d.Vec3 {
	pitch := math3d.Clamp(o.Pitch, -MaxPitch, MaxPitch)
	cp := math.Cos(pitch)
	return o.Center.Add(math3d.V3(
		cp*math.Sin(o.Yaw),
		math.Sin(pitch),
		cp*math.Cos(o.Yaw),
	).Scale(o.Radius))
}

// Camera builds a camera at Eye copying projection settings from base.
func (o Orbit) Camera(base *render.Camera) *render.Camera {
	cam := render.NewCamera(o.Eye(), o.Center, math3d.Up())
	if base != nil {
		cam.Orthographic = base.Orthographic
		cam.DepthRange = base.DepthRange
	}
	return cam
}

// Angles returns n yaw offsets that ease from 0 toward one full turn. A
// critically damped spring stepped n times over one second starts slowly,
// accelerates, and settles just short of 2π.
func Angles(n int) []float64 {
	if n <= 0 {
		return nil
	}
	spring := harmonica.NewSpring(harmonica.FPS(n), 8, 1)
	var pos, vel float64
	out := make([]float64, n)
	for i := range out {
		out[i] = pos
		pos, vel = spring.Update(pos, vel, 2*math.Pi)
	}
	return out
}

// Options configures a turntable run.
type Options struct {
	Frames  int
	Dir     string
	Ext     string // output extension including the dot, e.g. ".tga"
	Workers int
	// Wireframe draws edges only.
	Wireframe bool
}

// FramePath returns the file name of frame i.
func (o Options) FramePath(i int) string {
	return filepath.Join(o.Dir, fmt.Sprintf("frame_%03d%s", i, o.Ext))
}

// Render draws opts.Frames views of mesh orbiting base.Camera and writes
// them to disk. Frames render concurrently; the returned paths are in
// frame order.
func Render(ctx context.Context, r *render.Renderer, mesh render.Mesh, base render.Options, opts Options, logger *log.Logger) ([]string, error) {
	if opts.Frames <= 0 {
		return nil, ErrNoFrames
	}
	if base.Camera == nil {
		return nil, fmt.Errorf("turntable: %w: no camera", render.ErrInvalidOptions)
	}
	if opts.Ext == "" {
		opts.Ext = ".tga"
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("turntable: %w", err)
	}

	start := OrbitFrom(base.Camera.Eye, base.Camera.Center)
	angles := Angles(opts.Frames)
	paths := make([]string, opts.Frames)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i, yaw := range angles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			orbit := start
			orbit.Yaw += yaw
			frameOpts := base
			frameOpts.Camera = orbit.Camera(base.Camera)

			var (
				frame *render.Frame
				err   error
			)
			if opts.Wireframe {
				frame, err = r.RenderWireframe(mesh, frameOpts)
			} else {
				frame, err = r.Render(mesh, frameOpts)
			}
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}

			path := opts.FramePath(i)
			if err := render.SaveImage(path, frame.Image.ToImage()); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			paths[i] = path
			logger.Debug("turntable frame", "frame", i, "yaw", yaw, "elapsed", frame.Elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("turntable written", "frames", opts.Frames, "dir", opts.Dir)
	return paths, nil
}
