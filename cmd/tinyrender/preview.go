package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/tinyrender/pkg/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
	"github.com/taigrr/tinyrender/pkg/scene"
	"github.com/taigrr/tinyrender/pkg/turntable"
)

const (
	previewFPS  = 30
	orbitTorque = 0.08
	minZoom     = 0.3
	maxZoom     = 5.0
)

// orbitAxis is one orbit angle whose velocity decays on a spring.
type orbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func newOrbitAxis(fps int) orbitAxis {
	// Critically damped: the orbit coasts to a stop without swinging back.
	return orbitAxis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update advances Position by Velocity and eases Velocity toward 0.
func (a *orbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionYawLeft
	actionYawRight
	actionPitchUp
	actionPitchDown
	actionZoomIn
	actionZoomOut
	actionCycleShading
	actionToggleWireframe
	actionSave
	actionReset
)

func keyAction(ev uv.KeyPressEvent) action {
	switch {
	case ev.MatchString("q", "escape", "ctrl+c"):
		return actionQuit
	case ev.MatchString("a", "left"):
		return actionYawLeft
	case ev.MatchString("d", "right"):
		return actionYawRight
	case ev.MatchString("w", "up"):
		return actionPitchUp
	case ev.MatchString("s", "down"):
		return actionPitchDown
	case ev.MatchString("+", "="):
		return actionZoomIn
	case ev.MatchString("-", "_"):
		return actionZoomOut
	case ev.MatchString("m"):
		return actionCycleShading
	case ev.MatchString("x"):
		return actionToggleWireframe
	case ev.MatchString("space"):
		return actionSave
	case ev.MatchString("r"):
		return actionReset
	}
	return actionNone
}

// viewer is the preview's camera and mode state.
type viewer struct {
	home       turntable.Orbit
	yaw, pitch orbitAxis
	zoom       float64
	shading    render.Shading
	wireframe  bool
	base       render.Options
}

func newViewer(base render.Options, wire bool) *viewer {
	v := &viewer{
		home:      turntable.OrbitFrom(base.Camera.Eye, base.Camera.Center),
		shading:   base.Shading,
		wireframe: wire,
		base:      base,
	}
	v.reset()
	return v
}

func (v *viewer) reset() {
	v.yaw = newOrbitAxis(previewFPS)
	v.pitch = newOrbitAxis(previewFPS)
	v.zoom = 1
}

// apply updates the view for a and reports whether the preview should stop.
func (v *viewer) apply(a action) bool {
	switch a {
	case actionQuit:
		return true
	case actionYawLeft:
		v.yaw.Velocity -= orbitTorque
	case actionYawRight:
		v.yaw.Velocity += orbitTorque
	case actionPitchUp:
		v.pitch.Velocity += orbitTorque
	case actionPitchDown:
		v.pitch.Velocity -= orbitTorque
	case actionZoomIn:
		v.zoom = math3d.Clamp(v.zoom/1.1, minZoom, maxZoom)
	case actionZoomOut:
		v.zoom = math3d.Clamp(v.zoom*1.1, minZoom, maxZoom)
	case actionCycleShading:
		v.shading = (v.shading + 1) % (render.ShadingDepth + 1)
		v.wireframe = false
	case actionToggleWireframe:
		v.wireframe = !v.wireframe
	case actionReset:
		v.reset()
	}
	return false
}

func (v *viewer) step() {
	v.yaw.Update()
	v.pitch.Update()
	// Stop the pitch at the orbit limit instead of letting it wind up.
	pitch := v.home.Pitch + v.pitch.Position
	if clamped := math3d.Clamp(pitch, -turntable.MaxPitch, turntable.MaxPitch); clamped != pitch {
		v.pitch.Position = clamped - v.home.Pitch
		v.pitch.Velocity = 0
	}
}

// options returns render options for the current view at width×height.
func (v *viewer) options(width, height int) render.Options {
	o := v.home
	o.Yaw += v.yaw.Position
	o.Pitch += v.pitch.Position
	o.Radius *= v.zoom

	opts := v.base
	opts.Width, opts.Height = width, height
	opts.Camera = o.Camera(v.base.Camera)
	opts.Shading = v.shading
	return opts
}

func (v *viewer) render(r *render.Renderer, mesh render.Mesh, width, height int) (*render.Frame, error) {
	opts := v.options(width, height)
	if v.wireframe {
		return r.RenderWireframe(mesh, opts)
	}
	return r.Render(mesh, opts)
}

// previewSize is the largest square image whose half-block rendering fits
// in cols×rows cells.
func previewSize(cols, rows int) int {
	return max(1, min(cols, rows*2))
}

func runPreview(ctx context.Context, r *render.Renderer, s *scene.Scene, cfg config.Config, logger *log.Logger) error {
	opts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	v := newViewer(s.Apply(opts), *wireframe)

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// The log would scribble over the alt screen, so messages wait until
	// the terminal is restored.
	var saved []string
	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
		for _, p := range saved {
			logger.Info("saved view", "path", p)
		}
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan uv.Event)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / previewFPS)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
			case uv.KeyPressEvent:
				a := keyAction(ev)
				if a == actionSave {
					frame, err := v.render(r, s.Mesh, cfg.Width, cfg.Height)
					if err != nil {
						return err
					}
					written, err := scene.WriteFrame(frame, config.Output{Image: cfg.Output.Image})
					if err != nil {
						return err
					}
					saved = append(saved, written...)
					continue
				}
				if v.apply(a) {
					return nil
				}
			}

		case <-ticker.C:
			v.step()
			side := previewSize(width, height)
			frame, err := v.render(r, s.Mesh, side, side)
			if err != nil {
				return err
			}
			term.Erase()
			frame.Image.Draw(term, uv.Rect(0, 0, width, height))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
