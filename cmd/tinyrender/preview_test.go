package main

import (
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/render"
	"github.com/taigrr/tinyrender/pkg/turntable"
)

func TestOrbitAxisDecays(t *testing.T) {
	a := newOrbitAxis(previewFPS)
	a.Velocity = 0.5
	for range 5 * previewFPS {
		a.Update()
	}
	if math.Abs(a.Velocity) > 1e-3 {
		t.Errorf("velocity after 5s = %v, want ~0", a.Velocity)
	}
	if a.Position <= 0.5 {
		t.Errorf("position = %v, want coasting past the first step", a.Position)
	}
}

func TestViewerApply(t *testing.T) {
	tests := []struct {
		name  string
		acts  []action
		check func(*viewer) bool
	}{
		{"yaw right", []action{actionYawRight}, func(v *viewer) bool { return v.yaw.Velocity > 0 }},
		{"pitch down", []action{actionPitchDown}, func(v *viewer) bool { return v.pitch.Velocity < 0 }},
		{"zoom in", []action{actionZoomIn}, func(v *viewer) bool { return v.zoom < 1 }},
		{"zoom clamped", []action{
			actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut,
			actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut,
			actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut,
			actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut, actionZoomOut,
		}, func(v *viewer) bool { return v.zoom == maxZoom }},
		{"cycle shading", []action{actionCycleShading}, func(v *viewer) bool { return v.shading == render.ShadingDepth }},
		{"cycle wraps", []action{actionCycleShading, actionCycleShading}, func(v *viewer) bool { return v.shading == render.ShadingFlat }},
		{"wireframe", []action{actionToggleWireframe}, func(v *viewer) bool { return v.wireframe }},
		{"shading clears wireframe", []action{actionToggleWireframe, actionCycleShading}, func(v *viewer) bool { return !v.wireframe }},
		{"reset", []action{actionYawLeft, actionZoomIn, actionReset}, func(v *viewer) bool {
			return v.yaw.Velocity == 0 && v.zoom == 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViewer(render.DefaultOptions(), false)
			for _, a := range tt.acts {
				if v.apply(a) {
					t.Fatalf("action %d quit the preview", a)
				}
			}
			if !tt.check(v) {
				t.Errorf("unexpected state: %+v", v)
			}
		})
	}

	if !newViewer(render.DefaultOptions(), false).apply(actionQuit) {
		t.Error("quit did not stop the preview")
	}
}

func TestViewerOptions(t *testing.T) {
	base := render.DefaultOptions()
	v := newViewer(base, false)

	opts := v.options(40, 40)
	if opts.Width != 40 || opts.Height != 40 {
		t.Errorf("size = %dx%d", opts.Width, opts.Height)
	}
	if opts.Camera.Eye.Sub(base.Camera.Eye).Len() > 1e-9 {
		t.Errorf("home eye = %v, want %v", opts.Camera.Eye, base.Camera.Eye)
	}
	if base.Camera.Eye != render.DefaultOptions().Camera.Eye {
		t.Error("options modified the base camera")
	}

	v.apply(actionZoomIn)
	zoomed := v.options(40, 40).Camera
	if zoomed.Direction().Len() >= base.Camera.Direction().Len() {
		t.Error("zooming in did not move the camera closer")
	}
}

func TestViewerPitchStopsAtLimit(t *testing.T) {
	v := newViewer(render.DefaultOptions(), false)
	v.pitch.Velocity = 10
	for range previewFPS {
		v.step()
	}
	if got := v.home.Pitch + v.pitch.Position; got > turntable.MaxPitch+1e-9 {
		t.Errorf("pitch = %v, want <= %v", got, turntable.MaxPitch)
	}
}

func TestViewerRender(t *testing.T) {
	r := render.NewRenderer(nil)
	v := newViewer(render.DefaultOptions(), false)
	mesh := models.Cube(2)

	for _, wire := range []bool{false, true} {
		v.wireframe = wire
		frame, err := v.render(r, mesh, 24, 24)
		if err != nil {
			t.Fatalf("wireframe=%v: %v", wire, err)
		}
		if frame.Image.Width != 24 || frame.Image.Height != 24 {
			t.Errorf("wireframe=%v: frame %dx%d", wire, frame.Image.Width, frame.Image.Height)
		}
	}
}

func TestPreviewSize(t *testing.T) {
	tests := []struct {
		cols, rows, want int
	}{
		{80, 24, 48},
		{40, 50, 40},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := previewSize(tt.cols, tt.rows); got != tt.want {
			t.Errorf("previewSize(%d, %d) = %d, want %d", tt.cols, tt.rows, got, tt.want)
		}
	}
}
