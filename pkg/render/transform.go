package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// DefaultDepthRange is the screen-space depth span of the viewport.
const DefaultDepthRange = 255

// ErrDegenerateTransform is returned when a matrix holds NaN or Inf, which
// happens when the view direction is parallel to up or is zero.
var ErrDegenerateTransform = errors.New("degenerate transform")

// Transform is the matrix stack of one render pass. Each pass owns its own
// value, so a light pass and a camera pass never share state.
type Transform struct {
	ModelView  math3d.Mat4
	Projection math3d.Mat4
	Viewport   math3d.Mat4
}

// NewTransform returns a stack of identity matrices.
func NewTransform() Transform {
	return Transform{
		ModelView:  math3d.Identity(),
		Projection: math3d.Identity(),
		Viewport:   math3d.Identity(),
	}
}

// SetViewport maps clip space onto the w×h screen box at (x, y) with depths
// in [0, depthRange].
func (t *Transform) SetViewport(x, y, w, h, depthRange float64) {
	t.Viewport = math3d.Viewport(x, y, w, h, depthRange)
}

// SetLookAt orients the view along dir and moves origin to the camera-space
// origin. Camera-space z points back against dir, so larger z is closer.
// dir must not be parallel to up; Validate reports it if it is.
func (t *Transform) SetLookAt(dir, origin, up math3d.Vec3) {
	t.ModelView = math3d.LookDir(dir, origin, up)
}

// SetProjection sets the perspective term for a pinhole dist units in front
// of the camera-space origin. Zero selects an orthographic projection.
func (t *Transform) SetProjection(dist float64) {
	t.Projection = math3d.Projection(dist)
}

// Matrix returns Viewport · Projection · ModelView.
func (t Transform) Matrix() math3d.Mat4 {
	return t.Viewport.Mul(t.Projection).Mul(t.ModelView)
}

// Clip returns Projection · ModelView, the transform up to clip space.
func (t Transform) Clip() math3d.Mat4 {
	return t.Projection.Mul(t.ModelView)
}

// Validate reports ErrDegenerateTransform when any matrix is non-finite or
// the view basis collapsed.
func (t Transform) Validate() error {
	for name, m := range map[string]math3d.Mat4{
		"modelview":  t.ModelView,
		"projection": t.Projection,
		"viewport":   t.Viewport,
	} {
		if !m.IsFinite() {
			return fmt.Errorf("%w: %s has non-finite entries", ErrDegenerateTransform, name)
		}
	}
	if _, ok := t.ModelView.Inverse(); !ok {
		return fmt.Errorf("%w: view direction parallel to up", ErrDegenerateTransform)
	}
	return nil
}

// Project runs p through the full stack and the perspective divide.
func (t Transform) Project(p math3d.Vec3) math3d.Vec3 {
	return t.Matrix().MulVec3(p)
}
