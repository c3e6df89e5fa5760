package render

import "github.com/taigrr/tinyrender/pkg/math3d"

// Camera describes a view of the scene and builds the pass transform for a
// given target size.
type Camera struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3

	// Orthographic drops the perspective term.
	Orthographic bool
	// DepthRange is the viewport depth span; zero means DefaultDepthRange.
	DepthRange float64

	// Cached transform (computed on demand)
	transform     Transform
	width, height int
	dirty         bool
}

// NewCamera creates a perspective camera at eye looking at center.
func NewCamera(eye, center, up math3d.Vec3) *Camera {
	return &Camera{
		Eye:    eye,
		Center: center,
		Up:     up,
		dirty:  true,
	}
}

// SetEye moves the camera and keeps it aimed at Center.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.dirty = true
}

// SetCenter retargets the camera.
func (c *Camera) SetCenter(center math3d.Vec3) {
	c.Center = center
	c.dirty = true
}

// Direction returns the unnormalized view direction Center - Eye.
func (c *Camera) Direction() math3d.Vec3 {
	return c.Center.Sub(c.Eye)
}

// Transform returns the stack for a width×height target. The viewport
// leaves an eighth of the image as margin on every side.
func (c *Camera) Transform(width, height int) Transform {
	if c.dirty || width != c.width || height != c.height {
		c.transform = c.compute(width, height)
		c.width, c.height = width, height
		c.dirty = false
	}
	return c.transform
}

func (c *Camera) compute(width, height int) Transform {
	w, h := float64(width), float64(height)
	depth := c.DepthRange
	if depth == 0 {
		depth = DefaultDepthRange
	}

	t := NewTransform()
	t.SetViewport(w/8, h/8, w*3/4, h*3/4, depth)
	// The pivot is Center; the perspective term puts the pinhole at Eye.
	t.SetLookAt(c.Direction(), c.Center, c.Up)
	if c.Orthographic {
		t.SetProjection(0)
	} else {
		t.SetProjection(c.Direction().Len())
	}
	return t
}
