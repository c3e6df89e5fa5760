package render

import (
	"fmt"
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Shadow defaults. The bias is in screen depth units (DefaultDepthRange
// spans the light's clip cube) and is a constant, not derived from surface
// slope. It must cover the depth change across one light pixel on faces lit
// at a grazing angle, which at 100 px exceeds 20 units.
const (
	DefaultShadowBias   = 43.34
	DefaultShadowFactor = 0.3
)

// ShadowMap is the product of the light pass: its depth buffer plus the
// matrix that carries camera-pass screen coordinates into light-pass
// screen coordinates.
type ShadowMap struct {
	Depth  *DepthBuffer
	Matrix math3d.Mat4
	Bias   float64
	// Factor scales the lit terms of occluded fragments.
	Factor float64
}

// NewShadowMap builds Matrix = light · inverse(camera) over a populated
// light-pass depth buffer.
func NewShadowMap(depth *DepthBuffer, light, camera Transform) (*ShadowMap, error) {
	inv, ok := camera.Matrix().Inverse()
	if !ok {
		return nil, fmt.Errorf("%w: camera matrix is singular", ErrDegenerateTransform)
	}
	return &ShadowMap{
		Depth:  depth,
		Matrix: light.Matrix().Mul(inv),
		Bias:   DefaultShadowBias,
		Factor: DefaultShadowFactor,
	}, nil
}

// LightSpace maps a camera-pass screen point into light-pass screen space.
func (s *ShadowMap) LightSpace(p math3d.Vec3) math3d.Vec3 {
	return s.Matrix.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide()
}

// Lit reports whether the light sees the camera-pass screen point p.
// Points that fall outside the light's buffer, or on a pixel the light pass
// never wrote, count as lit.
func (s *ShadowMap) Lit(p math3d.Vec3) bool {
	q := s.LightSpace(p)
	stored := s.Depth.At(int(math.Round(q.X)), int(math.Round(q.Y)))
	if math.IsInf(stored, -1) {
		return true
	}
	return stored < q.Z+s.Bias
}

// Attenuation returns 1 for lit points and Factor otherwise.
func (s *ShadowMap) Attenuation(p math3d.Vec3) float64 {
	if s.Lit(p) {
		return 1
	}
	return s.Factor
}

// LightTransform builds the orthographic light-pass stack looking along
// -light toward center, with the same viewport as the camera pass.
// When light is parallel to up, the z axis is used as up instead.
func LightTransform(light, center, up math3d.Vec3, viewport math3d.Mat4) Transform {
	dir := light.Normalize().Negate()
	if math.Abs(dir.Dot(up.Normalize())) > 0.999 {
		up = math3d.V3(0, 0, 1)
	}
	t := NewTransform()
	t.Viewport = viewport
	t.SetLookAt(dir, center, up)
	t.SetProjection(0)
	return t
}
