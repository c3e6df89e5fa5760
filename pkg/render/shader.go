package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Lighting defaults, in 0-255 color units for Ambient.
const (
	DefaultAmbient   = 5.0
	DefaultDiffuse   = 1.0
	DefaultSpecular  = 0.6
	DefaultShininess = 16.0
)

// ErrUnknownShading is returned for a shading name with no shader.
var ErrUnknownShading = errors.New("unknown shading")

// Mesh is the read-only geometry a shader pulls attributes from.
// This interface is defined here to avoid import cycles with models.
type Mesh interface {
	VertexCount() int
	FaceCount() int
	FaceVertexIndices(face int) [3]int
	FaceTextureIndices(face int) [3]int
	VertexPosition(i int) math3d.Vec3
	VertexTexCoord(i int) math3d.Vec2
	FaceNormal(face int) math3d.Vec3
	VertexNormal(face, corner int) math3d.Vec3
}

// Shader is the programmable part of the pipeline.
//
// Vertex is called for corners 0, 1, 2 of a face, in order, before any
// Fragment call for that face. It stores per-corner varyings and returns
// the screen position with x and y rounded to whole pixels.
//
// Fragment receives barycentric weights for a covered pixel, interpolates
// the varyings and returns the pixel color. discard=true leaves the color
// target untouched.
type Shader interface {
	Vertex(face, corner int) math3d.Vec3
	Fragment(bar math3d.Vec3) (c Color, discard bool)
}

// Shading selects a Shader implementation.
type Shading int

const (
	ShadingFlat Shading = iota
	ShadingGouraud
	ShadingPhong
	ShadingDepth
)

var shadingNames = map[Shading]string{
	ShadingFlat:    "flat",
	ShadingGouraud: "gouraud",
	ShadingPhong:   "phong",
	ShadingDepth:   "depth",
}

func (s Shading) String() string {
	if n, ok := shadingNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Shading(%d)", int(s))
}

// ParseShading maps a name such as "phong" to its Shading.
func ParseShading(name string) (Shading, error) {
	for s, n := range shadingNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShading, name)
}

// ShaderConfig carries everything any shader may need. Each shader reads
// only the fields its technique uses.
type ShaderConfig struct {
	Mesh      Mesh
	Transform Transform
	// Light is the world-space direction toward the light.
	Light math3d.Vec3
	// Color is the surface color when no diffuse map is set.
	Color Color

	Diffuse  *Texture
	Normal   *Texture
	Specular *Texture
	// TangentNormals reads Normal as a tangent-space map instead of an
	// object-space one.
	TangentNormals bool

	Ambient   float64
	Kd        float64
	Ks        float64
	Shininess float64 // Specular exponent when Specular is nil

	// Shadow, when set, attenuates fragments the light cannot see.
	Shadow *ShadowMap
}

// NewShader builds the shader for s.
func NewShader(s Shading, cfg ShaderConfig) (Shader, error) {
	switch s {
	case ShadingFlat:
		return NewFlatShader(cfg), nil
	case ShadingGouraud:
		return NewGouraudShader(cfg), nil
	case ShadingPhong:
		return NewPhongShader(cfg), nil
	case ShadingDepth:
		return NewDepthShader(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownShading, s)
	}
}

// texCoord returns the uv of a face corner.
func (cfg *ShaderConfig) texCoord(face, corner int) math3d.Vec2 {
	return cfg.Mesh.VertexTexCoord(cfg.Mesh.FaceTextureIndices(face)[corner])
}

// position returns the object-space position of a face corner.
func (cfg *ShaderConfig) position(face, corner int) math3d.Vec3 {
	return cfg.Mesh.VertexPosition(cfg.Mesh.FaceVertexIndices(face)[corner])
}

// albedo is the unlit surface color at uv.
func (cfg *ShaderConfig) albedo(uv math3d.Vec2) Color {
	if cfg.Diffuse != nil {
		return cfg.Diffuse.Sample(uv)
	}
	return cfg.Color
}

// screen projects an object-space point to rounded screen coordinates.
func (cfg *ShaderConfig) screen(m math3d.Mat4, p math3d.Vec3) math3d.Vec3 {
	return m.MulVec3(p).Round()
}
