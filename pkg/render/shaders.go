package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// FlatShader lights each face with its own triangle normal. Faces turned
// away from the light are discarded.
type FlatShader struct {
	cfg       ShaderConfig
	m         math3d.Mat4
	light     math3d.Vec3
	intensity float64
	uv        [3]math3d.Vec2
}

// NewFlatShader creates a flat shader.
func NewFlatShader(cfg ShaderConfig) *FlatShader {
	return &FlatShader{cfg: cfg, m: cfg.Transform.Matrix(), light: cfg.Light.Normalize()}
}

func (s *FlatShader) Vertex(face, corner int) math3d.Vec3 {
	if corner == 0 {
		s.intensity = s.cfg.Mesh.FaceNormal(face).Dot(s.light)
	}
	s.uv[corner] = s.cfg.texCoord(face, corner)
	return s.cfg.screen(s.m, s.cfg.position(face, corner))
}

func (s *FlatShader) Fragment(bar math3d.Vec3) (Color, bool) {
	if s.intensity <= 0 {
		return Color{}, true
	}
	uv := math3d.Weighted2(s.uv[0], s.uv[1], s.uv[2], bar)
	return MultiplyColor(s.cfg.albedo(uv), s.intensity), false
}

// GouraudShader computes diffuse intensity per vertex and interpolates it.
type GouraudShader struct {
	cfg       ShaderConfig
	m         math3d.Mat4
	light     math3d.Vec3
	intensity [3]float64
	uv        [3]math3d.Vec2
}

// NewGouraudShader creates a Gouraud shader.
func NewGouraudShader(cfg ShaderConfig) *GouraudShader {
	return &GouraudShader{cfg: cfg, m: cfg.Transform.Matrix(), light: cfg.Light.Normalize()}
}

func (s *GouraudShader) Vertex(face, corner int) math3d.Vec3 {
	s.intensity[corner] = max(0, s.cfg.Mesh.VertexNormal(face, corner).Dot(s.light))
	s.uv[corner] = s.cfg.texCoord(face, corner)
	return s.cfg.screen(s.m, s.cfg.position(face, corner))
}

func (s *GouraudShader) Fragment(bar math3d.Vec3) (Color, bool) {
	intensity := s.intensity[0]*bar.X + s.intensity[1]*bar.Y + s.intensity[2]*bar.Z
	uv := math3d.Weighted2(s.uv[0], s.uv[1], s.uv[2], bar)
	return MultiplyColor(s.cfg.albedo(uv), intensity), false
}

// PhongShader interpolates normals and evaluates ambient, diffuse and
// specular terms per pixel. It optionally reads object- or tangent-space
// normal maps, a specular exponent map and a shadow map.
type PhongShader struct {
	cfg    ShaderConfig
	clip   math3d.Mat4 // Projection · ModelView
	clipIT math3d.Mat4 // its inverse transpose, for normals
	light  math3d.Vec3 // light direction in clip space

	uv     [3]math3d.Vec2
	normal [3]math3d.Vec3 // clip-space normals
	ndc    [3]math3d.Vec3 // after the perspective divide
	screen [3]math3d.Vec3
}

// NewPhongShader creates a Phong shader.
func NewPhongShader(cfg ShaderConfig) *PhongShader {
	clip := cfg.Transform.Clip()
	return &PhongShader{
		cfg:    cfg,
		clip:   clip,
		clipIT: clip.InverseTranspose(),
		light:  clip.MulVec3Dir(cfg.Light).Normalize(),
	}
}

func (s *PhongShader) Vertex(face, corner int) math3d.Vec3 {
	s.uv[corner] = s.cfg.texCoord(face, corner)
	s.normal[corner] = s.clipIT.MulVec3Dir(s.cfg.Mesh.VertexNormal(face, corner))
	s.ndc[corner] = s.clip.MulVec3(s.cfg.position(face, corner))
	s.screen[corner] = s.cfg.Transform.Viewport.MulVec3(s.ndc[corner]).Round()
	return s.screen[corner]
}

func (s *PhongShader) Fragment(bar math3d.Vec3) (Color, bool) {
	uv := math3d.Weighted2(s.uv[0], s.uv[1], s.uv[2], bar)
	n := s.surfaceNormal(uv, bar)
	l := s.light

	diff := max(0, n.Dot(l))
	var spec float64
	if s.cfg.Ks != 0 {
		exp := s.cfg.Shininess
		if s.cfg.Specular != nil {
			exp = s.cfg.Specular.Specular(uv)
		}
		r := l.Reflect(n).Normalize()
		spec = math.Pow(max(r.Z, 0), exp)
	}

	shadow := 1.0
	if s.cfg.Shadow != nil {
		p := math3d.Weighted(s.screen[0], s.screen[1], s.screen[2], bar)
		shadow = s.cfg.Shadow.Attenuation(p)
	}

	base := s.cfg.albedo(uv)
	k := shadow * (s.cfg.Kd*diff + s.cfg.Ks*spec)
	return Color{
		R: saturate(s.cfg.Ambient + float64(base.R)*k),
		G: saturate(s.cfg.Ambient + float64(base.G)*k),
		B: saturate(s.cfg.Ambient + float64(base.B)*k),
		A: 255,
	}, false
}

// surfaceNormal returns the unit clip-space normal at the fragment.
func (s *PhongShader) surfaceNormal(uv math3d.Vec2, bar math3d.Vec3) math3d.Vec3 {
	bn := math3d.Weighted(s.normal[0], s.normal[1], s.normal[2], bar).Normalize()
	switch {
	case s.cfg.Normal == nil:
		return bn
	case !s.cfg.TangentNormals:
		return s.clipIT.MulVec3Dir(s.cfg.Normal.Normal(uv)).Normalize()
	}

	// Darboux frame: solve for the tangent (i) and bitangent (j) that map
	// the triangle's uv deltas onto its ndc edges, with bn as the third row.
	a := math3d.Mat3FromRows(s.ndc[1].Sub(s.ndc[0]), s.ndc[2].Sub(s.ndc[0]), bn)
	ai, ok := a.Inverse()
	if !ok {
		return bn
	}
	i := ai.MulVec3(math3d.V3(s.uv[1].X-s.uv[0].X, s.uv[2].X-s.uv[0].X, 0))
	j := ai.MulVec3(math3d.V3(s.uv[1].Y-s.uv[0].Y, s.uv[2].Y-s.uv[0].Y, 0))
	b := math3d.Mat3FromCols(i.Normalize(), j.Normalize(), bn)
	return b.MulVec3(s.cfg.Normal.Normal(uv)).Normalize()
}

// DepthShader writes the interpolated screen depth as a gray level, scaled
// so DefaultDepthRange is white. It is the shader of the light pass.
type DepthShader struct {
	cfg    ShaderConfig
	m      math3d.Mat4
	depth  float64
	screen [3]math3d.Vec3
}

// NewDepthShader creates a depth-only shader.
func NewDepthShader(cfg ShaderConfig) *DepthShader {
	depth := cfg.Transform.Viewport.Get(2, 2) * 2
	if depth == 0 {
		depth = DefaultDepthRange
	}
	return &DepthShader{cfg: cfg, m: cfg.Transform.Matrix(), depth: depth}
}

func (s *DepthShader) Vertex(face, corner int) math3d.Vec3 {
	s.screen[corner] = s.cfg.screen(s.m, s.cfg.position(face, corner))
	return s.screen[corner]
}

func (s *DepthShader) Fragment(bar math3d.Vec3) (Color, bool) {
	z := math3d.Weighted(s.screen[0], s.screen[1], s.screen[2], bar).Z
	g := saturate(255 * z / s.depth)
	return RGB(g, g, g), false
}
