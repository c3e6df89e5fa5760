// Package scene gathers a mesh and its texture maps, renders them with a
// config, and writes the output images.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/taigrr/tinyrender/pkg/config"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/render"
)

// DefaultMeshName names the built-in mesh used when no path is given.
const DefaultMeshName = "cube"

// ErrNoLightPass is returned when a shadow-map dump is requested from a
// frame rendered without shadows.
var ErrNoLightPass = errors.New("frame has no light pass")

// Scene is what one render consumes.
type Scene struct {
	Path     string // empty for the built-in mesh
	Mesh     *models.Mesh
	Diffuse  *render.Texture
	Normal   *render.Texture
	Specular *render.Texture
}

// Load reads the mesh at path, or builds the default cube when path is
// empty, then loads the maps named in cfg. A mesh failure is an error. A
// map failure is logged and the map is replaced by its placeholder, so the
// render still runs.
func Load(path string, cfg config.Config, logger *log.Logger) (*Scene, error) {
	s := &Scene{Path: path}

	var embedded *render.Texture
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case path == "":
		s.Mesh = models.Cube(2)
	case ext == ".glb" || ext == ".gltf":
		mesh, img, err := models.LoadGLBWithTexture(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if err := mesh.Validate(); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		s.Mesh = mesh
		if img != nil {
			embedded = render.TextureFromImage(img)
		}
	default:
		mesh, err := models.Load(path)
		if err != nil {
			return nil, err
		}
		s.Mesh = mesh
	}
	if cfg.Normalize {
		s.Mesh.Normalize()
	}

	wrap := render.WrapRepeat
	if cfg.Maps.Clamp {
		wrap = render.WrapClamp
	}
	s.Diffuse = loadMap(cfg.Maps.Diffuse, "diffuse", wrap, nil, logger)
	if s.Diffuse == nil && embedded != nil {
		logger.Debug("using embedded texture", "width", embedded.Width, "height", embedded.Height)
		s.Diffuse = embedded
	}

	// Without a usable map the interpolated normal is used. In tangent
	// space that is exactly what the flat map encodes.
	var flat *render.Texture
	if cfg.Maps.Tangent {
		flat = render.FlatNormalTexture()
	}
	s.Normal = loadMap(cfg.Maps.Normal, "normal", wrap, flat, logger)
	s.Specular = loadMap(cfg.Maps.Specular, "specular", wrap, nil, logger)

	logger.Info("loaded mesh",
		"name", s.Name(),
		"vertices", s.Mesh.VertexCount(),
		"faces", s.Mesh.FaceCount(),
	)
	return s, nil
}

// loadMap returns the texture at path sampled with wrap, or placeholder
// when path is empty or unreadable.
func loadMap(path, kind string, wrap render.WrapMode, placeholder *render.Texture, logger *log.Logger) *render.Texture {
	if path == "" {
		return placeholder
	}
	tex, err := render.LoadTexture(path)
	if err != nil {
		logger.Warn("map unavailable, using placeholder", "map", kind, "err", err)
		return placeholder
	}
	tex.Wrap = wrap
	logger.Debug("loaded map", "map", kind, "path", path, "width", tex.Width, "height", tex.Height)
	return tex
}

// Name is the mesh file name without extension.
func (s *Scene) Name() string {
	if s.Path == "" {
		return DefaultMeshName
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Apply sets the scene's maps on opts.
func (s *Scene) Apply(opts render.Options) render.Options {
	opts.Diffuse = s.Diffuse
	opts.Normal = s.Normal
	opts.Specular = s.Specular
	return opts
}

// Files lists the files a change to which should trigger a re-render.
func (s *Scene) Files(maps config.Maps) []string {
	var files []string
	for _, p := range []string{s.Path, maps.Diffuse, maps.Normal, maps.Specular} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}

// WriteFrame saves the color image and the optional depth dumps named in
// out. It returns the paths written.
func WriteFrame(frame *render.Frame, out config.Output) ([]string, error) {
	var written []string
	if err := render.SaveImage(out.Image, frame.Image.ToImage()); err != nil {
		return written, err
	}
	written = append(written, out.Image)

	if out.Depth != "" {
		if frame.ShadowImage == nil {
			return written, fmt.Errorf("%s: %w", out.Depth, ErrNoLightPass)
		}
		if err := render.SaveImage(out.Depth, frame.ShadowImage.ToImage()); err != nil {
			return written, err
		}
		written = append(written, out.Depth)
	}

	if out.ZBuffer != "" {
		if err := render.SaveImage(out.ZBuffer, frame.Depth.ToImage()); err != nil {
			return written, err
		}
		written = append(written, out.ZBuffer)
	}
	return written, nil
}

// Render runs one configured render of s and writes its outputs.
// wireframe draws edges only.
func Render(r *render.Renderer, s *Scene, cfg config.Config, wireframe bool) (*render.Frame, []string, error) {
	opts, err := cfg.RenderOptions()
	if err != nil {
		return nil, nil, err
	}
	opts = s.Apply(opts)

	var frame *render.Frame
	if wireframe {
		frame, err = r.RenderWireframe(s.Mesh, opts)
	} else {
		frame, err = r.Render(s.Mesh, opts)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", s.Name(), err)
	}

	written, err := WriteFrame(frame, cfg.Output)
	return frame, written, err
}
