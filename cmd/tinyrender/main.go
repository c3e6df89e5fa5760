// tinyrender - software renderer for triangle meshes
// Renders an OBJ, GLB/glTF or STL mesh to an image file with flat, Gouraud,
// Phong or depth shading and optional shadow mapping.
//
// Modes:
//
//	(default)     Render one image (the built-in cube when no mesh is given)
//	-watch        Re-render whenever the mesh, maps or config file change
//	-turntable N  Write N frames orbiting the mesh
//	-batch dir    Render every mesh in dir and write manifest.json
//	-preview      Orbit the mesh interactively in the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/taigrr/tinyrender/pkg/batch"
	"github.com/taigrr/tinyrender/pkg/config"
	"github.com/taigrr/tinyrender/pkg/logging"
	"github.com/taigrr/tinyrender/pkg/render"
	"github.com/taigrr/tinyrender/pkg/scene"
	"github.com/taigrr/tinyrender/pkg/turntable"
	"github.com/taigrr/tinyrender/pkg/watch"
)

var (
	configPath = flag.String("config", "", "TOML config file")
	width      = flag.Int("width", 0, "Output width in pixels")
	height     = flag.Int("height", 0, "Output height in pixels")
	shading    = flag.String("shader", "", "Shading: flat, gouraud, phong or depth")
	diffuse    = flag.String("diffuse", "", "Diffuse texture")
	normal     = flag.String("normal", "", "Normal map")
	specular   = flag.String("specular", "", "Specular map")
	tangent    = flag.Bool("tangent", false, "Read the normal map in tangent space")
	clampUV    = flag.Bool("clamp", false, "Clamp texture coordinates instead of tiling")
	noShadows  = flag.Bool("no-shadows", false, "Skip the shadow pass")
	output     = flag.String("output", "", "Output image (.tga, .png or .webp)")
	depthOut   = flag.String("depth", "", "Write the shadow buffer to this image")
	zbufferOut = flag.String("zbuffer", "", "Write the camera z-buffer to this image")
	wireframe  = flag.Bool("wireframe", false, "Draw mesh edges only")
	preview    = flag.Bool("preview", false, "Orbit the mesh in the terminal")
	watchFiles = flag.Bool("watch", false, "Re-render when input files change")
	frames     = flag.Int("turntable", 0, "Write N frames orbiting the mesh")
	batchDir   = flag.String("batch", "", "Render every mesh in this directory")
	workers    = flag.Int("workers", 0, "Concurrent renders for -turntable and -batch")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tinyrender - software mesh renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tinyrender [options] [mesh.obj|mesh.glb|mesh.stl]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D, arrows - Orbit\n")
		fmt.Fprintf(os.Stderr, "  +/-             - Zoom\n")
		fmt.Fprintf(os.Stderr, "  M               - Cycle shading\n")
		fmt.Fprintf(os.Stderr, "  X               - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  Space           - Save the current view\n")
		fmt.Fprintf(os.Stderr, "  R               - Reset view\n")
		fmt.Fprintf(os.Stderr, "  Q, Esc          - Quit\n")
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0)); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	cfg.Resolve(config.Flags{
		Width:     *width,
		Height:    *height,
		Shading:   *shading,
		Diffuse:   *diffuse,
		Normal:    *normal,
		Specular:  *specular,
		Tangent:   *tangent,
		Clamp:     *clampUV,
		NoShadows: *noShadows,
		Output:    *output,
		Depth:     *depthOut,
		ZBuffer:   *zbufferOut,
		Workers:   *workers,
		LogLevel:  *logLevel,
	})
	return cfg, cfg.Validate()
}

func run(ctx context.Context, meshPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	r := render.NewRenderer(logger)

	if *batchDir != "" {
		return runBatch(ctx, cfg, logger)
	}

	s, err := scene.Load(meshPath, cfg, logger)
	if err != nil {
		return err
	}

	switch {
	case *frames > 0:
		return runTurntable(ctx, r, s, cfg, logger)
	case *preview:
		return runPreview(ctx, r, s, cfg, logger)
	case *watchFiles:
		return runWatch(ctx, r, meshPath, s, cfg, logger)
	}
	return renderOnce(r, s, cfg, logger)
}

func renderOnce(r *render.Renderer, s *scene.Scene, cfg config.Config, logger *log.Logger) error {
	frame, written, err := scene.Render(r, s, cfg, *wireframe)
	if err != nil {
		return err
	}
	logger.Info("rendered",
		"mesh", s.Name(),
		"shading", cfg.Shading,
		"pixels", frame.Stats.Written,
		"elapsed", frame.Elapsed,
		"files", written,
	)
	return nil
}

func runTurntable(ctx context.Context, r *render.Renderer, s *scene.Scene, cfg config.Config, logger *log.Logger) error {
	opts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	opts = s.Apply(opts)

	start := time.Now()
	paths, err := turntable.Render(ctx, r, s.Mesh, opts, turntable.Options{
		Frames:    *frames,
		Dir:       filepath.Dir(cfg.Output.Image),
		Ext:       filepath.Ext(cfg.Output.Image),
		Workers:   cfg.Workers,
		Wireframe: *wireframe,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("turntable done", "frames", len(paths), "elapsed", time.Since(start))
	return nil
}

func runBatch(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	outDir := filepath.Dir(cfg.Output.Image)
	m, err := batch.Run(ctx, batch.Config{
		InputDir:         *batchDir,
		OutputDir:        outDir,
		Ext:              filepath.Ext(cfg.Output.Image),
		Workers:          cfg.Workers,
		Render:           cfg,
		ProgressInterval: 2 * time.Second,
	}, logger)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, "manifest.json")
	if err := m.Write(path); err != nil {
		return err
	}
	logger.Info("manifest written", "path", path, "run", m.RunID)
	if failed := len(m.Results) - m.Succeeded(); failed > 0 {
		return fmt.Errorf("batch: %d of %d meshes failed", failed, len(m.Results))
	}
	return nil
}

// runWatch renders once, then again each time an input settles after a
// change. Render failures are logged and watching continues. A reload that
// names different maps moves the watch to the new files.
func runWatch(ctx context.Context, r *render.Renderer, meshPath string, s *scene.Scene, cfg config.Config, logger *log.Logger) error {
	if err := renderOnce(r, s, cfg, logger); err != nil {
		logger.Error("render failed", "err", err)
	}

	return watchInputs(ctx, inputFiles(s, cfg.Maps), logger, func(string) []string {
		next, err := loadConfig()
		if err != nil {
			logger.Error("config reload failed", "err", err)
			return nil
		}
		s, err := scene.Load(meshPath, next, logger)
		if err != nil {
			logger.Error("reload failed", "err", err)
			return nil
		}
		if err := renderOnce(r, s, next, logger); err != nil {
			logger.Error("render failed", "err", err)
		}
		return inputFiles(s, next.Maps)
	})
}

// inputFiles lists everything a watch-mode render reads.
func inputFiles(s *scene.Scene, maps config.Maps) []string {
	files := s.Files(maps)
	if *configPath != "" {
		files = append(files, *configPath)
	}
	return files
}

// watchInputs calls reload with the changed path after each settled change
// to files. reload returns the files to watch from then on, or nil to keep the current set;
// a different set rebuilds the watcher over it.
func watchInputs(ctx context.Context, files []string, logger *log.Logger, reload func(path string) []string) error {
	for {
		w, err := watch.New(files, watch.DefaultDebounce, logger)
		if err != nil {
			return err
		}
		logger.Info("watching", "files", files)

		runCtx, cancel := context.WithCancel(ctx)
		var next []string
		err = w.Run(runCtx, func(path string) {
			logger.Info("change detected", "path", path)
			if got := reload(path); got != nil && !slices.Equal(got, files) {
				next = got
				cancel()
			}
		})
		cancel()
		if next == nil || ctx.Err() != nil {
			return err
		}
		files = next
	}
}
