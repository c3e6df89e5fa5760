// Package batch renders every mesh in a directory and records the outcome
// in a manifest.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/taigrr/tinyrender/pkg/config"
	"github.com/taigrr/tinyrender/pkg/render"
	"github.com/taigrr/tinyrender/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// meshExts are the extensions Find picks up.
var meshExts = []string{".obj", ".glb", ".gltf", ".stl"}

// Config holds the shared settings of a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Ext       string // image extension including the dot
	Workers   int
	Render    config.Config
	// ProgressInterval is how often progress is logged; zero disables it.
	ProgressInterval time.Duration
}

// Result holds the outcome of rendering one mesh.
type Result struct {
	Mesh    string        `json:"mesh"`
	Image   string        `json:"image,omitempty"`
	Faces   int           `json:"faces,omitempty"`
	Pixels  int           `json:"pixels_written,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// Find lists the mesh files directly inside dir, sorted by name.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(meshExts, strings.ToLower(filepath.Ext(e.Name()))) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// Run renders every mesh in cfg.InputDir with a bounded number of workers.
// A mesh that fails is recorded in its Result and does not stop the run;
// only setup failures and cancellation return an error.
func Run(ctx context.Context, cfg Config, logger *log.Logger) (*Manifest, error) {
	paths, err := Find(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if cfg.Ext == "" {
		cfg.Ext = filepath.Ext(cfg.Render.Output.Image)
	}

	m := &Manifest{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
		Input:   cfg.InputDir,
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		Shading: cfg.Render.Shading,
		Results: make([]Result, len(paths)),
	}
	logger.Info("batch started", "run", m.RunID, "meshes", len(paths), "workers", cfg.Workers)

	var processed atomic.Int64
	done := make(chan struct{})
	if cfg.ProgressInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					rate := float64(p) / time.Since(m.Started).Seconds()
					logger.Info("batch progress", "done", p, "total", len(paths), "per_sec", fmt.Sprintf("%.1f", rate))
				}
			}
		}()
	}

	r := render.NewRenderer(logger)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.Results[i] = renderOne(r, path, cfg, logger)
			processed.Add(1)
			return nil
		})
	}
	err = g.Wait()
	close(done)
	m.Elapsed = time.Since(m.Started)
	if err != nil {
		return m, err
	}

	logger.Info("batch finished", "run", m.RunID, "ok", m.Succeeded(), "failed", len(paths)-m.Succeeded(), "elapsed", m.Elapsed)
	return m, nil
}

func renderOne(r *render.Renderer, path string, cfg Config, logger *log.Logger) (res Result) {
	res.Mesh = filepath.Base(path)
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	// Each job owns its config copy, and with it its own camera.
	rc := cfg.Render
	s, err := scene.Load(path, rc, logger)
	if err != nil {
		res.Error = err.Error()
		logger.Warn("batch mesh failed", "mesh", res.Mesh, "err", err)
		return res
	}
	// Keep the source extension so a.obj and a.stl do not collide.
	rc.Output = config.Output{Image: filepath.Join(cfg.OutputDir, res.Mesh+cfg.Ext)}

	frame, _, err := scene.Render(r, s, rc, false)
	if err != nil {
		res.Error = err.Error()
		logger.Warn("batch mesh failed", "mesh", res.Mesh, "err", err)
		return res
	}
	res.Image = filepath.Base(rc.Output.Image)
	res.Faces = s.Mesh.FaceCount()
	res.Pixels = frame.Stats.Written
	res.Success = true
	return res
}
