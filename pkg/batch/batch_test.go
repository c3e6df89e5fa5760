package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/taigrr/tinyrender/pkg/config"
	"github.com/taigrr/tinyrender/pkg/logging"
)

const triangleOBJ = `v -1 -1 0
v 1 -1 0
v 0 1 0
f 1 2 3
`

const triangleSTL = `solid tri
facet normal 0 0 1
  outer loop
    vertex -1 -1 0
    vertex 1 -1 0
    vertex 0 1 0
  endloop
endfacet
endsolid tri
`

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"tri.obj":    triangleOBJ,
		"tri.stl":    triangleSTL,
		"broken.obj": "f 1 2 3\n",
		"notes.txt":  "not a mesh",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.obj"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFind(t *testing.T) {
	dir := fixtureDir(t)
	paths, err := Find(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"broken.obj", "tri.obj", "tri.stl"}
	if len(paths) != len(want) {
		t.Fatalf("Find = %v, want %v", paths, want)
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, filepath.Base(p), want[i])
		}
	}

	if _, err := Find(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing directory accepted")
	}
}

func testConfig(t *testing.T) Config {
	rc := config.Default()
	rc.Width, rc.Height = 32, 32
	return Config{
		InputDir:  fixtureDir(t),
		OutputDir: filepath.Join(t.TempDir(), "renders"),
		Ext:       ".png",
		Workers:   2,
		Render:    rc,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	m, err := Run(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Errorf("run id %q: %v", m.RunID, err)
	}
	if len(m.Results) != 3 {
		t.Fatalf("results = %+v", m.Results)
	}
	if m.Succeeded() != 2 {
		t.Errorf("Succeeded() = %d, want 2", m.Succeeded())
	}

	for _, r := range m.Results {
		switch r.Mesh {
		case "broken.obj":
			if r.Success || r.Error == "" {
				t.Errorf("broken mesh result = %+v", r)
			}
		default:
			if !r.Success || r.Faces != 1 || r.Pixels == 0 {
				t.Errorf("%s result = %+v", r.Mesh, r)
			}
			if _, err := os.Stat(filepath.Join(cfg.OutputDir, r.Image)); err != nil {
				t.Error(err)
			}
		}
	}
	if m.Results[1].Image != "tri.obj.png" || m.Results[2].Image != "tri.stl.png" {
		t.Errorf("image names = %q, %q", m.Results[1].Image, m.Results[2].Image)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := Run(ctx, testConfig(t), logging.Discard())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if m == nil || m.Succeeded() != 0 {
		t.Errorf("canceled run rendered meshes: %+v", m)
	}
}

func TestManifestWrite(t *testing.T) {
	cfg := testConfig(t)
	m, err := Run(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := m.Write(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != m.RunID || got.Succeeded() != m.Succeeded() || got.Shading != "phong" {
		t.Errorf("read back %+v", got)
	}

	if _, err := ReadManifest(filepath.Join(cfg.OutputDir, "none.json")); err == nil {
		t.Error("missing manifest read")
	}
}
