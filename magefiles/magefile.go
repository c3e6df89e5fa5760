//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const (
	binary    = "bin/tinyrender"
	renderDir = "renders"
)

var Default = Build

// Build compiles the tinyrender binary into bin/.
func Build() error {
	if _, err := executeCmd("go", withArgs("build", "-o", binary, "./cmd/tinyrender"), withStream()); err != nil {
		return err
	}
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Render draws the built-in cube with every shading mode into renders/.
func Render() error {
	mg.Deps(Build)
	if err := os.MkdirAll(renderDir, 0o755); err != nil {
		return err
	}
	for _, shading := range []string{"flat", "gouraud", "phong", "depth"} {
		out := filepath.Join(renderDir, fmt.Sprintf("cube_%s.png", shading))
		args := withArgs("-shader", shading, "-output", out, "-zbuffer", filepath.Join(renderDir, "zbuffer_"+shading+".png"))
		if _, err := executeCmd(binary, args); err != nil {
			return err
		}
	}
	return nil
}

type Dev mg.Namespace

// Bench runs the renderer and math benchmarks.
func (Dev) Bench() error {
	_, err := executeCmd("go", withArgs("test", "-run", "^$", "-bench", ".", "./pkg/render/", "./pkg/math3d/"), withStream())
	return err
}

// Tidy runs go mod tidy and go vet.
func (Dev) Tidy() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	if _, err := executeCmd("go", withArgs("vet", "./...")); err != nil {
		return fmt.Errorf("failed to run go vet: %w", err)
	}
	return nil
}

// Clean removes build output and renders.
func (Dev) Clean() error {
	for _, p := range []string{"bin", renderDir} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}

// Turntable writes a 36-frame orbit of the cube into renders/.
func (Dev) Turntable() error {
	mg.Deps(Build)
	dir, err := filepath.Abs(renderDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	_, err = executeCmd(filepath.Join("..", binary), withArgs("-turntable", "36", "-output", "turntable.png"), withDir(dir), withStream())
	return err
}
