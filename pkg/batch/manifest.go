package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID   string        `json:"run_id"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Input   string        `json:"input"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Shading string        `json:"shading"`
	Results []Result      `json:"results"`
}

// Succeeded counts the meshes that rendered.
func (m *Manifest) Succeeded() int {
	n := 0
	for _, r := range m.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Write saves the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return &m, nil
}
