package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Axes.Forward != "-Y" || cfg.Axes.Up != "Z" {
		t.Errorf("default axes = %s/%s, want -Y/Z", cfg.Axes.Forward, cfg.Axes.Up)
	}
	if cfg.Input.FPS != 24 {
		t.Errorf("default fps = %v, want 24", cfg.Input.FPS)
	}
	if cfg.Bake.SortWeights {
		t.Error("sort_weights defaults to true, want false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetpipe.yaml")
	data := []byte(`
input:
  scene: model.glb
  fps: 30
output:
  mesh: model.mesh
axes:
  forward: Z
bake:
  sort_weights: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Input.Scene != "model.glb" {
		t.Errorf("scene = %q, want model.glb", cfg.Input.Scene)
	}
	if cfg.Input.FPS != 30 {
		t.Errorf("fps = %v, want 30", cfg.Input.FPS)
	}
	if cfg.Output.Mesh != "model.mesh" {
		t.Errorf("mesh output = %q, want model.mesh", cfg.Output.Mesh)
	}
	// Untouched fields keep their defaults.
	if cfg.Output.Skeleton != "out.skel" {
		t.Errorf("skeleton output = %q, want default out.skel", cfg.Output.Skeleton)
	}
	if cfg.Axes.Forward != "Z" || cfg.Axes.Up != "Z" {
		t.Errorf("axes = %s/%s, want Z/Z (up untouched)", cfg.Axes.Forward, cfg.Axes.Up)
	}
	if !cfg.Bake.SortWeights {
		t.Error("sort_weights not applied from file")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Input.Scene = "hero.gltf"
	cfg.Bake.TextDump = true

	path := filepath.Join(t.TempDir(), "nested", "assetpipe.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if got.Input.Scene != "hero.gltf" {
		t.Errorf("scene = %q, want hero.gltf", got.Input.Scene)
	}
	if !got.Bake.TextDump {
		t.Error("text_dump lost in round trip")
	}
}
