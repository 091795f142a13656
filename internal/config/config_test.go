package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sawzeeyy/w3av/internal/extract"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.Extract.Placeholder != nil {
		t.Errorf("expected nil Placeholder for missing config, got %v", *cfg.Extract.Placeholder)
	}
}

func TestLoadInvalidYAMLReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("not: [valid: yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(dir)
	if cfg.Extract.Placeholder != nil {
		t.Errorf("expected defaults for invalid YAML, got %v", *cfg.Extract.Placeholder)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	yaml := `
extract:
  placeholder: "XXXX"
  include_templates: true
  max_nodes: 5000
  extensions:
    - ".foo"
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(dir)
	if cfg.Extract.Placeholder == nil || *cfg.Extract.Placeholder != "XXXX" {
		t.Errorf("Placeholder = %v, want XXXX", cfg.Extract.Placeholder)
	}
	if cfg.Extract.IncludeTemplates == nil || !*cfg.Extract.IncludeTemplates {
		t.Error("expected IncludeTemplates = true")
	}
	if cfg.Extract.MaxNodes == nil || *cfg.Extract.MaxNodes != 5000 {
		t.Errorf("MaxNodes = %v, want 5000", cfg.Extract.MaxNodes)
	}
}

func TestApplyOverlaysOntoOptions(t *testing.T) {
	cfg := Load(t.TempDir())
	placeholder := "XXXX"
	cfg.Extract.Placeholder = &placeholder

	base := extract.Options{}
	effective := cfg.Apply(base)
	if effective.Placeholder != "XXXX" {
		t.Errorf("effective.Placeholder = %q, want XXXX", effective.Placeholder)
	}
}
