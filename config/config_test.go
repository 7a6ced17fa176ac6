package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/basilisk-labs/sqlitec/config"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sqlitec.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database-name: app\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetLanguageTag != "go" {
		t.Fatalf("expected default target-language-tag %q, got %q", "go", cfg.TargetLanguageTag)
	}
	if !cfg.Options.CreateOutputDirectory {
		t.Fatalf("expected create-output-directory to default true")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database-name: app
target-language-tag: go
options:
  namespace-generated-models: true
  create-output-directory: false
  imports:
    - github.com/google/uuid
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Options.NamespaceGeneratedModels {
		t.Fatalf("expected namespace-generated-models true")
	}
	if cfg.Options.CreateOutputDirectory {
		t.Fatalf("expected create-output-directory false")
	}
	if len(cfg.Options.Imports) != 1 || cfg.Options.Imports[0] != "github.com/google/uuid" {
		t.Fatalf("unexpected imports: %#v", cfg.Options.Imports)
	}
}

func TestLoadRequiresDatabaseName(t *testing.T) {
	path := writeConfig(t, "target-language-tag: go\n")
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected an error for a missing database-name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
