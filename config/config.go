// Package config loads the driver-facing configuration document described
// in the core's external interfaces: the database name, the target
// language tag a codegen backend should emit for, and a small set of
// recognized boolean/string-list flags. Filesystem paths and CLI flag
// parsing belong to the driver (cmd/sqlitec); this package only owns the
// YAML shape and its defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the recognized configuration document.
type Config struct {
	DatabaseName      string  `yaml:"database-name"`
	TargetLanguageTag string  `yaml:"target-language-tag"`
	Options           Options `yaml:"options"`
}

// Options is the closed set of recognized flags plus the import list a
// codegen backend should splice into its generated file header.
type Options struct {
	NamespaceGeneratedModels bool     `yaml:"namespace-generated-models"`
	CreateOutputDirectory    bool     `yaml:"create-output-directory"`
	Imports                  []string `yaml:"imports"`
}

// Default returns a Config with the documented defaults: Go as the target
// language tag, models left unnamespaced, and the output directory
// created if missing.
func Default() Config {
	return Config{
		TargetLanguageTag: "go",
		Options: Options{
			CreateOutputDirectory: true,
		},
	}
}

// Load reads and parses a YAML configuration file at path, starting from
// Default() so an omitted key keeps its default rather than zeroing out.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.DatabaseName == "" {
		return Config{}, fmt.Errorf("config: %s: database-name is required", path)
	}
	return cfg, nil
}
