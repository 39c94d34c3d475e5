package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the declarative per-project configuration file.
const FileName = "vaf.yaml"

// File is the parsed vaf.yaml.
type File struct {
	ProjectID    string                       `yaml:"project_id"`
	Name         string                       `yaml:"name"`
	Environments map[string]EnvironmentConfig `yaml:"environments"`
}

// EnvironmentConfig holds per-environment settings. Pointer fields distinguish
// "not declared" from a declared zero value so override precedence stays total.
type EnvironmentConfig struct {
	Runtime        *string  `yaml:"runtime"`
	MemoryMB       *int     `yaml:"memory_mb"`
	TimeoutSeconds *int     `yaml:"timeout_seconds"`
	Handler        *string  `yaml:"handler"`
	Database       *string  `yaml:"database"`
	Cache          *string  `yaml:"cache"`
	Storage        *string  `yaml:"storage"`
	BuildCommands  []string `yaml:"build_commands"`
	Dockerfile     *string  `yaml:"dockerfile"`
	ImageTag       *string  `yaml:"image_tag"`
	UseLayers      *bool    `yaml:"use_layers"`
}

// Load reads vaf.yaml from dir. A missing file is not an error; it returns
// (nil, nil) so callers can fall back to per-invocation overrides.
func Load(dir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return &f, nil
}

// Environment returns the declared configuration for name, if present.
func (f *File) Environment(name string) (EnvironmentConfig, bool) {
	if f == nil || f.Environments == nil {
		return EnvironmentConfig{}, false
	}
	cfg, ok := f.Environments[name]
	return cfg, ok
}

// EnvironmentNames lists declared environment names in stable order.
func (f *File) EnvironmentNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Environments))
	for name := range f.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteStarter writes a commented starter vaf.yaml into dir. It refuses to
// overwrite an existing file.
func WriteStarter(dir, projectID, name string) error {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", FileName)
	}
	content := fmt.Sprintf(`project_id: %q
name: %q
environments:
  production:
    runtime: nodejs20
    memory_mb: 512
    timeout_seconds: 30
    handler: index.handler
    build_commands: []
`, projectID, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	return nil
}
