package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ManifestName is the project manifest file at the root of every mcpkit
// project.
const ManifestName = "mcpkit.yml"

// Manifest represents the mcpkit.yml structure.
type Manifest struct {
	Name      string    `yaml:"name"`
	Version   string    `yaml:"version"`
	Transport string    `yaml:"transport"`
	Bindings  []Binding `yaml:"bindings,omitempty"`
}

// Binding is one runtime binding declared in the manifest.
type Binding struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// HasBinding reports whether a binding with the given name exists.
func (m *Manifest) HasBinding(name string) bool {
	for _, b := range m.Bindings {
		if b.Name == name {
			return true
		}
	}
	return false
}

// LoadManifest reads mcpkit.yml from the project root. Environment
// variables prefixed MCPKIT_ override top-level scalar fields.
func LoadManifest(projectRoot string) (*Manifest, error) {
	path := filepath.Join(projectRoot, ManifestName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found in %s — are you in an mcpkit project?", ManifestName, projectRoot)
	}

	v := viper.New()
	v.SetConfigName("mcpkit")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectRoot)
	v.AutomaticEnv()
	v.SetEnvPrefix("MCPKIT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestName, err)
	}

	m := &Manifest{
		Name:      v.GetString("name"),
		Version:   v.GetString("version"),
		Transport: v.GetString("transport"),
	}
	if m.Name == "" {
		return nil, fmt.Errorf("project name not specified in %s", ManifestName)
	}

	// Bindings come out of the raw YAML: viper lowercases map keys, which
	// would mangle binding names like MY_CACHE.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestName, err)
	}
	var raw struct {
		Bindings []Binding `yaml:"bindings"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	m.Bindings = raw.Bindings

	return m, nil
}

// ValidateManifest parses mcpkit.yml strictly, without viper's env
// overlay. Gate checks use it to confirm a mutated manifest is still
// well-formed YAML with the expected shape.
func ValidateManifest(projectRoot string) error {
	data, err := os.ReadFile(filepath.Join(projectRoot, ManifestName))
	if err != nil {
		return fmt.Errorf("reading %s: %w", ManifestName, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%s is not valid YAML: %w", ManifestName, err)
	}
	if m.Name == "" {
		return fmt.Errorf("%s lost its project name", ManifestName)
	}
	seen := make(map[string]bool, len(m.Bindings))
	for _, b := range m.Bindings {
		if b.Name == "" || b.Type == "" {
			return fmt.Errorf("%s contains a binding missing name or type", ManifestName)
		}
		if seen[b.Name] {
			return fmt.Errorf("%s declares binding %s twice", ManifestName, b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}
