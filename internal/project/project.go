// Package project reads the IaC project manifest next to the code being
// deployed. The manifest is optional; its absence is not an error.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var manifestNames = []string{"Pulumi.yaml", "Pulumi.yml"}

// Project is the slice of the manifest stackrun cares about.
type Project struct {
	Name        string  `yaml:"name"`
	Runtime     Runtime `yaml:"runtime"`
	Description string  `yaml:"description"`
}

// Runtime accepts both manifest forms: a bare string ("nodejs") and a
// mapping with a name key.
type Runtime struct {
	Name string
}

func (r *Runtime) UnmarshalYAML(value *yaml.Node) error {
	var plain string
	if err := value.Decode(&plain); err == nil {
		r.Name = plain
		return nil
	}
	var obj struct {
		Name string `yaml:"name"`
	}
	if err := value.Decode(&obj); err != nil {
		return fmt.Errorf("decode runtime: %w", err)
	}
	r.Name = obj.Name
	return nil
}

// Load reads the project manifest from root. Returns (nil, nil) when no
// manifest exists.
func Load(root string) (*Project, error) {
	for _, name := range manifestNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var p Project
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return &p, nil
	}
	return nil, nil
}
