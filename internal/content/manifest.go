package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Descriptor declares one loadable scene in the manifest.
type Descriptor struct {
	// Name is the scene's unique name; load requests resolve against it.
	Name string `yaml:"name"`

	// Asset is the path to the scene's backing asset, relative to the
	// manifest's asset root. Optional; when set and verification is
	// enabled, the file must exist at load time.
	Asset string `yaml:"asset,omitempty"`

	// Description is free-form editor metadata.
	Description string `yaml:"description,omitempty"`

	// LoadTimeMS models the streaming latency of this scene. Zero loads
	// instantly.
	LoadTimeMS int `yaml:"load_time_ms"`
}

// Manifest is the full scene catalogue.
type Manifest struct {
	// AssetRoot is the directory that descriptor asset paths are resolved
	// against.
	AssetRoot string `yaml:"asset_root"`

	// VerifyAssets makes BeginLoad stat each descriptor's asset file.
	VerifyAssets bool `yaml:"verify_assets"`

	Scenes []Descriptor `yaml:"scenes"`
}

// LoadManifest reads and validates a scene manifest from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for empty or duplicate scene names.
//
// Duplicate names are rejected here even though the coordinator tolerates
// duplicate names among loaded instances: a manifest is authored data and
// a duplicate is always an authoring mistake.
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Scenes))
	for i, d := range m.Scenes {
		if d.Name == "" {
			return fmt.Errorf("%w: scene %d has no name", ErrInvalidManifest, i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: duplicate scene name %q", ErrInvalidManifest, d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.LoadTimeMS < 0 {
			return fmt.Errorf("%w: scene %q has negative load_time_ms", ErrInvalidManifest, d.Name)
		}
	}
	return nil
}

// Find returns the descriptor for a scene name.
func (m *Manifest) Find(name string) (Descriptor, bool) {
	for _, d := range m.Scenes {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
