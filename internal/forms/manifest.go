// Parses and writes form manifest YAML files for import and export.

package forms

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// manifestVersion is the only supported manifest format version.
const manifestVersion = 1

// Manifest is the YAML document holding portable form configurations.
// IDs and timestamps are not part of the manifest; importing assigns fresh
// ones.
type Manifest struct {
	Version int           `yaml:"version"`
	Forms   []*FormConfig `yaml:"forms"`
}

// ParseManifestBytes parses a form manifest from YAML bytes.
func ParseManifestBytes(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

// Validate checks that the manifest is valid.
func (m *Manifest) Validate() error {
	if m.Version != manifestVersion {
		return fmt.Errorf("unsupported manifest version: %d", m.Version)
	}
	slugs := make(map[string]bool, len(m.Forms))
	for i, form := range m.Forms {
		if err := form.Validate(); err != nil {
			return fmt.Errorf("form %d: %w", i, err)
		}
		if slugs[form.Slug] {
			return fmt.Errorf("form %d: duplicate slug %q", i, form.Slug)
		}
		slugs[form.Slug] = true
	}
	return nil
}

// ExportManifest serializes forms to YAML for backup or transfer.
func ExportManifest(configs []*FormConfig) ([]byte, error) {
	m := &Manifest{Version: manifestVersion, Forms: configs}
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
}
