package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/unit"
)

// Entry is one persisted unit: a name and its root-relative path.
type Entry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Manifest is the persisted list of units plus repository metadata.
// Entry order is the authoritative dispatch and reporting order.
type Manifest struct {
	RootName     string   `yaml:"root_name"`
	Repositories []string `yaml:"repositories,omitempty"`
	Units        []Entry  `yaml:"units"`
}

// header is written at the top of every saved manifest. It carries no
// timestamp so regenerating an unchanged tree stays byte-identical.
const header = "# monoctl unit manifest. Regenerate with: monoctl regenerate-manifest\n"

// Load reads the manifest for a repository root.
func Load(root string) (*Manifest, error) {
	data, err := os.ReadFile(Path(root))
	if os.IsNotExist(err) {
		return nil, errors.Configf("manifest not found at %s (run 'monoctl regenerate-manifest')", Path(root))
	}
	if err != nil {
		return nil, errors.WrapIO(err, "failed to read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Configf("failed to parse manifest: %v", err)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes the manifest atomically: the content goes to a temporary
// file in the same directory, which is then renamed over the target.
// A crash mid-write never truncates an existing manifest.
func (m *Manifest) Save(root string) error {
	if err := m.validate(); err != nil {
		return err
	}

	dir := filepath.Join(root, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapIO(err, "failed to create "+DirName+" directory")
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.WrapIO(err, "failed to encode manifest")
	}
	data = append([]byte(header), data...)

	tmp, err := os.CreateTemp(dir, ".manifest-*.yaml")
	if err != nil {
		return errors.WrapIO(err, "failed to create temporary manifest")
	}
	tmpName := tmp.Name()
	// Best-effort cleanup when any later step fails.
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO(err, "failed to write temporary manifest")
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return errors.WrapIO(err, "failed to set manifest permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO(err, "failed to close temporary manifest")
	}

	if err := os.Rename(tmpName, Path(root)); err != nil {
		return errors.WrapIO(err, "failed to replace manifest")
	}
	return nil
}

// ResolveUnits converts manifest entries to units in manifest order,
// classifying each path and probing for the marker file.
func (m *Manifest) ResolveUnits(root string, layout unit.Layout) []unit.Unit {
	units := make([]unit.Unit, 0, len(m.Units))
	for _, e := range m.Units {
		units = append(units, unit.New(root, e.Name, e.Path, layout))
	}
	return units
}

// validate checks structural invariants: non-empty names and paths,
// unique names, relative paths.
func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Units))
	for i, e := range m.Units {
		if e.Name == "" {
			return errors.Configf("manifest unit #%d has no name", i+1)
		}
		if e.Path == "" {
			return errors.Configf("manifest unit %q has no path", e.Name)
		}
		if filepath.IsAbs(e.Path) {
			return errors.Configf("manifest unit %q has an absolute path %q (paths are root-relative)", e.Name, e.Path)
		}
		if seen[e.Name] {
			return errors.Configf("manifest contains duplicate unit name %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// String returns a short human-readable description for diagnostics.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s (%d units)", m.RootName, len(m.Units))
}
