// Package project loads a monoctl repository: root discovery,
// configuration, and the unit manifest.
package project

import (
	"path/filepath"

	"github.com/monoctl/monoctl/internal/config"
	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/manifest"
	"github.com/monoctl/monoctl/internal/operation"
	"github.com/monoctl/monoctl/internal/unit"
)

// Project represents a loaded monoctl repository.
type Project struct {
	Root     string
	Config   *config.Config
	Warnings []string
}

// Load finds the repository root upward from the current directory and
// loads its configuration.
func Load() (*Project, error) {
	root, err := manifest.FindRoot()
	if err != nil {
		return nil, errors.Config(err.Error())
	}
	return LoadFrom(root)
}

// LoadFrom loads a repository from a known root directory. A missing
// config.json is not an error; defaults apply.
func LoadFrom(root string) (*Project, error) {
	cfg, warnings, err := config.LoadAndValidate(manifest.ConfigPath(root))
	if err != nil {
		return nil, errors.Configf("invalid configuration in %s: %v", manifest.ConfigPath(root), err)
	}
	warnings = append(warnings, operation.WarnUnknownOverrides(cfg.Commands)...)

	return &Project{
		Root:     root,
		Config:   cfg,
		Warnings: warnings,
	}, nil
}

// ConfigPath returns the full path to the repository configuration file.
func (p *Project) ConfigPath() string {
	return manifest.ConfigPath(p.Root)
}

// Name returns the configured project name, falling back to the root
// directory's basename.
func (p *Project) Name() string {
	if p.Config.Project.Name != "" {
		return p.Config.Project.Name
	}
	return filepath.Base(p.Root)
}

// Manifest loads the unit manifest. The manifest is required; a
// missing file is a configuration error hinting at regeneration.
func (p *Project) Manifest() (*manifest.Manifest, error) {
	return manifest.Load(p.Root)
}

// Units loads the manifest and resolves its entries against the
// configured layout, preserving manifest order.
func (p *Project) Units() ([]unit.Unit, error) {
	m, err := p.Manifest()
	if err != nil {
		return nil, err
	}
	return m.ResolveUnits(p.Root, p.Config.UnitLayout()), nil
}
