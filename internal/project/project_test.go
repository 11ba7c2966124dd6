package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/manifest"
)

func newRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, manifest.DirName), 0755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadFrom_DefaultsWithoutConfigFile(t *testing.T) {
	root := newRepo(t)

	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if proj.Config.Layout != nil && proj.Config.Layout.WebRoot != "react" {
		t.Errorf("WebRoot = %q, want default", proj.Config.Layout.WebRoot)
	}
	if proj.Name() != filepath.Base(root) {
		t.Errorf("Name() = %q, want root basename", proj.Name())
	}
}

func TestLoadFrom_ConfiguredName(t *testing.T) {
	root := newRepo(t)
	cfg := `{"project": {"name": "my-monorepo"}}`
	if err := os.WriteFile(manifest.ConfigPath(root), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if proj.Name() != "my-monorepo" {
		t.Errorf("Name() = %q, want my-monorepo", proj.Name())
	}
}

func TestLoadFrom_UnknownOperationOverrideWarns(t *testing.T) {
	root := newRepo(t)
	cfg := `{"commands": {"generate-docs": "npm run docs"}}`
	if err := os.WriteFile(manifest.ConfigPath(root), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if len(proj.Warnings) == 0 {
		t.Error("Warnings empty, want a note about the user-defined operation")
	}
}

func TestLoadFrom_InvalidConfigFails(t *testing.T) {
	root := newRepo(t)
	cfg := `{"concurrency": -1}`
	if err := os.WriteFile(manifest.ConfigPath(root), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(root)
	if err == nil {
		t.Fatal("LoadFrom() error = nil, want config error")
	}
	if errors.GetExitCode(err) != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitConfigError)
	}
}

func TestUnits_RequiresManifest(t *testing.T) {
	root := newRepo(t)
	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := proj.Units(); err == nil {
		t.Error("Units() error = nil, want missing-manifest error")
	}
}

func TestUnits_ManifestOrder(t *testing.T) {
	root := newRepo(t)
	m := &manifest.Manifest{
		RootName: "demo",
		Units: []manifest.Entry{
			{Name: "web", Path: "react"},
			{Name: "fn1", Path: "src/lambda/fn1"},
		},
	}
	if err := m.Save(root); err != nil {
		t.Fatal(err)
	}

	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatal(err)
	}
	units, err := proj.Units()
	if err != nil {
		t.Fatalf("Units() error = %v", err)
	}
	if len(units) != 2 || units[0].Name != "web" || units[1].Name != "fn1" {
		t.Errorf("Units() = %+v, want manifest order web, fn1", units)
	}
}
