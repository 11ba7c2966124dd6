package manifest

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/monoctl/monoctl/internal/errors"
	"github.com/monoctl/monoctl/internal/unit"
)

// WebUnitName is the fixed manifest name of the web front-end unit.
const WebUnitName = "web"

// Generate rescans the directory tree and builds a fresh manifest.
// The web root (if present) becomes the "web" unit; every immediate
// child of the functions root containing the marker file becomes a
// function unit named after its directory. Entries are sorted by name,
// so two scans of an unchanged tree produce byte-identical manifests.
//
// Generate only builds the manifest; persisting it is the caller's
// decision (see Save). Regeneration is always user-triggered: a stale
// manifest is a supported, detectable state, not an error.
func Generate(root, rootName string, repositories []string, layout unit.Layout) (*Manifest, error) {
	var entries []Entry

	webDir := filepath.Join(root, filepath.FromSlash(layout.WebRoot))
	if info, err := os.Stat(webDir); err == nil && info.IsDir() {
		entries = append(entries, Entry{Name: WebUnitName, Path: layout.WebRoot})
	}

	fnEntries, err := scanFunctionUnits(root, layout)
	if err != nil {
		return nil, err
	}
	entries = append(entries, fnEntries...)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	m := &Manifest{
		RootName:     rootName,
		Repositories: repositories,
		Units:        entries,
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// scanFunctionUnits lists the immediate children of the functions root
// that carry the marker file. A missing functions root is not an error:
// the repository simply has no function units yet.
func scanFunctionUnits(root string, layout unit.Layout) ([]Entry, error) {
	fnRoot := filepath.Join(root, filepath.FromSlash(layout.FunctionsRoot))
	dirEntries, err := os.ReadDir(fnRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO(err, "failed to scan "+layout.FunctionsRoot)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		dir := filepath.Join(fnRoot, de.Name())
		if !unit.HasMarker(dir, layout) {
			continue
		}
		entries = append(entries, Entry{
			Name: de.Name(),
			Path: path.Join(layout.FunctionsRoot, de.Name()),
		})
	}
	return entries, nil
}
