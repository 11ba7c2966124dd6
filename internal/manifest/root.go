// Package manifest provides the persisted unit manifest and its regeneration.
package manifest

import (
	"errors"
	"os"
	"path/filepath"
)

// DirName is the name of the monoctl configuration directory.
const DirName = ".monoctl"

// FileName is the name of the manifest file inside the configuration directory.
const FileName = "manifest.yaml"

// ConfigFileName is the name of the configuration file inside the configuration directory.
const ConfigFileName = "config.json"

// ErrNoRoot is returned when no .monoctl directory is found.
var ErrNoRoot = errors.New(".monoctl directory not found: not a monoctl repository (or any parent up to the root)")

// FindRoot walks up from the current working directory until it finds
// a .monoctl directory.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds a
// .monoctl directory. The directory itself marks the repository root;
// a missing manifest inside it is a separate, recoverable condition
// (run regenerate-manifest).
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		info, err := os.Stat(filepath.Join(dir, DirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoRoot
		}
		dir = parent
	}
}

// Path returns the manifest file path for a repository root.
func Path(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// ConfigPath returns the configuration file path for a repository root.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, ConfigFileName)
}
