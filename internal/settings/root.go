// internal/settings/root.go
//
// Directory discovery: installation root and repository root.
//
// Context
// -------
// Both searches climb parent directories from a starting point and stop
// when filepath.Dir returns its own input, which is how the filesystem
// root identifies itself.  A search from "/" therefore checks "/" once
// and returns.
package settings

import (
	"os"
	"path/filepath"
)

const (
	// RepoMarker is the directory that identifies a repository root.
	RepoMarker = ".git"

	// ManifestName is the project manifest read for local overrides.
	ManifestName = "pyproject.toml"

	// ManifestSection is the manifest table holding those overrides.
	ManifestSection = "tool.pr-agent"

	// RootEnv overrides installation-root discovery.
	RootEnv = "REVIEWHOOK_ROOT"
)

// FindRepositoryRoot climbs from start until a directory holding a
// RepoMarker directory is found.
func FindRepositoryRoot(start string) (string, bool) {
	return climb(start, func(dir string) bool {
		fi, err := os.Stat(filepath.Join(dir, RepoMarker))
		return err == nil && fi.IsDir()
	})
}

// InstallRoot resolves the directory holding settings/.  RootEnv wins;
// otherwise the working directory is climbed looking for
// settings/configuration.toml, so `go run ./cmd/reviewhook` works from any
// sub-directory.  Production layouts (<root>/bin/reviewhook) fall back to
// the executable's grandparent.
func InstallRoot() string {
	if r := os.Getenv(RootEnv); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	if dir, ok := climb(wd, func(dir string) bool {
		_, err := os.Stat(filepath.Join(dir, settingsDir, primaryFile))
		return err == nil
	}); ok {
		return dir
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

func climb(start string, match func(dir string) bool) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	for {
		if match(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			return "", false
		}
		dir = parent
	}
}
