// internal/settings/local.go
//
// Project-local override: the reviewed repository may tune the tool from
// the `[tool.pr-agent]` table of its own pyproject.toml.
package settings

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LoadLocalOverride locates the repository root above wd and merges the
// ManifestSection table of its ManifestName file into store.  It returns
// the manifest path it merged, or "" when there was nothing to merge.  No
// repository root and no manifest are both no-ops.
func LoadLocalOverride(store *Store, wd string) (string, error) {
	root, ok := FindRepositoryRoot(wd)
	if !ok {
		zap.S().Debugw("no repository root above working directory", "wd", wd)
		return "", nil
	}

	manifest := filepath.Join(root, ManifestName)
	fi, err := os.Stat(manifest)
	if err != nil || !fi.Mode().IsRegular() {
		zap.S().Debugw("no project manifest at repository root", "root", root)
		return "", nil
	}

	if err := store.LoadFile(manifest, ManifestSection); err != nil {
		return manifest, err
	}
	return manifest, nil
}
