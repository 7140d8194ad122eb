// internal/settings/bootstrap.go
//
// One-shot settings bootstrap.
//
/*
Context
--------
Bootstrap builds the process-wide settings in a fixed order, highest
precedence last:

  1. Static sources      – DefaultSources(root) unless overridden.
  2. Environment secrets – `PR_AGENT_*` from `<root>/.env` and the process
     environment (process wins), flattened on `__`.
  3. Vault secret        – when a SecretReader is supplied and
     `vault.secret_path` is set, the secret's keys are flattened the same
     way (no prefix).
  4. Local override      – `[tool.pr-agent]` of the repository root's
     pyproject.toml, found by climbing from the working directory.

The tree is then frozen and published.  Nothing reads the settings before
Bootstrap returns, so the in-place merges need no locking.

Instrumentation
---------------
  • DEBUG – each source loaded or absent.
  • INFO  – secret key paths applied (never values), local override path,
    final source count.
  • WARN  – skipped env names, malformed optional sources.
*/
package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yanizio/reviewhook/internal/metrics"
)

// SecretReader fetches a flat secret map, e.g. one Vault KV entry.
type SecretReader interface {
	ReadSecret(ctx context.Context, path string) (map[string]string, error)
}

// Options tunes Bootstrap.  The zero value resolves everything from the
// process: InstallRoot, DefaultSources, the environment, and os.Getwd.
type Options struct {
	Root    string
	Sources []Source

	// Environ replaces <root>/.env and the process environment when set.
	Environ map[string]string
	Prefix  string

	WorkDir string
	Secrets SecretReader
}

// Bootstrap resolves, freezes, and publishes the process-wide settings.
func Bootstrap(ctx context.Context, opts Options) (*Settings, error) {
	root := opts.Root
	if root == "" {
		root = InstallRoot()
	}
	zap.S().Debugw("settings root resolved", "root", root)

	sources := opts.Sources
	if sources == nil {
		sources = DefaultSources(root)
	}

	store := NewStore()
	if err := store.Load(sources...); err != nil {
		return nil, err
	}

	// Environment secrets
	environ := opts.Environ
	if environ == nil {
		environ = processEnviron(filepath.Join(root, ".env"))
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	if err := applySecrets(store, "env", environ, prefix); err != nil {
		return nil, err
	}

	// Vault secret
	if opts.Secrets != nil {
		if path := store.k.String("vault.secret_path"); path != "" {
			data, err := opts.Secrets.ReadSecret(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("read vault secret %s: %w", path, err)
			}
			if err := applySecrets(store, "vault:"+path, data, ""); err != nil {
				return nil, err
			}
		}
	}

	// Local override
	wd := opts.WorkDir
	if wd == "" {
		wd, _ = os.Getwd()
	}
	manifest, err := LoadLocalOverride(store, wd)
	switch {
	case err == nil && manifest != "":
		zap.S().Infow("local settings override applied", "manifest", manifest)
	case errors.Is(err, ErrParse):
		zap.S().Warnw("local settings override skipped", "manifest", manifest, "err", err)
	case err != nil:
		return nil, err
	}

	s := store.Freeze()
	Publish(s)
	metrics.SettingsSources.Set(float64(len(s.sources)))
	zap.S().Infow("settings loaded", "root", root, "sources", len(s.sources))
	return s, nil
}

func applySecrets(store *Store, origin string, data map[string]string, prefix string) error {
	tree, skipped, err := Flatten(data, prefix, KeyDelimiter)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		zap.S().Warnw("secret name skipped", "origin", origin, "name", name)
	}
	if len(tree) == 0 {
		return nil
	}
	if err := store.UpdateFrom(origin, tree); err != nil {
		return err
	}
	zap.S().Infow("secrets applied", "origin", origin, "keys", leafPaths(tree))
	return nil
}

// processEnviron overlays the process environment on an optional dotenv
// file, so real variables beat file values as they do with godotenv.Load.
func processEnviron(dotenv string) map[string]string {
	env, err := godotenv.Read(dotenv)
	switch {
	case err == nil:
		zap.S().Debugw("dotenv loaded", "file", dotenv)
	case errors.Is(err, fs.ErrNotExist):
		env = nil
	default:
		zap.S().Warnw("dotenv skipped", "file", dotenv, "err", err)
		env = nil
	}
	if env == nil {
		env = make(map[string]string)
	}
	for k, v := range Environ() {
		env[k] = v
	}
	return env
}
