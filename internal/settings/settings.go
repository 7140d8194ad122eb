// Package settings resolves the review tool's configuration.
//
// Static TOML files, prefixed environment secrets, an optional Vault
// secret, and the `[tool.pr-agent]` table of the reviewed repository's
// pyproject.toml are merged, in that order, into one tree.  Bootstrap runs
// the sequence once and publishes the result; everything else reads it
// through Get(ctx) or Global().
package settings

import (
	"time"

	koanf "github.com/knadh/koanf/v2"
)

// Settings is a read-only view of a merged tree.  Safe for concurrent use.
type Settings struct {
	k       *koanf.Koanf
	sources []string
}

var empty = &Settings{k: koanf.New(keyDelim)}

// Get returns the raw value at a dotted path, or nil.
func (s *Settings) Get(path string) any { return s.k.Get(path) }

// Exists reports whether path is set.
func (s *Settings) Exists(path string) bool { return s.k.Exists(path) }

func (s *Settings) String(path string) string { return s.k.String(path) }
func (s *Settings) Strings(path string) []string { return s.k.Strings(path) }
func (s *Settings) Int(path string) int { return s.k.Int(path) }
func (s *Settings) Float64(path string) float64 { return s.k.Float64(path) }
func (s *Settings) Bool(path string) bool { return s.k.Bool(path) }
func (s *Settings) Duration(path string) time.Duration { return s.k.Duration(path) }
func (s *Settings) StringMap(path string) map[string]string { return s.k.StringMap(path) }

// Keys lists every leaf path, sorted.
func (s *Settings) Keys() []string { return s.k.Keys() }

// Raw returns a deep copy of the whole tree.
func (s *Settings) Raw() map[string]any { return s.k.Raw() }

// Sources lists the merged origins in the order they were applied.
func (s *Settings) Sources() []string {
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// Unmarshal decodes the subtree at path ("" for the root) into out using
// `koanf` struct tags.
func (s *Settings) Unmarshal(path string, out any) error {
	return s.k.Unmarshal(path, out)
}

// TOML renders the tree as a TOML document.
func (s *Settings) TOML() ([]byte, error) {
	return s.k.Marshal(TOMLParser())
}

// Clone returns a mutable Store over a deep copy of this tree, used to
// build request-scoped overrides without touching the shared view.
func (s *Settings) Clone() *Store {
	return &Store{k: s.k.Copy(), applied: s.Sources()}
}
