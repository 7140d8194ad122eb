// internal/settings/store.go
//
// Layered settings store.
//
/*
Context
--------
A Store owns one koanf tree and merges sources into it in declared order:

  1. Load(sources...)      – static files (TOML or YAML), in order.
  2. Update(partial)       – derived maps such as flattened env secrets.
  3. LoadFile(path, sect)  – one section of a general-purpose manifest,
     merged at the top level (e.g. `[tool.pr-agent]` of pyproject.toml).

Merge rule: when both sides hold a table at a key the tables merge
recursively; otherwise the incoming value replaces the current one.  A
table meeting a scalar (either direction) is a KindConflict error, checked
before anything is written, so a failed merge leaves the tree untouched.

Notes
-----
  • A Store is not safe for concurrent mutation.  Freeze ends the mutation
    phase and hands out a read-only *Settings; further mutation returns
    ErrFrozen.
  • Missing optional sources are skipped at DEBUG, malformed optional
    sources at WARN.  Required sources abort the load.
*/
package settings

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const keyDelim = "."

// Source is one static settings file.
type Source struct {
	Name     string       // log label; defaults to Path
	Path     string       // absolute or working-directory relative
	Optional bool         // absent or malformed content is not fatal
	Parser   koanf.Parser // nil selects by extension
}

func (s Source) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

// Store accumulates sources into a single merged tree.
type Store struct {
	k       *koanf.Koanf
	applied []string
	frozen  bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{k: koanf.New(keyDelim)}
}

/*──────────────────────────── mutation ─────────────────────────────────────*/

// Load merges sources in order.  It stops at the first error from a
// required source, or at any conflict.
func (s *Store) Load(sources ...Source) error {
	for _, src := range sources {
		err := s.loadSource(src)
		switch {
		case err == nil:
			zap.S().Debugw("settings source loaded", "source", src.label())
		case src.Optional && errors.Is(err, ErrNotFound):
			zap.S().Debugw("settings source absent", "source", src.label())
		case src.Optional && errors.Is(err, ErrParse):
			zap.S().Warnw("settings source skipped", "source", src.label(), "err", err)
		default:
			zap.S().Errorw("settings source failed", "source", src.label(), "err", err)
			return err
		}
	}
	return nil
}

func (s *Store) loadSource(src Source) error {
	p := src.Parser
	if p == nil {
		p = parserFor(src.Path)
	}
	mp, err := readSource(src.Path, p)
	if err != nil {
		return err
	}
	return s.merge(src.Path, mp)
}

// Update merges partial into the tree.  An empty partial is a no-op.
func (s *Store) Update(partial map[string]any) error {
	return s.UpdateFrom("update", partial)
}

// UpdateFrom is Update with an origin label recorded in Sources and in
// any error.
func (s *Store) UpdateFrom(origin string, partial map[string]any) error {
	if len(partial) == 0 {
		return s.checkFrozen(origin)
	}
	return s.merge(origin, partial)
}

// LoadFile parses the file at path and merges the table found at the
// dotted section path into the top level.  A missing section is a no-op.
// An empty section merges the whole file.
func (s *Store) LoadFile(path, section string) error {
	if err := s.checkFrozen(path); err != nil {
		return err
	}
	mp, err := readSource(path, parserFor(path))
	if err != nil {
		return err
	}
	if section == "" {
		return s.merge(path, mp)
	}

	tmp := koanf.New(keyDelim)
	if err := tmp.Load(confmap.Provider(mp, ""), nil); err != nil {
		return &Error{Kind: KindParse, Source: path, Err: err}
	}
	if !tmp.Exists(section) {
		zap.S().Debugw("settings section absent", "file", path, "section", section)
		return nil
	}
	sub, ok := tmp.Get(section).(map[string]any)
	if !ok {
		zap.S().Warnw("settings section is not a table", "file", path, "section", section)
		return nil
	}
	return s.merge(path+"#"+section, sub)
}

// Freeze ends the mutation phase and returns a read-only view of the tree.
func (s *Store) Freeze() *Settings {
	s.frozen = true
	applied := make([]string, len(s.applied))
	copy(applied, s.applied)
	return &Settings{k: s.k, sources: applied}
}

// Sources lists the origins merged so far, in order.
func (s *Store) Sources() []string {
	out := make([]string, len(s.applied))
	copy(out, s.applied)
	return out
}

/*──────────────────────────── internals ────────────────────────────────────*/

func (s *Store) checkFrozen(origin string) error {
	if s.frozen {
		return &Error{Kind: KindFrozen, Source: origin}
	}
	return nil
}

func (s *Store) merge(origin string, incoming map[string]any) error {
	if err := s.checkFrozen(origin); err != nil {
		return err
	}
	if err := checkShape(origin, "", s.k.Raw(), incoming); err != nil {
		return err
	}
	if err := s.k.Load(confmap.Provider(incoming, ""), nil); err != nil {
		return fmt.Errorf("merge %s: %w", origin, err)
	}
	s.applied = append(s.applied, origin)
	return nil
}

// readSource reads and parses one file, classifying failures.
func readSource(path string, p koanf.Parser) (map[string]any, error) {
	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindNotFound, Source: path, Err: err}
		}
		return nil, &Error{Kind: KindParse, Source: path, Err: err}
	}
	mp, err := p.Unmarshal(b)
	if err != nil {
		return nil, &Error{Kind: KindParse, Source: path, Err: err}
	}
	return mp, nil
}

// checkShape rejects a table meeting a non-table at the same path.
func checkShape(origin, prefix string, cur, in map[string]any) error {
	for key, iv := range in {
		cv, ok := cur[key]
		if !ok {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + keyDelim + key
		}
		cm, curIsMap := cv.(map[string]any)
		im, inIsMap := iv.(map[string]any)
		switch {
		case curIsMap && inIsMap:
			if err := checkShape(origin, path, cm, im); err != nil {
				return err
			}
		case curIsMap:
			return conflictError(origin, path, "%T value replaces a table", iv)
		case inIsMap:
			return conflictError(origin, path, "table replaces %T value", cv)
		}
	}
	return nil
}
