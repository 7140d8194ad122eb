// internal/settings/flatten.go
//
// Secrets flattener: prefixed environment variables → nested settings tree.
//
// Context
// -------
// CI secrets arrive as flat environment variables.  Nesting is encoded in
// the name with a double underscore, so
//
//	PR_AGENT_GITHUB__TOKEN=abc123   →   github.token = "abc123"
//	PR_AGENT_OPENAI__KEY=sk-…       →   openai.key   = "sk-…"
//
// Names are stripped of the prefix and lower-cased before splitting.
//
// Notes
// -----
//   - Keys are walked in sorted order, so the result never depends on the
//     enumeration order of os.Environ.
//   - A table and a value meeting at the same path is a KindConflict
//     error.  So are two names differing only in case that carry different
//     values.  Identical duplicates are accepted.
//   - Names with an empty remainder or an empty segment are skipped and
//     returned to the caller for logging.
package settings

import (
	"os"
	"slices"
	"sort"
	"strings"
)

const (
	// EnvPrefix marks environment variables that feed the settings tree.
	EnvPrefix = "PR_AGENT_"

	// KeyDelimiter separates nesting levels inside a variable name.
	KeyDelimiter = "__"
)

// Environ returns the process environment as a map.  Later duplicates of
// the same name win, matching os.Getenv.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

// Flatten rebuilds a nested tree from every environ entry whose name starts
// with prefix.  An empty delim means KeyDelimiter.  The returned tree is
// empty, never nil, when nothing matches.
func Flatten(environ map[string]string, prefix, delim string) (tree map[string]any, skipped []string, err error) {
	if delim == "" {
		delim = KeyDelimiter
	}

	names := make([]string, 0, len(environ))
	for name := range environ {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	tree = make(map[string]any)
	setBy := make(map[string]string) // dotted leaf path → variable name

	for _, name := range names {
		rest := strings.ToLower(name[len(prefix):])
		segs := strings.Split(rest, delim)
		if rest == "" || slices.Contains(segs, "") {
			skipped = append(skipped, name)
			continue
		}

		node := tree
		for i, seg := range segs[:len(segs)-1] {
			switch next := node[seg].(type) {
			case nil:
				m := make(map[string]any)
				node[seg] = m
				node = m
			case map[string]any:
				node = next
			default:
				at := strings.Join(segs[:i+1], ".")
				return nil, nil, conflictError("env", at,
					"%s nests under %s, which %s already set to a value", name, at, setBy[at])
			}
		}

		leaf := segs[len(segs)-1]
		path := strings.Join(segs, ".")
		value := environ[name]

		switch cur := node[leaf].(type) {
		case nil:
		case map[string]any:
			return nil, nil, conflictError("env", path,
				"%s sets a value where other variables built a table", name)
		case string:
			if cur != value {
				return nil, nil, conflictError("env", path,
					"%s and %s set different values", setBy[path], name)
			}
		}

		node[leaf] = value
		setBy[path] = name
	}

	return tree, skipped, nil
}

// leafPaths lists the dotted paths of every leaf in tree, sorted.  Used to
// log which secrets were applied without logging their values.
func leafPaths(tree map[string]any) []string {
	var out []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(p, sub)
				continue
			}
			out = append(out, p)
		}
	}
	walk("", tree)
	sort.Strings(out)
	return out
}
