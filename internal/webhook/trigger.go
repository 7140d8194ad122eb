// internal/webhook/trigger.go
//
// Comment parsing: trigger detection, argument split, and settings
// overrides carried in the comment.
//
// Context
// -------
// A comment such as
//
//	/aws_review --pr_reviewer.num_code_suggestions=5 review
//
// triggers a run when it contains the trigger phrase anywhere.  Every
// occurrence of the phrase is removed, quotes are dropped, and the rest
// is split shell-style into CLI arguments.  Arguments of the form
// `--section.key=value` double as request-scoped settings overrides,
// except for the server's own `webhook`, `vault` and `log` sections.
package webhook

import (
	"slices"
	"strings"

	"github.com/google/shlex"
)

// parseComment reports whether body contains trigger and, if so, the CLI
// arguments that follow it.
func parseComment(body, trigger string) (args []string, ok bool, err error) {
	if trigger == "" || !strings.Contains(body, trigger) {
		return nil, false, nil
	}
	rest := strings.TrimSpace(strings.ReplaceAll(body, trigger, ""))
	rest = strings.NewReplacer(`"`, "", `'`, "").Replace(rest)

	args, err = shlex.Split(rest)
	if err != nil {
		return nil, true, err
	}
	return args, true, nil
}

// serverSections hold the server's own settings.  Comments cannot
// override them.
var serverSections = []string{"webhook", "vault", "log"}

// overrides builds a nested settings map from `--a.b=value` arguments.
// Arguments without a dotted key or without a value are ignored.  Keys
// under serverSections are left out of the map and returned in denied.
func overrides(args []string) (out map[string]any, denied []string) {
	out = make(map[string]any)
	for _, arg := range args {
		kv, ok := strings.CutPrefix(arg, "--")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.Contains(key, ".") {
			continue
		}
		segs := strings.Split(strings.ToLower(key), ".")
		if slices.Contains(segs, "") {
			continue
		}
		if slices.Contains(serverSections, segs[0]) {
			denied = append(denied, strings.ToLower(key))
			continue
		}

		node := out
		for _, seg := range segs[:len(segs)-1] {
			next, ok := node[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[seg] = next
			}
			node = next
		}
		node[segs[len(segs)-1]] = value
	}
	return out, denied
}
