// internal/settings/errors.go
//
// Error taxonomy for settings resolution.
//
// Context
// -------
// Every failure the resolver can produce is a *settings.Error carrying a
// Kind, the offending source (file path or derived origin), and, for
// conflicts, the dotted key path.  Callers branch with errors.Is against
// the exported sentinels:
//
//   - ErrNotFound       – an optional source is absent.
//   - ErrParse          – a source is not valid structured text.
//   - ErrConflict       – a mapping and a scalar meet at the same path.
//   - ErrContextLookup  – no request-scoped settings in the context.
//
// Notes
// -----
//   - ErrContextLookup never escapes Get; it exists so the fallback reason
//     can be logged and tested.
package settings

import (
	"errors"
	"fmt"
)

// Kind classifies a settings error.
type Kind string

const (
	KindNotFound      Kind = "source_not_found"
	KindParse         Kind = "parse"
	KindConflict      Kind = "conflict"
	KindContextLookup Kind = "context_lookup"
	KindFrozen        Kind = "frozen"
)

var (
	ErrNotFound      = errors.New("settings source not found")
	ErrParse         = errors.New("settings source malformed")
	ErrConflict      = errors.New("settings path conflict")
	ErrContextLookup = errors.New("settings context lookup failed")

	// ErrFrozen is returned by Store mutators after Freeze.
	ErrFrozen = errors.New("settings store is frozen")
)

// Error is the concrete error type returned by this package.
type Error struct {
	Kind   Kind
	Source string // file path or derived origin ("env", "vault:...")
	Path   string // dotted key path, set for conflicts
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps a Kind onto its sentinel so errors.Is works without unwrapping
// down to the cause.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrParse:
		return e.Kind == KindParse
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrContextLookup:
		return e.Kind == KindContextLookup
	case ErrFrozen:
		return e.Kind == KindFrozen
	}
	return false
}

func conflictError(source, path, format string, args ...any) *Error {
	return &Error{
		Kind:   KindConflict,
		Source: source,
		Path:   path,
		Err:    fmt.Errorf(format, args...),
	}
}
