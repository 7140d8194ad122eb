// internal/settings/context.go
//
// Process-wide and request-scoped settings access.
//
// Usage
// -----
//
//	// bootstrap, once:
//	settings.Publish(store.Freeze())
//
//	// middleware, per request:
//	ctx = settings.WithContext(r.Context(), perRequest)
//
//	// anywhere:
//	s := settings.Get(ctx)   // request view, or the published one
//	s := settings.Global()   // always the published one
//
// Notes
// -----
//   - Get never fails and never returns nil.  Each lookup outcome is named
//     by lookupContext and every failure resolves to Global().
//   - Global() before Publish returns an empty view.
package settings

import (
	"context"
	"errors"
	"sync/atomic"
)

var current atomic.Pointer[Settings]

type ctxKey struct{}

var (
	errNoContext    = errors.New("no context")
	errNotInstalled = errors.New("no settings installed")
	errWrongType    = errors.New("context value is not *Settings")
	errNilSettings  = errors.New("installed settings are nil")
)

// Publish makes s the process-wide settings.  Passing nil resets to empty.
func Publish(s *Settings) { current.Store(s) }

// Global returns the process-wide settings, ignoring any request scope.
func Global() *Settings {
	if s := current.Load(); s != nil {
		return s
	}
	return empty
}

// WithContext returns a child context carrying s.
func WithContext(ctx context.Context, s *Settings) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Get returns the settings installed in ctx, falling back to Global().
func Get(ctx context.Context) *Settings {
	s, err := lookupContext(ctx)
	if err != nil {
		return Global()
	}
	return s
}

// FromContext is Get without the fallback.  ok is false when ctx carries
// no usable settings.
func FromContext(ctx context.Context) (s *Settings, ok bool) {
	s, err := lookupContext(ctx)
	return s, err == nil
}

func lookupContext(ctx context.Context) (*Settings, error) {
	if ctx == nil {
		return nil, &Error{Kind: KindContextLookup, Err: errNoContext}
	}
	v := ctx.Value(ctxKey{})
	if v == nil {
		return nil, &Error{Kind: KindContextLookup, Err: errNotInstalled}
	}
	s, ok := v.(*Settings)
	if !ok {
		return nil, &Error{Kind: KindContextLookup, Err: errWrongType}
	}
	if s == nil {
		return nil, &Error{Kind: KindContextLookup, Err: errNilSettings}
	}
	return s, nil
}
