// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Defaults, used when the `webhook` settings leave a value at zero:
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time (15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//
// Review runs happen after the response is written, so WriteTimeout does
// not bound them.

package server

import (
	"net/http"
	"time"

	"github.com/yanizio/reviewhook/internal/config"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// New constructs an *http.Server for the webhook listener.
func New(cfg config.Webhook, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: orDefault(cfg.ReadTimeout, defaultReadTimeout),
		ReadTimeout:       orDefault(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout:      orDefault(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:       orDefault(cfg.IdleTimeout, defaultIdleTimeout),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
