// internal/webhook/router.go
//
// chi router for the webhook server.
//
// Routes
// ------
//
//	POST /github-webhook   – GitHub issue_comment deliveries
//	POST /gitlab-webhook   – GitLab Note Hook deliveries
//	GET  /healthz          – liveness
//	GET  /metrics          – Prometheus
//
// Request IDs, panic recovery, and access logs wrap every route; the rate
// limiter and the settings scope wrap only the webhook routes.
package webhook

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/reviewhook/internal/config"
	"github.com/yanizio/reviewhook/internal/middleware"
)

// NewRouter mounts h and the service endpoints.
func NewRouter(h *Handler, limit config.RateLimit, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.L()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limit.RPS, limit.Burst))
		r.Use(middleware.Settings)
		r.Post("/github-webhook", h.GitHub)
		r.Post("/gitlab-webhook", h.GitLab)
	})

	return r
}
