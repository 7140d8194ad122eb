// internal/webhook/handler.go
//
// GitHub and GitLab comment webhooks.
//
/*
Context
--------
Both endpoints follow the same flow:

  1. Decode the JSON body (400 on malformed JSON).
  2. Keep only new pull/merge request comments containing the trigger.
  3. Split the remaining comment into CLI arguments; any
     `--section.key=value` arguments become a request-scoped settings
     override layered on the view installed by the settings middleware.
  4. Start the review run in the background and answer 200 at once.

The run's context keeps the request's values (including the scoped
settings) but not its cancellation, so the run outlives the response.

Instrumentation
---------------
  • webhook_events_total{provider,outcome} with outcome one of
    triggered, ignored, malformed, shutdown.
  • INFO on trigger, WARN on unusable comments or rejected overrides.
*/
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/reviewhook/internal/metrics"
	"github.com/yanizio/reviewhook/internal/runner"
	"github.com/yanizio/reviewhook/internal/settings"
)

const maxBodyBytes = 5 << 20

// Runner executes one review.  *runner.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, req runner.Request) (runner.Result, error)
}

// Handler serves the webhook endpoints.
type Handler struct {
	trigger string
	runs    Runner
	log     *zap.SugaredLogger

	mu      sync.Mutex // guards closing and wg.Add
	closing bool
	wg      sync.WaitGroup
}

// NewHandler returns a Handler starting runs for comments containing
// trigger.
func NewHandler(trigger string, runs Runner, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.S()
	}
	return &Handler{trigger: trigger, runs: runs, log: log}
}

// GitHub handles POST /github-webhook.
func (h *Handler) GitHub(w http.ResponseWriter, r *http.Request) {
	var ev githubEvent
	if !h.decode(w, r, "github", &ev) {
		return
	}
	prURL, body, ok := ev.comment()
	h.dispatch(r, "github", prURL, body, ok)
	w.WriteHeader(http.StatusOK)
}

// GitLab handles POST /gitlab-webhook.
func (h *Handler) GitLab(w http.ResponseWriter, r *http.Request) {
	var ev gitlabEvent
	if !h.decode(w, r, "gitlab", &ev) {
		return
	}
	prURL, body, ok := ev.comment()
	h.dispatch(r, "gitlab", prURL, body, ok)
	w.WriteHeader(http.StatusOK)
}

// Wait stops new runs from starting and blocks until every started run
// has finished.  Triggers arriving afterwards are dropped.
func (h *Handler) Wait() {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, provider string, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(provider, "malformed").Inc()
		h.log.Warnw("webhook payload rejected", "provider", provider, "err", err)
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) dispatch(r *http.Request, provider, prURL, body string, isComment bool) {
	if !isComment {
		metrics.WebhookEventsTotal.WithLabelValues(provider, "ignored").Inc()
		return
	}

	args, triggered, err := parseComment(body, h.trigger)
	switch {
	case !triggered:
		metrics.WebhookEventsTotal.WithLabelValues(provider, "ignored").Inc()
		return
	case err != nil:
		metrics.WebhookEventsTotal.WithLabelValues(provider, "malformed").Inc()
		h.log.Warnw("trigger comment unparsable", "provider", provider, "pr_url", prURL, "err", err)
		return
	}

	ctx := context.WithoutCancel(h.scope(r.Context(), args))
	req := runner.Request{PRURL: prURL, Args: args}

	if !h.start() {
		metrics.WebhookEventsTotal.WithLabelValues(provider, "shutdown").Inc()
		h.log.Warnw("review dropped during shutdown", "provider", provider, "pr_url", prURL)
		return
	}
	metrics.WebhookEventsTotal.WithLabelValues(provider, "triggered").Inc()
	h.log.Infow("review triggered", "provider", provider, "pr_url", prURL, "args", args)

	go func() {
		defer h.wg.Done()
		_, _ = h.runs.Run(ctx, req) // outcome logged by the runner
	}()
}

// start registers a run with wg unless Wait has begun.
func (h *Handler) start() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.wg.Add(1)
	return true
}

// scope layers comment overrides on the settings visible in ctx.  A
// rejected override leaves ctx unchanged.
func (h *Handler) scope(ctx context.Context, args []string) context.Context {
	ov, denied := overrides(args)
	if len(denied) > 0 {
		h.log.Warnw("comment settings override denied", "keys", denied)
	}
	if len(ov) == 0 {
		return ctx
	}
	store := settings.Get(ctx).Clone()
	if err := store.UpdateFrom("comment", ov); err != nil {
		h.log.Warnw("comment settings override rejected", "err", err)
		return ctx
	}
	return settings.WithContext(ctx, store.Freeze())
}
