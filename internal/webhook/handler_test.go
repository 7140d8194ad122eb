// internal/webhook/handler_test.go
//
// Router + handler tests with a recording Runner.
//
// Run: go test ./internal/webhook -v

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/reviewhook/internal/config"
	"github.com/yanizio/reviewhook/internal/metrics"
	"github.com/yanizio/reviewhook/internal/runner"
	"github.com/yanizio/reviewhook/internal/settings"
)

type call struct {
	req     runner.Request
	model   string
	n       int
	timeout time.Duration
	ctxOK   bool
}

type recordingRunner struct {
	mu    sync.Mutex
	calls []call
}

func (r *recordingRunner) Run(ctx context.Context, req runner.Request) (runner.Result, error) {
	s := settings.Get(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{
		req:     req,
		model:   s.String("config.model"),
		n:       s.Int("pr_reviewer.num_code_suggestions"),
		timeout: s.Duration("webhook.run_timeout"),
		ctxOK:   ctx.Err() == nil,
	})
	return runner.Result{}, nil
}

func (r *recordingRunner) recorded() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func newServer(t *testing.T) (*httptest.Server, *Handler, *recordingRunner) {
	t.Helper()

	store := settings.NewStore()
	require.NoError(t, store.Update(map[string]any{
		"config":      map[string]any{"model": "base-model"},
		"pr_reviewer": map[string]any{"num_code_suggestions": 3},
		"webhook":     map[string]any{"run_timeout": "10m"},
	}))
	settings.Publish(store.Freeze())
	t.Cleanup(func() { settings.Publish(nil) })

	rr := &recordingRunner{}
	h := NewHandler("/review", rr, zap.NewNop().Sugar())
	srv := httptest.NewServer(NewRouter(h, config.RateLimit{}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, h, rr
}

func post(t *testing.T, url, body string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func githubBody(comment string) string {
	b, _ := json.Marshal(map[string]any{
		"action":  "created",
		"comment": map[string]any{"body": comment},
		"issue": map[string]any{
			"pull_request": map[string]any{"html_url": "https://github.com/acme/app/pull/42"},
		},
	})
	return string(b)
}

func TestGitHub_TriggeredComment(t *testing.T) {
	srv, h, rr := newServer(t)

	code := post(t, srv.URL+"/github-webhook", githubBody("/review improve"))
	h.Wait()

	assert.Equal(t, http.StatusOK, code)
	calls := rr.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "https://github.com/acme/app/pull/42", calls[0].req.PRURL)
	assert.Equal(t, []string{"improve"}, calls[0].req.Args)
	assert.True(t, calls[0].ctxOK, "run context must outlive the request")
}

func TestGitHub_CommentOverrideIsRequestScoped(t *testing.T) {
	srv, h, rr := newServer(t)

	post(t, srv.URL+"/github-webhook",
		githubBody("/review review --pr_reviewer.num_code_suggestions=9 --config.model=alt"))
	post(t, srv.URL+"/github-webhook", githubBody("/review review"))
	h.Wait()

	calls := rr.recorded()
	require.Len(t, calls, 2)

	byArgs := map[int]call{}
	for _, c := range calls {
		byArgs[len(c.req.Args)] = c
	}
	assert.Equal(t, 9, byArgs[3].n)
	assert.Equal(t, "alt", byArgs[3].model)
	assert.Equal(t, 3, byArgs[1].n)
	assert.Equal(t, "base-model", byArgs[1].model)
	assert.Equal(t, "base-model", settings.Global().String("config.model"))
}

func TestGitHub_CommentCannotOverrideServerSettings(t *testing.T) {
	srv, h, rr := newServer(t)

	post(t, srv.URL+"/github-webhook",
		githubBody("/review review --webhook.run_timeout=0s --pr_reviewer.num_code_suggestions=5"))
	h.Wait()

	calls := rr.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, 10*time.Minute, calls[0].timeout)
	assert.Equal(t, 5, calls[0].n)
	assert.Equal(t, []string{"review", "--webhook.run_timeout=0s", "--pr_reviewer.num_code_suggestions=5"},
		calls[0].req.Args)
}

func TestHandler_DropsTriggersAfterWait(t *testing.T) {
	srv, h, rr := newServer(t)
	h.Wait()
	before := testutil.ToFloat64(metrics.WebhookEventsTotal.WithLabelValues("github", "shutdown"))

	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/github-webhook", githubBody("/review improve")))
	h.Wait()

	assert.Empty(t, rr.recorded())
	after := testutil.ToFloat64(metrics.WebhookEventsTotal.WithLabelValues("github", "shutdown"))
	assert.Equal(t, 1.0, after-before)
}

func TestGitHub_IgnoredEvents(t *testing.T) {
	srv, h, rr := newServer(t)
	before := testutil.ToFloat64(metrics.WebhookEventsTotal.WithLabelValues("github", "ignored"))

	bodies := []string{
		githubBody("looks good to me"),
		`{"action":"edited","comment":{"body":"/review"},"issue":{"pull_request":{"html_url":"u"}}}`,
		`{"action":"created","comment":{"body":"/review"},"issue":{}}`,
		`{}`,
	}
	for _, b := range bodies {
		assert.Equal(t, http.StatusOK, post(t, srv.URL+"/github-webhook", b))
	}
	h.Wait()

	assert.Empty(t, rr.recorded())
	after := testutil.ToFloat64(metrics.WebhookEventsTotal.WithLabelValues("github", "ignored"))
	assert.Equal(t, float64(len(bodies)), after-before)
}

func TestGitHub_MalformedJSON(t *testing.T) {
	srv, _, rr := newServer(t)

	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/github-webhook", `{"action":`))
	assert.Empty(t, rr.recorded())
}

func TestGitLab_MergeRequestNote(t *testing.T) {
	srv, h, rr := newServer(t)

	body := `{
	  "object_kind": "note",
	  "object_attributes": {"noteable_type": "MergeRequest", "note": "/review describe"},
	  "merge_request": {"url": "https://gitlab.com/acme/app/-/merge_requests/5"}
	}`
	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/gitlab-webhook", body))
	h.Wait()

	calls := rr.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "https://gitlab.com/acme/app/-/merge_requests/5", calls[0].req.PRURL)
	assert.Equal(t, []string{"describe"}, calls[0].req.Args)
}

func TestGitLab_IssueNoteIgnored(t *testing.T) {
	srv, h, rr := newServer(t)

	body := `{"object_attributes": {"noteable_type": "Issue", "note": "/review"}}`
	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/gitlab-webhook", body))
	h.Wait()
	assert.Empty(t, rr.recorded())
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	srv, _, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/github-webhook")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestScope_RejectedOverrideKeepsContext(t *testing.T) {
	store := settings.NewStore()
	require.NoError(t, store.Update(map[string]any{"config": map[string]any{"model": map[string]any{"name": "m"}}}))
	base := store.Freeze()
	ctx := settings.WithContext(context.Background(), base)

	h := NewHandler("/review", &recordingRunner{}, zap.NewNop().Sugar())
	got := h.scope(ctx, []string{"--config.model=flat"})

	assert.Same(t, base, settings.Get(got))
}
