// internal/runner/runner.go
//
// Review CLI invocation.
//
/*
Context
--------
A Runner executes the configured command line once per triggered review:

	<command...> --pr_url <url> <comment args...>

Runs are capped by a weighted semaphore (`webhook.max_concurrent_runs`)
and bounded by `webhook.run_timeout`, read per run through
settings.Get(ctx) so a request-scoped override applies to its own run
only.  Stdout and stderr are captured and logged when the process exits.

Notes
-----
  • A non-zero exit is reported in Result.ExitCode and as an error; the
    caller only logs it.
  • The child inherits the server's environment, including PR_AGENT_*
    secrets, which the CLI resolves on its own.
*/
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/yanizio/reviewhook/internal/metrics"
	"github.com/yanizio/reviewhook/internal/settings"
)

// Request is one review to run.
type Request struct {
	PRURL string
	Args  []string
}

// Result captures a finished run.
type Result struct {
	Argv     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner is safe for concurrent use.
type Runner struct {
	command []string
	sem     *semaphore.Weighted
	log     *zap.SugaredLogger

	// commandContext is exec.CommandContext outside tests.
	commandContext func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// New returns a Runner for command (argv prefix) allowing maxConcurrent
// simultaneous runs.
func New(command []string, maxConcurrent int, log *zap.SugaredLogger) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if log == nil {
		log = zap.S()
	}
	return &Runner{
		command:        command,
		sem:            semaphore.NewWeighted(int64(maxConcurrent)),
		log:            log,
		commandContext: exec.CommandContext,
	}
}

// Argv builds the full command line for req.
func (r *Runner) Argv(req Request) []string {
	argv := make([]string, 0, len(r.command)+2+len(req.Args))
	argv = append(argv, r.command...)
	argv = append(argv, "--pr_url", req.PRURL)
	return append(argv, req.Args...)
}

// Run waits for a slot, then executes req.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if len(r.command) == 0 {
		return Result{}, errors.New("runner: empty command")
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("wait for run slot: %w", err)
	}
	defer r.sem.Release(1)

	if d := settings.Get(ctx).Duration("webhook.run_timeout"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	argv := r.Argv(req)
	cmd := r.commandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Infow("review run started", "pr_url", req.PRURL, "args", req.Args)
	start := time.Now()
	err := cmd.Run()
	res := Result{
		Argv:     argv,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	metrics.ReviewRunDuration.Observe(res.Duration.Seconds())

	fields := []any{
		"pr_url", req.PRURL,
		"exit_code", res.ExitCode,
		"duration", res.Duration,
		"stdout", res.Stdout,
	}
	if res.Stderr != "" {
		fields = append(fields, "stderr", res.Stderr)
	}

	switch {
	case err == nil:
		metrics.ReviewRunsTotal.WithLabelValues("ok").Inc()
		r.log.Infow("review run finished", fields...)
		return res, nil
	case ctx.Err() != nil:
		metrics.ReviewRunsTotal.WithLabelValues("timeout").Inc()
		r.log.Warnw("review run aborted", append(fields, "err", ctx.Err())...)
		return res, fmt.Errorf("review run aborted: %w", ctx.Err())
	default:
		metrics.ReviewRunsTotal.WithLabelValues("failed").Inc()
		r.log.Warnw("review run failed", append(fields, "err", err)...)
		return res, fmt.Errorf("review run: %w", err)
	}
}
