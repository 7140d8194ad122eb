// internal/runner/runner_test.go
//
// Runner tests re-exec the test binary as a fake review CLI
// (TestHelperProcess), so no external command is needed.
//
// Run: go test ./internal/runner -v

package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/reviewhook/internal/settings"
)

// TestHelperProcess is the fake CLI.  Behaviour is picked by the first
// argument after the command name.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	switch args[1] {
	case "echo":
		fmt.Println(strings.Join(args[2:], " "))
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(3)
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperRunner(t *testing.T, mode string, maxConcurrent int) *Runner {
	t.Helper()
	r := New([]string{"review-cli", mode}, maxConcurrent, nil)
	r.commandContext = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, arg...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	return r
}

func TestArgv(t *testing.T) {
	r := New([]string{"python", "-m", "pr_agent.cli"}, 1, nil)
	got := r.Argv(Request{PRURL: "https://github.com/o/r/pull/1", Args: []string{"review"}})
	assert.Equal(t, []string{
		"python", "-m", "pr_agent.cli",
		"--pr_url", "https://github.com/o/r/pull/1",
		"review",
	}, got)
}

func TestRun_Success(t *testing.T) {
	r := helperRunner(t, "echo", 1)
	res, err := r.Run(context.Background(), Request{
		PRURL: "https://github.com/o/r/pull/7",
		Args:  []string{"improve", "--pr_reviewer.extra=1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "--pr_url https://github.com/o/r/pull/7 improve --pr_reviewer.extra=1\n", res.Stdout)
}

func TestRun_NonZeroExit(t *testing.T) {
	r := helperRunner(t, "fail", 1)
	res, err := r.Run(context.Background(), Request{PRURL: "u"})
	require.Error(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom\n", res.Stderr)
}

func TestRun_TimeoutFromScopedSettings(t *testing.T) {
	store := settings.NewStore()
	require.NoError(t, store.Update(map[string]any{
		"webhook": map[string]any{"run_timeout": "200ms"},
	}))
	ctx := settings.WithContext(context.Background(), store.Freeze())

	r := helperRunner(t, "sleep", 1)
	start := time.Now()
	_, err := r.Run(ctx, Request{PRURL: "u"})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := New(nil, 1, nil).Run(context.Background(), Request{PRURL: "u"})
	require.Error(t, err)
}

func TestRun_ConcurrencyCap(t *testing.T) {
	r := helperRunner(t, "echo", 2)

	var inflight, peak atomic.Int32
	base := r.commandContext
	r.commandContext = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inflight.Add(-1)
		return base(ctx, name, arg...)
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Run(context.Background(), Request{PRURL: "u"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_WaitForSlotHonoursCancel(t *testing.T) {
	r := helperRunner(t, "sleep", 1)
	require.NoError(t, r.sem.Acquire(context.Background(), 1))
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx, Request{PRURL: "u"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
