// internal/logger/logger_test.go
//
// Run: go test ./internal/logger -v

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewWritesDailyJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	defer zap.ReplaceGlobals(zap.NewNop())

	log, err := New(dir, "debug", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debugw("probe", "k", "v")
	_ = log.Sync()

	b, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"probe"`) {
		t.Errorf("log file missing probe line:\n%s", b)
	}
	if !zap.L().Core().Enabled(zap.DebugLevel) {
		t.Errorf("global logger not replaced")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(t.TempDir(), "chatty", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
