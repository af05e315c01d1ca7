package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ascsh/internal/config"
	"ascsh/internal/logging"
)

func TestNewFromConfigWritesToLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "info"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "ascsh.log")

	logger, err := logging.NewFromConfig(&cfg, "session-1")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("connected", logging.String(logging.FieldSocket, "/tmp/ascd.sock"))

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	for _, want := range []string{"INFO", "connected", "socket=/tmp/ascd.sock", "session_id=session-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output %q", want, out)
		}
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAndQuotesValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "daemonconn")
	logger.Info("filtered by level")
	logging.WarnWithContext(logger, "query failed", "daemon_query_failed", logging.Error(errors.New("broken pipe")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	if strings.Contains(out, "filtered by level") {
		t.Fatalf("expected info record to be filtered, got %q", out)
	}
	for _, want := range []string{"WARN daemonconn: query failed", `error="broken pipe"`, "event_type=daemon_query_failed", "error_hint=", "impact="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, SessionID: "abc"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", logging.Int("dim", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["msg"] != "hello" || record["level"] != "info" || record["session_id"] != "abc" {
		t.Fatalf("unexpected json record: %#v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 12) {
		t.Fatal("expected nop logger to be disabled")
	}
}

func TestConsoleLoggerUsesInnermostComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested.log")

	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	outer := logging.NewComponentLogger(base, "cli")
	logging.NewComponentLogger(outer, "daemonconn").Info("daemon connected")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, "daemonconn: daemon connected") {
		t.Fatalf("expected innermost component prefix, got %q", out)
	}
	if strings.Contains(out, "cli") {
		t.Fatalf("expected outer component to be dropped, got %q", out)
	}
}

func TestSessionIDNotDuplicated(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "session.json")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.With(logging.String(logging.FieldSessionID, "s-1")).Info("bound")
	logger.Info("explicit", logging.String(logging.FieldSessionID, "s-2"))
	logger.Info("injected")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 records, got %d: %q", len(lines), content)
	}
	want := []string{"s-1", "s-2", "s-1"}
	for i, line := range lines {
		if n := strings.Count(line, `"session_id"`); n != 1 {
			t.Fatalf("record %d carries session_id %d times: %s", i, n, line)
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode record %d: %v", i, err)
		}
		if record["session_id"] != want[i] {
			t.Fatalf("record %d session_id = %v, want %s", i, record["session_id"], want[i])
		}
	}
}

func TestJSONLoggerReportsCallerAtDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.json")

	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("slow reply")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "warn" {
		t.Fatalf("expected lower-case level, got %#v", record["level"])
	}
	caller, _ := record["caller"].(string)
	if !strings.HasPrefix(caller, "logger_test.go:") {
		t.Fatalf("expected caller file:line, got %#v", record)
	}
	if _, ok := record["source"]; ok {
		t.Fatalf("expected source to be renamed, got %#v", record)
	}
}
