package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"ascsh/internal/testsupport"
)

type cliTestEnv struct {
	backend    *testsupport.MemoryBackend
	socketPath string
	home       string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ASCD_SOCKET", "")
	t.Setenv("ASCSH_HISTORY", "")
	t.Chdir(t.TempDir())

	backend := testsupport.NewMemoryBackend()
	socket, _ := testsupport.StartDaemon(t, backend)

	return &cliTestEnv{
		backend:    backend,
		socketPath: socket,
		home:       home,
	}
}

func (e *cliTestEnv) historyPath() string {
	return filepath.Join(e.home, ".local", "state", "ascsh", "history")
}

func runCLI(t *testing.T, args []string, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
