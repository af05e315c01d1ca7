package preflight

import (
	"path/filepath"

	"ascsh/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The history check is skipped when history is disabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckSocket("Daemon socket", cfg.Daemon.Socket)}

	if cfg.HistoryEnabled() {
		results = append(results, CheckHistoryDir("History directory", filepath.Dir(cfg.Shell.HistoryFile)))
	}

	return results
}
