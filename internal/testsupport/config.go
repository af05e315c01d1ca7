package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"ascsh/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Daemon.Socket = filepath.Join(base, "ascd.sock")
	cfgVal.Shell.HistoryFile = filepath.Join(base, "state", "history")
	cfgVal.Logging.File = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSocket points the test config at an existing daemon socket.
func WithSocket(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.Socket = path
	}
}

// WithoutHistory disables the persistent history log.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shell.HistoryFile = ""
	}
}

// WithConfigFile writes the config contents to base/config.toml and stores the
// path in *dst so CLI tests can pass it via --config.
func WithConfigFile(contents string, dst *string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "config.toml")
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			b.t.Fatalf("write config: %v", err)
		}
		if dst != nil {
			*dst = path
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Daemon.Socket)
}
