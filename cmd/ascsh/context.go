package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"ascsh/internal/config"
	"ascsh/internal/logging"
)

// errReported marks failures whose message was already written to stderr.
var errReported = errors.New("already reported")

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	colorFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, colorFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		colorFlag:    colorFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if mode := flagValue(c.colorFlag); mode != "" {
			cfg.Shell.Color = strings.ToLower(mode)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(sessionID string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, sessionID)
}

// socketPath picks the positional argument when present, then the configured
// socket (which already folds in ASCD_SOCKET). explicit is false when the
// user named no socket.
func (c *commandContext) socketPath(args []string) (path string, explicit bool) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], true
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg.Daemon.Socket != "" {
		return cfg.Daemon.Socket, false
	}
	return config.Default().Daemon.Socket, false
}

func describeConnectError(err error, socket string) string {
	if err == nil {
		return "unknown error"
	}
	switch {
	case errors.Is(err, unix.ENOENT):
		return fmt.Sprintf("%v (socket %s not found; start ascd or pass the socket path)", err, socket)
	case errors.Is(err, unix.ECONNREFUSED):
		return fmt.Sprintf("%v (socket %s refused the connection; verify ascd is running)", err, socket)
	case errors.Is(err, unix.EACCES):
		return fmt.Sprintf("%v (permission denied on %s; check the socket's owner and mode)", err, socket)
	default:
		return err.Error()
	}
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
