package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateShell(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if strings.TrimSpace(c.Daemon.Socket) == "" {
		return errors.New("daemon.socket must be set")
	}
	if c.Daemon.DialTimeout <= 0 {
		return errors.New("daemon.dial_timeout must be positive (seconds)")
	}
	if c.Daemon.RequestTimeout < 0 {
		return errors.New("daemon.request_timeout must be zero (wait forever) or positive (seconds)")
	}
	return nil
}

func (c *Config) validateShell() error {
	if c.Shell.HistorySize < 0 {
		return errors.New("shell.history_size must not be negative")
	}
	switch c.Shell.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("shell.color: unsupported value %q (want auto, always, or never)", c.Shell.Color)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
