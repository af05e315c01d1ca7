package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	if err := c.normalizeShell(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

// The socket path is kept relative when configured that way: unix socket
// addresses are length limited and the default is cwd-relative.
func (c *Config) normalizeDaemon() error {
	if value, ok := os.LookupEnv("ASCD_SOCKET"); ok && strings.TrimSpace(value) != "" {
		c.Daemon.Socket = value
	}
	c.Daemon.Socket = strings.TrimSpace(c.Daemon.Socket)
	if c.Daemon.Socket == "" {
		c.Daemon.Socket = defaultSocketPath
	}
	var err error
	if c.Daemon.Socket, err = expandHome(c.Daemon.Socket); err != nil {
		return fmt.Errorf("daemon.socket: %w", err)
	}
	return nil
}

func (c *Config) normalizeShell() error {
	if c.Shell.Prompt == "" {
		c.Shell.Prompt = defaultPrompt
	}
	c.Shell.DefaultProgram = strings.TrimSpace(c.Shell.DefaultProgram)
	if c.Shell.DefaultProgram == "" {
		c.Shell.DefaultProgram = defaultProgram
	}
	if value, ok := os.LookupEnv("ASCSH_HISTORY"); ok && strings.TrimSpace(value) != "" {
		c.Shell.HistoryFile = value
	}
	c.Shell.HistoryFile = strings.TrimSpace(c.Shell.HistoryFile)
	var err error
	if c.Shell.HistoryFile, err = expandPath(c.Shell.HistoryFile); err != nil {
		return fmt.Errorf("shell.history_file: %w", err)
	}
	c.Shell.Color = strings.ToLower(strings.TrimSpace(c.Shell.Color))
	if c.Shell.Color == "" {
		c.Shell.Color = defaultColor
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
