package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ascsh/internal/config"
	"ascsh/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Set daemon.socket in %s to skip passing the socket path.\n", filepath.Base(target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and print the resolved values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolved, exists, err := config.Load(flagValue(ctx.configFlag))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := resolved
			if !exists {
				source = "defaults (no config file found)"
			}
			fmt.Fprintf(out, "Configuration valid: %s\n", source)
			fmt.Fprintf(out, "  daemon.socket:        %s\n", cfg.Daemon.Socket)
			fmt.Fprintf(out, "  daemon.dial_timeout:  %s\n", cfg.DialTimeout())
			fmt.Fprintf(out, "  daemon.request_timeout: %s\n", requestTimeoutLabel(cfg))
			fmt.Fprintf(out, "  shell.history_file:   %s\n", historyLabel(cfg))
			fmt.Fprintf(out, "  logging.level:        %s\n", cfg.Logging.Level)

			results := preflight.RunAll(cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkLabel(r.Passed), r.Detail})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			return nil
		},
	}
}

func requestTimeoutLabel(cfg *config.Config) string {
	if cfg.RequestTimeout() == 0 {
		return "none"
	}
	return cfg.RequestTimeout().String()
}

func historyLabel(cfg *config.Config) string {
	if !cfg.HistoryEnabled() {
		return "disabled"
	}
	return cfg.Shell.HistoryFile
}

func checkLabel(passed bool) string {
	if passed {
		return "OK"
	}
	return "FAIL"
}
