package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ascsh/internal/config"
	"ascsh/internal/daemonconn"
	"ascsh/internal/history"
	"ascsh/internal/logging"
	"ascsh/internal/shell"
)

const disconnectTimeout = 5 * time.Second

func runSession(cmd *cobra.Command, cctx *commandContext, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	colorize := shouldColorize(stdout, cfg.Shell.Color)
	colorizeErr := shouldColorize(stderr, cfg.Shell.Color)

	socket, explicit := cctx.socketPath(args)
	if !explicit {
		fmt.Fprintf(stdout, "no socket specified; using %s\n", socket)
	}

	sessionID := uuid.NewString()
	base, err := cctx.logger(sessionID)
	if err != nil {
		return err
	}
	logger := logging.NewComponentLogger(base, "cli")

	hist := openHistory(cfg, logger)

	conn, err := daemonconn.Connect(ctx, socket,
		daemonconn.WithLogger(base),
		daemonconn.WithSessionID(sessionID),
		daemonconn.WithDialTimeout(cfg.DialTimeout()),
		daemonconn.WithRequestTimeout(cfg.RequestTimeout()),
	)
	if err != nil {
		fmt.Fprintln(stderr, renderFailure("ascsh: failed to connect to daemon", colorizeErr))
		fmt.Fprintf(stderr, "ascsh: %s\n", describeConnectError(conn.Err(), socket))
		return errReported
	}

	fmt.Fprintf(stdout, "connected to ascd socket '%s'\n", socket)
	fmt.Fprintln(stdout, "to exit the shell, type 'exit' or send EOF")

	in, out, errOut, closeInput := newInput(cmd, cfg, hist, logger)
	opts := shell.Options{
		Out:            out,
		Err:            errOut,
		Logger:         base,
		DefaultProgram: cfg.Shell.DefaultProgram,
		Color:          colorize,
	}
	if hist != nil {
		opts.History = hist
	}
	loopErr := shell.New(conn, in, opts).Run(ctx)
	closeInput()

	if conn.Status() == daemonconn.StatusConnected {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
		defer cancel()
		if err := conn.Disconnect(dctx); err != nil {
			fmt.Fprintln(stderr, renderFailure("ascsh: failed to disconnect", colorizeErr))
			fmt.Fprintf(stderr, "ascsh: %v\n", conn.Err())
			return errReported
		}
	}

	if loopErr != nil {
		logger.Debug("session ended with failure", logging.Error(loopErr))
		return errReported
	}
	return nil
}

func openHistory(cfg *config.Config, logger *slog.Logger) *history.Log {
	if !cfg.HistoryEnabled() {
		return nil
	}
	log, err := history.Open(cfg.Shell.HistoryFile, cfg.Shell.HistorySize)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String("path", cfg.Shell.HistoryFile),
			logging.String(logging.FieldErrorHint, "set shell.history_file to a writable path or leave it empty"),
			logging.String(logging.FieldImpact, "input will not be remembered across sessions"))
		return nil
	}
	logger.Debug("history loaded",
		logging.String("path", log.Path()),
		logging.Int("entries", len(log.Entries())))
	return log
}

// newInput picks raw terminal editing when both ends are a terminal and a
// plain scanner otherwise. The returned writers must carry all shell output.
func newInput(cmd *cobra.Command, cfg *config.Config, hist *history.Log, logger *slog.Logger) (shell.LineReader, io.Writer, io.Writer, func()) {
	stdin := cmd.InOrStdin()
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if inFile, ok := stdin.(*os.File); ok && shell.IsTerminal(inFile) && isTerminal(stdout) {
		var recall []string
		if hist != nil {
			recall = hist.Entries()
		}
		reader, err := shell.NewTerminalReader(inFile, stdout, cfg.Shell.Prompt, recall)
		if err == nil {
			w := reader.Writer()
			return reader, w, w, func() {
				if err := reader.Close(); err != nil {
					logger.Debug("terminal restore failed", logging.Error(err))
				}
			}
		}
		logger.Debug("terminal line editing unavailable", logging.Error(err))
	}

	return shell.NewScannerReader(stdin, stdout, cfg.Shell.Prompt), stdout, stderr, func() {}
}
