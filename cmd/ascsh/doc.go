// Package main hosts the ascsh entrypoint.
//
// The Cobra root command resolves the daemon socket, loads configuration,
// builds the session logger and history log, and hands a connected session to
// the shell interpreter. It owns the process exit code: any failure to
// connect, a failed session, or a failed disconnect exits non-zero.
package main
