// Package history persists shell input lines across sessions.
//
// The log is a plain text file with one entry per line, capped at a fixed
// number of entries. Writers serialize through an advisory lock file next to
// the log so concurrent shells never interleave or truncate each other's
// entries.
package history
