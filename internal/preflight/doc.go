// Package preflight provides readiness checks for the filesystem paths ascsh
// depends on: the daemon socket and the history directory.
//
// "ascsh config validate" runs every applicable check through RunAll, and the
// shell consults CheckSocket after a failed connect to explain what is wrong
// with the socket path.
package preflight
