// Package ipc speaks the ascd control protocol: JSON-RPC over a Unix domain
// socket.
//
// It owns the request/response DTOs, the client the shell uses to reach the
// daemon, and a small endpoint server that embeds any Backend. The client
// threads context cancellation and an optional per-request timeout through
// every call so a caller can bound how long it waits on a silent daemon.
//
// Keep the method names and DTO field tags stable; they are the wire contract.
package ipc
