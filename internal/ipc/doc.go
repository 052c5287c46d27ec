// Package ipc exposes daemon control over a Unix domain socket using
// JSON-RPC. The CLI is the only intended client; the socket lives in the
// state directory and is removed on shutdown.
package ipc
