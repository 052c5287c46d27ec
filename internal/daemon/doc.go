// Package daemon wires the stream reader to its consumers and enforces
// single-instance execution. One dispatcher goroutine drains the reader's
// event channel in order and fans each event out to the now-playing
// tracker, the history store, the artwork exporter, notifications, and the
// optional NATS republisher. Sink failures are logged and never stop the
// stream. The daemon also hosts the embedded HTTP API and implements the
// IPC controller surface.
package daemon
