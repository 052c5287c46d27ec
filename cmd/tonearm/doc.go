// Command tonearm is the CLI for the tonearm metadata daemon. It can run the
// daemon in the foreground, query a running daemon over its unix socket, and
// decode metadata streams directly without a daemon.
package main
