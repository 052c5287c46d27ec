// Package reader drives metadata consumption from a shairport-sync pipe,
// file, or stdin.
//
// A Decoder pulls arbitrarily chunked bytes from one io.Reader and yields
// classified events, skipping malformed frames in place. A Reader owns a
// source path and runs the Decoder either one-shot (ReadAll returns the
// ordered batch) or continuously (Start feeds an ordered event channel and
// reopens the source with backoff whenever the pipe's writer disconnects).
// Each Reader instance owns its buffer, source handle, and channel, so
// independent instances can watch different sources concurrently.
package reader
