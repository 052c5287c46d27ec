// Package notifications delivers playback events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-category toggles let users keep track-change pushes without
// playback-session noise (or the other way around).
//
// Extend this package if you need alternative transports; the dispatcher and
// CLI depend only on the simple Service interface.
package notifications
