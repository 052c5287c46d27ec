// Package history persists the play log in SQLite. Listening sessions open
// on ActiveBegin and close on ActiveEnd; each committed track change records
// one play row tied to its session. The CLI reads the same database directly
// when the daemon is not running.
package history
