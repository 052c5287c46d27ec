package ipc

import (
	"time"

	"tonearm/internal/history"
	"tonearm/internal/nowplaying"
)

// StatusRequest asks for daemon state.
type StatusRequest struct{}

// StatusResponse reports daemon and stream state.
type StatusResponse struct {
	Running         bool      `json:"running"`
	PID             int       `json:"pid"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	SourcePath      string    `json:"source_path"`
	SourceState     string    `json:"source_state"`
	Frames          uint64    `json:"frames"`
	Skipped         uint64    `json:"skipped"`
	Reopens         uint64    `json:"reopens"`
	HistoryDB       string    `json:"history_db,omitempty"`
	HistoryPlays    int64     `json:"history_plays,omitempty"`
	HistorySessions int64     `json:"history_sessions,omitempty"`
	LockPath        string    `json:"lock_path,omitempty"`
}

// NowRequest asks for the current playback snapshot.
type NowRequest struct{}

// NowResponse carries the tracker snapshot.
type NowResponse struct {
	Snapshot nowplaying.Snapshot `json:"snapshot"`
}

// HistoryListRequest asks for recent plays.
type HistoryListRequest struct {
	Limit int `json:"limit"`
}

// HistoryListResponse carries plays, newest first.
type HistoryListResponse struct {
	Plays []history.Play `json:"plays"`
}

// TestNotificationRequest triggers a test push.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the delivery attempt.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse acknowledges shutdown.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
