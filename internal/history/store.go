package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tonearm/internal/nowplaying"
)

// Store manages play-log persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	session string
}

// Play is one logged track.
type Play struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	Genre      string    `json:"genre,omitempty"`
	StreamName string    `json:"stream_name,omitempty"`
	PlayedAt   time.Time `json:"played_at"`
}

// Stats summarizes the log for status output.
type Stats struct {
	Plays    int64     `json:"plays"`
	Sessions int64     `json:"sessions"`
	Oldest   time.Time `json:"oldest,omitzero"`
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path reports the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginSession opens a listening session and returns its ID. An already
// open session is closed first.
func (s *Store) BeginSession(ctx context.Context, streamName, userAgent string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != "" {
		if err := s.endSessionLocked(ctx); err != nil {
			return "", err
		}
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, stream_name, user_agent, started_at) VALUES (?, ?, ?, ?)",
		id, streamName, userAgent, timestamp(time.Now()))
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	s.session = id
	return id, nil
}

// SetSessionInfo fills in the open session's stream name and user agent.
// Senders announce these after ActiveBegin, so the row starts out blank.
// Empty arguments leave the stored values alone; a no-op without a session.
func (s *Store) SetSessionInfo(ctx context.Context, streamName, userAgent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET
			stream_name = CASE WHEN ? != '' THEN ? ELSE stream_name END,
			user_agent = CASE WHEN ? != '' THEN ? ELSE user_agent END
		WHERE id = ?`,
		streamName, streamName, userAgent, userAgent, s.session)
	if err != nil {
		return fmt.Errorf("update session info: %w", err)
	}
	return nil
}

// EndSession stamps the open session's end time. A no-op when no session is
// open.
func (s *Store) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endSessionLocked(ctx)
}

func (s *Store) endSessionLocked(ctx context.Context) error {
	if s.session == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ? WHERE id = ?",
		timestamp(time.Now()), s.session)
	s.session = ""
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// RecordPlay logs one committed track. A session is opened implicitly when
// the sender never signalled ActiveBegin.
func (s *Store) RecordPlay(ctx context.Context, track nowplaying.Track) (int64, error) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == "" {
		var err error
		if session, err = s.BeginSession(ctx, "", ""); err != nil {
			return 0, err
		}
	}

	playedAt := track.StartedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO plays (session_id, title, artist, album, genre, played_at) VALUES (?, ?, ?, ?, ?, ?)",
		session, track.Title, track.Artist, track.Album, track.Genre, timestamp(playedAt))
	if err != nil {
		return 0, fmt.Errorf("insert play: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("play id: %w", err)
	}
	return id, nil
}

// List returns the most recent plays, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Play, error) {
	query := `SELECT p.id, p.session_id, p.title, p.artist, p.album, p.genre, s.stream_name, p.played_at
FROM plays p JOIN sessions s ON s.id = p.session_id
ORDER BY p.played_at DESC, p.id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var (
			p  Play
			ts string
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Title, &p.Artist, &p.Album, &p.Genre, &p.StreamName, &ts); err != nil {
			return nil, fmt.Errorf("scan play: %w", err)
		}
		p.PlayedAt = parseTimestamp(ts)
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plays: %w", err)
	}
	return plays, nil
}

// Purge deletes plays older than keepDays and sessions that ended up empty,
// returning how many plays were removed. keepDays of zero or less is a
// no-op.
func (s *Store) Purge(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := timestamp(time.Now().AddDate(0, 0, -keepDays))
	res, err := s.db.ExecContext(ctx, "DELETE FROM plays WHERE played_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge plays: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge count: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE ended_at IS NOT NULL AND id NOT IN (SELECT DISTINCT session_id FROM plays)")
	if err != nil {
		return removed, fmt.Errorf("purge sessions: %w", err)
	}
	return removed, nil
}

// Stats counts plays and sessions and finds the oldest play.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var oldest sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(MIN(played_at), '') FROM plays").Scan(&st.Plays, &oldest)
	if err != nil {
		return Stats{}, fmt.Errorf("count plays: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM sessions").Scan(&st.Sessions); err != nil {
		return Stats{}, fmt.Errorf("count sessions: %w", err)
	}
	if oldest.Valid && oldest.String != "" {
		st.Oldest = parseTimestamp(oldest.String)
	}
	return st, nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
