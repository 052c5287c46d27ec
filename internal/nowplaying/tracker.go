package nowplaying

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"tonearm/internal/logging"
	"tonearm/internal/metadata"
)

// PlayState is the coarse playback state derived from ssnc signals.
type PlayState uint8

const (
	StateIdle PlayState = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s PlayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of everything the tracker knows.
type Snapshot struct {
	State       PlayState `json:"state"`
	Active      bool      `json:"active"`
	Track       Track     `json:"track"`
	HasTrack    bool      `json:"has_track"`
	Volume      Volume    `json:"volume"`
	HasVolume   bool      `json:"has_volume"`
	Progress    Progress  `json:"progress"`
	HasProgress bool      `json:"has_progress"`
	StreamTitle string    `json:"stream_title,omitempty"`
	StreamName  string    `json:"stream_name,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Tracker folds events into playback state. Apply is expected to be called
// from one goroutine (the dispatcher); Snapshot and the subscribe methods
// are safe from any goroutine.
type Tracker struct {
	logger *slog.Logger

	mu      sync.Mutex
	snap    Snapshot
	pending Track
	dirty   bool
	onTrack []func(Track)
	onState []func(PlayState)

	now func() time.Time
}

// New builds an empty tracker. A nil logger is replaced with a nop.
func New(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{logger: logger, now: time.Now}
}

// OnTrackChange registers fn to run whenever a different track commits.
func (t *Tracker) OnTrackChange(fn func(Track)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTrack = append(t.onTrack, fn)
}

// OnStateChange registers fn to run whenever the play state moves.
func (t *Tracker) OnStateChange(fn func(PlayState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onState = append(t.onState, fn)
}

// Snapshot copies the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Apply folds one event into the state. Callbacks run after the internal
// lock is released, in registration order.
func (t *Tracker) Apply(ev metadata.Event) {
	t.mu.Lock()
	var (
		trackFns []func(Track)
		track    Track
		stateFns []func(PlayState)
		state    PlayState
	)

	switch ev.Kind {
	case metadata.KindTitle:
		t.setPending(func(p *Track) { p.Title = ev.Text })
	case metadata.KindArtist:
		t.setPending(func(p *Track) { p.Artist = ev.Text })
	case metadata.KindAlbum:
		t.setPending(func(p *Track) { p.Album = ev.Text })
	case metadata.KindGenre:
		t.setPending(func(p *Track) { p.Genre = ev.Text })
	case metadata.KindComposer:
		t.setPending(func(p *Track) { p.Composer = ev.Text })
	case metadata.KindYear:
		t.setPendingInt(ev.Text, func(p *Track, n int) { p.Year = n })
	case metadata.KindTrackNumber:
		t.setPendingInt(ev.Text, func(p *Track, n int) { p.TrackNumber = n })
	case metadata.KindTrackCount:
		t.setPendingInt(ev.Text, func(p *Track, n int) { p.TrackCount = n })
	case metadata.KindDiscNumber:
		t.setPendingInt(ev.Text, func(p *Track, n int) { p.DiscNumber = n })
	case metadata.KindDiscCount:
		t.setPendingInt(ev.Text, func(p *Track, n int) { p.DiscCount = n })

	case metadata.KindMetadataStart:
		t.pending = Track{}
		t.dirty = false
	case metadata.KindMetadataEnd:
		if t.dirty && !t.pending.same(t.snap.Track) {
			t.snap.Track = t.pending
			t.snap.Track.StartedAt = t.now()
			t.snap.HasTrack = true
			t.snap.HasProgress = false
			track = t.snap.Track
			trackFns = append(trackFns, t.onTrack...)
			t.logger.Info("track changed",
				logging.String(logging.FieldComponent, "nowplaying"),
				logging.String("track", track.String()))
		}
		t.pending = Track{}
		t.dirty = false

	case metadata.KindPlayBegin, metadata.KindPlayResume:
		stateFns, state = t.setState(StatePlaying)
	case metadata.KindPlayFlush:
		stateFns, state = t.setState(StatePaused)
	case metadata.KindPlayEnd:
		stateFns, state = t.setState(StateStopped)
	case metadata.KindActiveBegin:
		t.snap.Active = true
	case metadata.KindActiveEnd:
		t.snap.Active = false
		t.snap.HasTrack = false
		t.snap.HasProgress = false
		t.snap.Track = Track{}
		stateFns, state = t.setState(StateIdle)

	case metadata.KindPlayVolume:
		vol, err := ParseVolume(ev.Text)
		if err != nil {
			t.logger.Debug("unparseable volume", logging.Error(err))
			break
		}
		t.snap.Volume = vol
		t.snap.HasVolume = true
	case metadata.KindProgress:
		prog, err := ParseProgress(ev.Text)
		if err != nil {
			t.logger.Debug("unparseable progress", logging.Error(err))
			break
		}
		t.snap.Progress = prog
		t.snap.HasProgress = true

	case metadata.KindStreamTitle:
		t.snap.StreamTitle = ev.Text
	case metadata.KindStreamName:
		t.snap.StreamName = ev.Text
	case metadata.KindUserAgent:
		t.snap.UserAgent = ev.Text
	}

	t.snap.UpdatedAt = t.now()
	t.mu.Unlock()

	for _, fn := range trackFns {
		fn(track)
	}
	for _, fn := range stateFns {
		fn(state)
	}
}

func (t *Tracker) setPending(set func(*Track)) {
	set(&t.pending)
	t.dirty = true
}

func (t *Tracker) setPendingInt(text string, set func(*Track, int)) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return
	}
	set(&t.pending, n)
	t.dirty = true
}

func (t *Tracker) setState(s PlayState) ([]func(PlayState), PlayState) {
	if t.snap.State == s {
		return nil, s
	}
	t.snap.State = s
	t.logger.Debug("play state changed",
		logging.String(logging.FieldComponent, "nowplaying"),
		logging.String("state", s.String()))
	return append(([]func(PlayState))(nil), t.onState...), s
}
