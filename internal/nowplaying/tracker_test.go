package nowplaying_test

import (
	"testing"
	"time"

	"tonearm/internal/frame"
	"tonearm/internal/metadata"
	"tonearm/internal/nowplaying"
)

func textEvent(t *testing.T, typ, code, text string) metadata.Event {
	t.Helper()
	return metadata.Classify(frame.Item{
		Type: frame.MustID(typ),
		Code: frame.MustID(code),
		Data: []byte(text),
	})
}

func signal(t *testing.T, code string) metadata.Event {
	t.Helper()
	return metadata.Classify(frame.Item{
		Type: frame.MustID("ssnc"),
		Code: frame.MustID(code),
	})
}

func TestTrackerCommitsOnMetadataEnd(t *testing.T) {
	tr := nowplaying.New(nil)

	var changes []nowplaying.Track
	tr.OnTrackChange(func(track nowplaying.Track) { changes = append(changes, track) })

	tr.Apply(textEvent(t, "ssnc", "mdst", "1"))
	tr.Apply(textEvent(t, "core", "minm", "Flamenco Sketches"))
	tr.Apply(textEvent(t, "core", "asar", "Miles Davis"))
	tr.Apply(textEvent(t, "core", "asal", "Kind of Blue"))

	if snap := tr.Snapshot(); snap.HasTrack {
		t.Fatal("track visible before MetadataEnd")
	}

	tr.Apply(textEvent(t, "ssnc", "mden", "1"))

	snap := tr.Snapshot()
	if !snap.HasTrack {
		t.Fatal("no track after MetadataEnd")
	}
	if snap.Track.Title != "Flamenco Sketches" || snap.Track.Artist != "Miles Davis" {
		t.Fatalf("track = %+v", snap.Track)
	}
	if snap.Track.StartedAt.IsZero() {
		t.Fatal("committed track has zero StartedAt")
	}
	if len(changes) != 1 {
		t.Fatalf("track change fired %d times, want 1", len(changes))
	}

	// Same fields again: no second commit.
	tr.Apply(textEvent(t, "ssnc", "mdst", "1"))
	tr.Apply(textEvent(t, "core", "minm", "Flamenco Sketches"))
	tr.Apply(textEvent(t, "core", "asar", "Miles Davis"))
	tr.Apply(textEvent(t, "core", "asal", "Kind of Blue"))
	tr.Apply(textEvent(t, "ssnc", "mden", "1"))
	if len(changes) != 1 {
		t.Fatalf("repeated metadata recommitted: %d changes", len(changes))
	}
}

func TestTrackerPlayState(t *testing.T) {
	tr := nowplaying.New(nil)

	var states []nowplaying.PlayState
	tr.OnStateChange(func(s nowplaying.PlayState) { states = append(states, s) })

	tr.Apply(signal(t, "abeg"))
	tr.Apply(signal(t, "pbeg"))
	tr.Apply(signal(t, "pfls"))
	tr.Apply(signal(t, "prsm"))
	tr.Apply(signal(t, "prsm")) // no transition, no callback
	tr.Apply(signal(t, "pend"))

	want := []nowplaying.PlayState{
		nowplaying.StatePlaying,
		nowplaying.StatePaused,
		nowplaying.StatePlaying,
		nowplaying.StateStopped,
	}
	if len(states) != len(want) {
		t.Fatalf("state transitions = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("transition %d = %v, want %v", i, states[i], want[i])
		}
	}

	if snap := tr.Snapshot(); !snap.Active {
		t.Fatal("session not active after abeg")
	}
	tr.Apply(signal(t, "aend"))
	snap := tr.Snapshot()
	if snap.Active || snap.HasTrack || snap.State != nowplaying.StateIdle {
		t.Fatalf("after aend: %+v", snap)
	}
}

func TestTrackerVolumeAndProgress(t *testing.T) {
	tr := nowplaying.New(nil)

	tr.Apply(textEvent(t, "ssnc", "pvol", "-15.0,-32.5,-60.0,0.0"))
	tr.Apply(textEvent(t, "ssnc", "prgr", "1000/89200/4411000"))
	tr.Apply(textEvent(t, "ssnc", "snam", "Office HomePod"))
	tr.Apply(textEvent(t, "ssnc", "snua", "AirPlay/409.16"))

	snap := tr.Snapshot()
	if !snap.HasVolume || snap.Volume.AirPlay != -15.0 {
		t.Fatalf("volume = %+v", snap.Volume)
	}
	if got := snap.Volume.Percent(); got != 50 {
		t.Fatalf("Percent() = %v, want 50", got)
	}
	if !snap.HasProgress || snap.Progress.Current != 89200 {
		t.Fatalf("progress = %+v", snap.Progress)
	}
	if got, want := snap.Progress.Elapsed(), 2*time.Second; got != want {
		t.Fatalf("Elapsed() = %v, want %v", got, want)
	}
	if got, want := snap.Progress.Duration(), 100*time.Second; got != want {
		t.Fatalf("Duration() = %v, want %v", got, want)
	}
	if snap.StreamName != "Office HomePod" || snap.UserAgent != "AirPlay/409.16" {
		t.Fatalf("session fields = %q / %q", snap.StreamName, snap.UserAgent)
	}

	// Garbage payloads leave prior values in place.
	tr.Apply(textEvent(t, "ssnc", "pvol", "loud"))
	tr.Apply(textEvent(t, "ssnc", "prgr", "almost/done"))
	snap = tr.Snapshot()
	if snap.Volume.AirPlay != -15.0 || snap.Progress.Current != 89200 {
		t.Fatalf("garbage payload clobbered state: %+v", snap)
	}
}

func TestParseVolume(t *testing.T) {
	v, err := nowplaying.ParseVolume("-144.0,-32.5,-60.0,0.0")
	if err != nil {
		t.Fatalf("ParseVolume: %v", err)
	}
	if !v.Muted() {
		t.Fatal("-144 not reported as muted")
	}
	if v.Percent() != 0 {
		t.Fatalf("muted Percent() = %v, want 0", v.Percent())
	}
	if _, err := nowplaying.ParseVolume("-15.0,-32.5"); err == nil {
		t.Fatal("short quadruple accepted")
	}
}

func TestParseProgress(t *testing.T) {
	if _, err := nowplaying.ParseProgress("1/2"); err == nil {
		t.Fatal("two-part progress accepted")
	}
	p, err := nowplaying.ParseProgress("500/100/900")
	if err != nil {
		t.Fatalf("ParseProgress: %v", err)
	}
	if p.Elapsed() != 0 {
		t.Fatalf("Elapsed() before start = %v, want 0", p.Elapsed())
	}
}

func TestTrackString(t *testing.T) {
	cases := []struct {
		track nowplaying.Track
		want  string
	}{
		{nowplaying.Track{Artist: "Nina Simone", Title: "Sinnerman"}, "Nina Simone - Sinnerman"},
		{nowplaying.Track{Title: "Sinnerman"}, "Sinnerman"},
		{nowplaying.Track{}, "(unknown track)"},
	}
	for _, c := range cases {
		if got := c.track.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}
