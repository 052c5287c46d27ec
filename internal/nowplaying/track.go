package nowplaying

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Track is one committed song snapshot. Numeric fields stay zero when the
// sender omits them or ships them in a form that does not parse as decimal
// text.
type Track struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Composer    string `json:"composer,omitempty"`
	Year        int    `json:"year,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	TrackCount  int    `json:"track_count,omitempty"`
	DiscNumber  int    `json:"disc_number,omitempty"`
	DiscCount   int    `json:"disc_count,omitempty"`

	StartedAt time.Time `json:"started_at,omitzero"`
}

// IsZero reports whether no field of the track was ever set.
func (t Track) IsZero() bool {
	t.StartedAt = time.Time{}
	return t == Track{}
}

// same compares all song fields, ignoring when the track started.
func (t Track) same(other Track) bool {
	t.StartedAt = time.Time{}
	other.StartedAt = time.Time{}
	return t == other
}

// String renders "Artist - Title" with whatever halves are known.
func (t Track) String() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	case t.Artist != "":
		return t.Artist
	default:
		return "(unknown track)"
	}
}

// Volume is shairport-sync's four-part volume report. AirPlay is the dB
// attenuation the sender requested, in [-30, 0] with -144 meaning mute;
// Current sits between Low and High, the device's usable dB range.
type Volume struct {
	AirPlay float64 `json:"airplay_db"`
	Current float64 `json:"current_db"`
	Low     float64 `json:"low_db"`
	High    float64 `json:"high_db"`
}

const muteSentinel = -144

// Muted reports whether the sender asked for full mute.
func (v Volume) Muted() bool {
	return v.AirPlay <= muteSentinel
}

// Percent maps the AirPlay attenuation onto 0..100.
func (v Volume) Percent() float64 {
	if v.Muted() {
		return 0
	}
	p := (v.AirPlay + 30) / 30 * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ParseVolume parses the "airplay,current,low,high" dB quadruple carried by
// a PlayVolume event.
func ParseVolume(text string) (Volume, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return Volume{}, fmt.Errorf("volume %q: want 4 comma-separated values, got %d", text, len(parts))
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Volume{}, fmt.Errorf("volume %q: field %d: %w", text, i+1, err)
		}
		vals[i] = v
	}
	return Volume{AirPlay: vals[0], Current: vals[1], Low: vals[2], High: vals[3]}, nil
}

// sampleRate is the RTP clock shairport-sync uses for progress timestamps.
const sampleRate = 44100

// Progress is the "start/current/end" RTP timestamp triple carried by a
// Progress event.
type Progress struct {
	Start   uint64 `json:"start"`
	Current uint64 `json:"current"`
	End     uint64 `json:"end"`
}

// Elapsed converts the played span to wall time at the RTP clock rate.
func (p Progress) Elapsed() time.Duration {
	if p.Current <= p.Start {
		return 0
	}
	return frames(p.Current - p.Start)
}

// Duration converts the whole track span to wall time.
func (p Progress) Duration() time.Duration {
	if p.End <= p.Start {
		return 0
	}
	return frames(p.End - p.Start)
}

func frames(n uint64) time.Duration {
	return time.Duration(n) * time.Second / sampleRate
}

// ParseProgress parses the slash-separated RTP triple.
func ParseProgress(text string) (Progress, error) {
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return Progress{}, fmt.Errorf("progress %q: want start/current/end", text)
	}
	vals := make([]uint64, 3)
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return Progress{}, fmt.Errorf("progress %q: field %d: %w", text, i+1, err)
		}
		vals[i] = v
	}
	return Progress{Start: vals[0], Current: vals[1], End: vals[2]}, nil
}
