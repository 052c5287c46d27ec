package metadata

import (
	"fmt"
	"unicode/utf8"

	"tonearm/internal/frame"
)

// Kind identifies one event variant in the closed set tonearm understands.
type Kind uint8

const (
	// KindOther is the catch-all for identifier pairs outside the mapping
	// table and for textual payloads that are not valid UTF-8.
	KindOther Kind = iota

	// Song metadata from the "core" namespace.
	KindTitle
	KindArtist
	KindAlbum
	KindGenre
	KindYear
	KindComment
	KindComposer
	KindCopyright
	KindTrackNumber
	KindTrackCount
	KindDiscNumber
	KindDiscCount
	KindTrackTime
	KindSampleRate
	KindItemID
	KindMediaKind
	KindDataKind
	KindPersistentID
	KindSortTitle
	KindSortArtist
	KindSortAlbum
	KindSortComposer
	KindUserRating
	KindDataURL
	KindDateAdded
	KindDateModified
	KindTimeStamp
	KindSongKind
	KindCapabilities
	KindMediaPlayer

	// Playback signals and session annotations from the "ssnc" namespace.
	KindPlayBegin
	KindPlayEnd
	KindPlayFlush
	KindPlayResume
	KindActiveBegin
	KindActiveEnd
	KindPlayVolume
	KindStreamTitle
	KindStreamName
	KindUserAgent
	KindProgress
	KindMetadataStart
	KindMetadataEnd

	// Embedded artwork, from either namespace.
	KindPicture
)

// Event is one classified metadata item. Textual kinds carry Text, raw
// kinds (picture, media player, other) carry Raw, and pure signals carry
// neither. Events are immutable after classification.
type Event struct {
	Kind Kind
	Type frame.ID
	Code frame.ID
	Text string
	Raw  []byte
}

// String returns the compact variant name, e.g. "PlayBegin".
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "Other"
}

// Label returns the human-readable variant name used in console output,
// e.g. "Play Begin".
func (k Kind) Label() string {
	if info, ok := kinds[k]; ok {
		return info.label
	}
	return "Other"
}

// Signal reports whether the kind carries no payload at all.
func (k Kind) Signal() bool {
	if info, ok := kinds[k]; ok {
		return info.payload == payloadNone
	}
	return false
}

// String renders the event the way the watch command prints it.
func (e Event) String() string {
	switch {
	case e.Kind == KindOther:
		return e.otherString()
	case e.Kind == KindPicture:
		if format := SniffImage(e.Raw); format != "" {
			return fmt.Sprintf("%s: %d bytes (%s)", e.Kind.Label(), len(e.Raw), format)
		}
		return fmt.Sprintf("%s: %d bytes", e.Kind.Label(), len(e.Raw))
	case e.Kind == KindMediaPlayer:
		return fmt.Sprintf("%s: %d bytes (hex %x)", e.Kind.Label(), len(e.Raw), e.Raw)
	case e.Kind.Signal():
		return e.Kind.Label()
	default:
		return fmt.Sprintf("%s: %s", e.Kind.Label(), e.Text)
	}
}

func (e Event) otherString() string {
	prefix := fmt.Sprintf("Other [%s:%s]", e.Type, e.Code)
	switch {
	case len(e.Raw) == 0:
		return prefix + ": (no data)"
	case utf8.Valid(e.Raw):
		return fmt.Sprintf("%s: %s", prefix, e.Raw)
	default:
		if format := SniffImage(e.Raw); format != "" {
			return fmt.Sprintf("%s: %s image, %d bytes", prefix, format, len(e.Raw))
		}
		n := min(len(e.Raw), 8)
		return fmt.Sprintf("%s: %d bytes (hex %x...)", prefix, len(e.Raw), e.Raw[:n])
	}
}
