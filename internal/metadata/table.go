package metadata

import (
	"fmt"

	"tonearm/internal/frame"
)

type payloadClass uint8

const (
	payloadNone payloadClass = iota
	payloadText
	payloadRaw
)

type kindInfo struct {
	name    string
	label   string
	payload payloadClass
}

// kinds names every variant and declares how its payload is interpreted.
var kinds = map[Kind]kindInfo{
	KindOther:         {"Other", "Other", payloadRaw},
	KindTitle:         {"Title", "Title", payloadText},
	KindArtist:        {"Artist", "Artist", payloadText},
	KindAlbum:         {"Album", "Album", payloadText},
	KindGenre:         {"Genre", "Genre", payloadText},
	KindYear:          {"Year", "Year", payloadText},
	KindComment:       {"Comment", "Comment", payloadText},
	KindComposer:      {"Composer", "Composer", payloadText},
	KindCopyright:     {"Copyright", "Copyright", payloadText},
	KindTrackNumber:   {"TrackNumber", "Track Number", payloadText},
	KindTrackCount:    {"TrackCount", "Track Count", payloadText},
	KindDiscNumber:    {"DiscNumber", "Disc Number", payloadText},
	KindDiscCount:     {"DiscCount", "Disc Count", payloadText},
	KindTrackTime:     {"TrackTime", "Track Time", payloadText},
	KindSampleRate:    {"SampleRate", "Sample Rate", payloadText},
	KindItemID:        {"ItemID", "Item ID", payloadText},
	KindMediaKind:     {"MediaKind", "Media Kind", payloadText},
	KindDataKind:      {"DataKind", "Data Kind", payloadText},
	KindPersistentID:  {"PersistentID", "Persistent ID", payloadText},
	KindSortTitle:     {"SortTitle", "Sort Title", payloadText},
	KindSortArtist:    {"SortArtist", "Sort Artist", payloadText},
	KindSortAlbum:     {"SortAlbum", "Sort Album", payloadText},
	KindSortComposer:  {"SortComposer", "Sort Composer", payloadText},
	KindUserRating:    {"UserRating", "User Rating", payloadText},
	KindDataURL:       {"DataURL", "Data URL", payloadText},
	KindDateAdded:     {"DateAdded", "Date Added", payloadText},
	KindDateModified:  {"DateModified", "Date Modified", payloadText},
	KindTimeStamp:     {"TimeStamp", "Time Stamp", payloadText},
	KindSongKind:      {"SongKind", "Song Kind", payloadText},
	KindCapabilities:  {"Capabilities", "Capabilities", payloadText},
	KindMediaPlayer:   {"MediaPlayer", "Media Player", payloadRaw},
	KindPlayBegin:     {"PlayBegin", "Play Begin", payloadNone},
	KindPlayEnd:       {"PlayEnd", "Play End", payloadNone},
	KindPlayFlush:     {"PlayFlush", "Play Flush", payloadNone},
	KindPlayResume:    {"PlayResume", "Play Resume", payloadNone},
	KindActiveBegin:   {"ActiveBegin", "Active Begin", payloadNone},
	KindActiveEnd:     {"ActiveEnd", "Active End", payloadNone},
	KindPlayVolume:    {"PlayVolume", "Play Volume", payloadText},
	KindStreamTitle:   {"StreamTitle", "Stream Title", payloadText},
	KindStreamName:    {"StreamName", "Stream Name", payloadText},
	KindUserAgent:     {"UserAgent", "User Agent", payloadText},
	KindProgress:      {"Progress", "Progress", payloadText},
	KindMetadataStart: {"MetadataStart", "Metadata Start", payloadText},
	KindMetadataEnd:   {"MetadataEnd", "Metadata End", payloadText},
	KindPicture:       {"Picture", "Picture", payloadRaw},
}

type mapping struct {
	typ  string
	code string
	kind Kind
}

// mappings is the wire vocabulary: DAAP song tags under "core" and
// shairport-sync playback signals under "ssnc".
var mappings = []mapping{
	{"core", "minm", KindTitle},
	{"core", "asar", KindArtist},
	{"core", "asal", KindAlbum},
	{"core", "asgn", KindGenre},
	{"core", "asyr", KindYear},
	{"core", "ascm", KindComment},
	{"core", "asco", KindComposer},
	{"core", "ascp", KindCopyright},
	{"core", "astn", KindTrackNumber},
	{"core", "astc", KindTrackCount},
	{"core", "asdn", KindDiscNumber},
	{"core", "asdc", KindDiscCount},
	{"core", "asdt", KindTrackTime},
	{"core", "assr", KindSampleRate},
	{"core", "miid", KindItemID},
	{"core", "mikd", KindMediaKind},
	{"core", "asky", KindDataKind},
	{"core", "aspl", KindPersistentID},
	{"core", "asst", KindSortTitle},
	{"core", "assa", KindSortArtist},
	{"core", "assu", KindSortAlbum},
	{"core", "assc", KindSortComposer},
	{"core", "asur", KindUserRating},
	{"core", "asul", KindDataURL},
	{"core", "asda", KindDateAdded},
	{"core", "asdm", KindDateModified},
	{"core", "astm", KindTimeStamp},
	{"core", "askd", KindSongKind},
	{"core", "caps", KindCapabilities},
	{"core", "mper", KindMediaPlayer},
	{"core", "PICT", KindPicture},

	{"ssnc", "pbeg", KindPlayBegin},
	{"ssnc", "pend", KindPlayEnd},
	{"ssnc", "pfls", KindPlayFlush},
	{"ssnc", "prsm", KindPlayResume},
	{"ssnc", "abeg", KindActiveBegin},
	{"ssnc", "aend", KindActiveEnd},
	{"ssnc", "pvol", KindPlayVolume},
	{"ssnc", "stal", KindStreamTitle},
	{"ssnc", "snam", KindStreamName},
	{"ssnc", "snua", KindUserAgent},
	{"ssnc", "prgr", KindProgress},
	{"ssnc", "mdst", KindMetadataStart},
	{"ssnc", "mden", KindMetadataEnd},
	{"ssnc", "pict", KindPicture},
}

type pairKey [8]byte

func makeKey(typ, code frame.ID) pairKey {
	var k pairKey
	copy(k[:4], typ[:])
	copy(k[4:], code[:])
	return k
}

var lookup = buildLookup()

func buildLookup() map[pairKey]Kind {
	table := make(map[pairKey]Kind, len(mappings))
	for _, m := range mappings {
		key := makeKey(frame.MustID(m.typ), frame.MustID(m.code))
		if existing, dup := table[key]; dup {
			panic(fmt.Sprintf("metadata: duplicate mapping %s/%s (%s vs %s)",
				m.typ, m.code, existing, m.kind))
		}
		table[key] = m.kind
	}
	return table
}
