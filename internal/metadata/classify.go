package metadata

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"tonearm/internal/frame"
)

// pictType is the bare "pict" namespace some senders use for artwork
// regardless of the inner code.
var pictType = frame.MustID("pict")

// Classify maps a decoded item onto its event variant. Classification is
// total: unknown identifier pairs and textual payloads that are not UTF-8
// come back as KindOther with the raw bytes preserved, so a caller never
// loses an item. The function never fails.
func Classify(item frame.Item) Event {
	if item.Type == pictType {
		return Event{Kind: KindPicture, Type: item.Type, Code: item.Code, Raw: item.Data}
	}

	kind, ok := lookup[makeKey(item.Type, item.Code)]
	if !ok {
		return other(item)
	}

	ev := Event{Kind: kind, Type: item.Type, Code: item.Code}
	switch kinds[kind].payload {
	case payloadText:
		if !utf8.Valid(item.Data) {
			return other(item)
		}
		// macOS senders emit decomposed UTF-8; normalize so "é" compares
		// equal no matter which sender produced it.
		ev.Text = norm.NFC.String(string(item.Data))
	case payloadRaw:
		ev.Raw = item.Data
	case payloadNone:
	}
	return ev
}

func other(item frame.Item) Event {
	return Event{Kind: KindOther, Type: item.Type, Code: item.Code, Raw: item.Data}
}

// SniffImage reports "jpeg", "png", or "" from the payload's magic bytes.
func SniffImage(data []byte) string {
	if len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff {
		return "jpeg"
	}
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4e && data[3] == 0x47 {
		return "png"
	}
	return ""
}
