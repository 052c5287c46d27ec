package metadata_test

import (
	"bytes"
	"testing"

	"tonearm/internal/frame"
	"tonearm/internal/metadata"
)

func item(typ, code string, data []byte) frame.Item {
	return frame.Item{Type: frame.MustID(typ), Code: frame.MustID(code), Data: data}
}

func TestClassifyTitle(t *testing.T) {
	ev := metadata.Classify(item("core", "minm", []byte("Hello")))
	if ev.Kind != metadata.KindTitle {
		t.Fatalf("unexpected kind %s", ev.Kind)
	}
	if ev.Text != "Hello" {
		t.Fatalf("unexpected text %q", ev.Text)
	}
	if ev.Raw != nil {
		t.Fatalf("textual event must not carry raw bytes, got %d", len(ev.Raw))
	}
}

func TestClassifyPlayBeginSignal(t *testing.T) {
	ev := metadata.Classify(item("ssnc", "pbeg", nil))
	if ev.Kind != metadata.KindPlayBegin {
		t.Fatalf("unexpected kind %s", ev.Kind)
	}
	if !ev.Kind.Signal() {
		t.Fatal("PlayBegin must be a signal kind")
	}
	if ev.Text != "" || ev.Raw != nil {
		t.Fatal("signal event must carry no payload")
	}
}

func TestClassifyNormalizesDecomposedText(t *testing.T) {
	// "é" as e + combining acute, the form macOS senders emit.
	ev := metadata.Classify(item("core", "asar", []byte("Beyoncé")))
	if ev.Text != "Beyoncé" {
		t.Fatalf("expected NFC-normalized text, got %q", ev.Text)
	}
}

func TestClassifyUnknownPairIsOther(t *testing.T) {
	payload := []byte{0x01, 0x02}
	ev := metadata.Classify(item("core", "zzzz", payload))
	if ev.Kind != metadata.KindOther {
		t.Fatalf("unexpected kind %s", ev.Kind)
	}
	if !bytes.Equal(ev.Raw, payload) {
		t.Fatalf("raw payload not preserved: %v", ev.Raw)
	}
	if got := ev.Type.String(); got != "core" {
		t.Fatalf("type identifier lost: %q", got)
	}
	if got := ev.Code.String(); got != "zzzz" {
		t.Fatalf("code identifier lost: %q", got)
	}
}

func TestClassifyInvalidUTF8DegradesToOther(t *testing.T) {
	payload := []byte{0xff, 0xfe, 0x41}
	ev := metadata.Classify(item("core", "minm", payload))
	if ev.Kind != metadata.KindOther {
		t.Fatalf("invalid UTF-8 must degrade to Other, got %s", ev.Kind)
	}
	if !bytes.Equal(ev.Raw, payload) {
		t.Fatal("raw payload not preserved on degrade")
	}
}

func TestClassifyPictureVariants(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0}
	for _, tc := range []struct {
		typ, code string
	}{
		{"ssnc", "pict"},
		{"core", "PICT"},
		{"pict", "data"},
	} {
		ev := metadata.Classify(item(tc.typ, tc.code, jpeg))
		if ev.Kind != metadata.KindPicture {
			t.Fatalf("%s/%s: expected Picture, got %s", tc.typ, tc.code, ev.Kind)
		}
		if !bytes.Equal(ev.Raw, jpeg) {
			t.Fatalf("%s/%s: payload not preserved", tc.typ, tc.code)
		}
	}
}

func TestSniffImage(t *testing.T) {
	if got := metadata.SniffImage([]byte{0xff, 0xd8, 0xff, 0xe0}); got != "jpeg" {
		t.Fatalf("jpeg sniff: %q", got)
	}
	if got := metadata.SniffImage([]byte{0x89, 0x50, 0x4e, 0x47}); got != "png" {
		t.Fatalf("png sniff: %q", got)
	}
	if got := metadata.SniffImage([]byte("not an image")); got != "" {
		t.Fatalf("garbage sniff: %q", got)
	}
}

func TestEventString(t *testing.T) {
	cases := []struct {
		ev   metadata.Event
		want string
	}{
		{metadata.Classify(item("core", "minm", []byte("Hello"))), "Title: Hello"},
		{metadata.Classify(item("ssnc", "pbeg", nil)), "Play Begin"},
		{metadata.Classify(item("ssnc", "pict", []byte{0xff, 0xd8, 0xff, 0x00})), "Picture: 4 bytes (jpeg)"},
		{metadata.Classify(item("core", "zzzz", nil)), "Other [core:zzzz]: (no data)"},
		{metadata.Classify(item("core", "zzzz", []byte("text"))), "Other [core:zzzz]: text"},
	}
	for _, tc := range cases {
		if got := tc.ev.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}
