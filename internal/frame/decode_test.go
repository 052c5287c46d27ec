package frame_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tonearm/internal/frame"
)

func scanOne(t *testing.T, wire []byte) []byte {
	t.Helper()
	s := frame.NewScanner()
	s.Feed(wire)
	body, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return body
}

func TestDecodeRoundTrip(t *testing.T) {
	items := []frame.Item{
		{Type: frame.MustID("core"), Code: frame.MustID("minm"), Data: []byte("Hello")},
		{Type: frame.MustID("ssnc"), Code: frame.MustID("pbeg")},
		{Type: frame.MustID("core"), Code: frame.MustID("asal"), Data: []byte(strings.Repeat("album ", 40))},
		{Type: frame.MustID("ssnc"), Code: frame.MustID("pict"), Data: []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}},
	}
	for _, want := range items {
		got, err := frame.Decode(scanOne(t, frame.Encode(want)))
		if err != nil {
			t.Fatalf("Decode(%s/%s): %v", want.Type, want.Code, err)
		}
		if got.Type != want.Type || got.Code != want.Code {
			t.Fatalf("identifier mismatch: got %s/%s, want %s/%s", got.Type, got.Code, want.Type, want.Code)
		}
		if !bytes.Equal(got.Data, want.Data) {
			t.Fatalf("payload mismatch: got %q, want %q", got.Data, want.Data)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	got := string(frame.Encode(frame.Item{
		Type: frame.MustID("core"),
		Code: frame.MustID("minm"),
		Data: []byte("Hello"),
	}))
	want := "<item><type>636f7265</type><code>6d696e6d</code><length>5</length>\n" +
		"<data encoding=\"base64\">\nSGVsbG8=</data></item>\n"
	if got != want {
		t.Fatalf("unexpected layout:\n got %q\nwant %q", got, want)
	}
}

func TestEncodeNoPayload(t *testing.T) {
	got := string(frame.Encode(frame.Item{
		Type: frame.MustID("ssnc"),
		Code: frame.MustID("pbeg"),
	}))
	want := "<item><type>73736e63</type><code>70626567</code><length>0</length></item>\n"
	if got != want {
		t.Fatalf("unexpected layout:\n got %q\nwant %q", got, want)
	}
}

func decodeField(t *testing.T, wire string) string {
	t.Helper()
	_, err := frame.Decode(scanOne(t, []byte(wire)))
	var derr *frame.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	return derr.Field
}

func TestDecodeLengthMismatch(t *testing.T) {
	wire := "<item><type>636f7265</type><code>6d696e6d</code><length>9</length>\n" +
		"<data encoding=\"base64\">\nSGVsbG8=</data></item>\n"
	if field := decodeField(t, wire); field != "length" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeMissingPayload(t *testing.T) {
	wire := "<item><type>636f7265</type><code>6d696e6d</code><length>5</length></item>"
	if field := decodeField(t, wire); field != "length" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeBadHexIdentifier(t *testing.T) {
	wire := "<item><type>zzzzzzzz</type><code>6d696e6d</code><length>0</length></item>"
	if field := decodeField(t, wire); field != "type" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeMissingCode(t *testing.T) {
	wire := "<item><type>636f7265</type><length>0</length></item>"
	if field := decodeField(t, wire); field != "code" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeBadLength(t *testing.T) {
	wire := "<item><type>636f7265</type><code>6d696e6d</code><length>five</length></item>"
	if field := decodeField(t, wire); field != "length" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeUnsupportedEncoding(t *testing.T) {
	wire := "<item><type>636f7265</type><code>6d696e6d</code><length>5</length>" +
		"<data encoding=\"hex\">48656c6c6f</data></item>"
	if field := decodeField(t, wire); field != "data" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeBadBase64(t *testing.T) {
	wire := "<item><type>636f7265</type><code>6d696e6d</code><length>5</length>\n" +
		"<data encoding=\"base64\">\n!!!!</data></item>\n"
	if field := decodeField(t, wire); field != "data" {
		t.Fatalf("unexpected field %q", field)
	}
}

func TestDecodeIgnoresElementOrder(t *testing.T) {
	wire := "<item><length>5</length><code>6d696e6d</code><type>636f7265</type>\n" +
		"<data encoding=\"base64\">\nSGVsbG8=</data></item>\n"
	item, err := frame.Decode(scanOne(t, []byte(wire)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := string(item.Data); got != "Hello" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestIDString(t *testing.T) {
	if got := frame.MustID("core").String(); got != "core" {
		t.Fatalf("unexpected tag %q", got)
	}
	raw := frame.ID{0x00, 0x01, 0x02, 0xff}
	if got := raw.String(); got != "0x000102ff" {
		t.Fatalf("unexpected hex form %q", got)
	}
	if got := raw.Hex(); got != "000102ff" {
		t.Fatalf("unexpected wire form %q", got)
	}
}
