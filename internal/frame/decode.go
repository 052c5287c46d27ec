package frame

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
)

// ID is a four-byte frame identifier. shairport-sync transmits identifiers
// as eight hex digits; most decode to printable ASCII tags like "core" or
// "minm".
type ID [4]byte

// MustID converts a four-character tag such as "core" into an ID. It panics
// on any other length and exists for static tables and tests.
func MustID(tag string) ID {
	if len(tag) != 4 {
		panic(fmt.Sprintf("frame: tag %q is not four bytes", tag))
	}
	var id ID
	copy(id[:], tag)
	return id
}

// String renders the identifier as its ASCII tag when all four bytes are
// printable, and as 0x-prefixed hex otherwise.
func (id ID) String() string {
	for _, b := range id {
		if b < 0x20 || b > 0x7e {
			return "0x" + hex.EncodeToString(id[:])
		}
	}
	return string(id[:])
}

// Hex renders the identifier as eight lowercase hex digits, the form used on
// the wire.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

// Item is one decoded metadata frame. Data is nil when the frame carried no
// payload element and always matches the declared length otherwise.
type Item struct {
	Type ID
	Code ID
	Data []byte
}

// Decode parses a frame body as returned by Scanner.Next. Sub-elements are
// located by tag, so their order and any bytes between them are
// insignificant. Failures return a *DecodeError naming the bad sub-element;
// the surrounding frame has already been consumed by the scanner, so callers
// can skip it and carry on.
func Decode(body []byte) (Item, error) {
	var item Item

	text, ok := element(body, "type")
	if !ok {
		return Item{}, &DecodeError{Field: "type", Err: errMissingElement}
	}
	id, err := parseID(text)
	if err != nil {
		return Item{}, &DecodeError{Field: "type", Err: err}
	}
	item.Type = id

	text, ok = element(body, "code")
	if !ok {
		return Item{}, &DecodeError{Field: "code", Err: errMissingElement}
	}
	id, err = parseID(text)
	if err != nil {
		return Item{}, &DecodeError{Field: "code", Err: err}
	}
	item.Code = id

	text, ok = element(body, "length")
	if !ok {
		return Item{}, &DecodeError{Field: "length", Err: errMissingElement}
	}
	length, err := strconv.ParseUint(string(text), 10, 32)
	if err != nil {
		return Item{}, &DecodeError{Field: "length", Err: err}
	}

	payload, present, err := dataElement(body)
	if err != nil {
		return Item{}, &DecodeError{Field: "data", Err: err}
	}
	if present {
		decoded, err := base64.StdEncoding.DecodeString(string(stripSpace(payload)))
		if err != nil {
			return Item{}, &DecodeError{Field: "data", Err: err}
		}
		item.Data = decoded
	}
	if uint64(len(item.Data)) != length {
		return Item{}, decodeErrf("length", "declared %d bytes, decoded %d", length, len(item.Data))
	}
	return item, nil
}

func parseID(text []byte) (ID, error) {
	var id ID
	if len(text) != 8 {
		return id, fmt.Errorf("want 8 hex digits, got %d bytes", len(text))
	}
	if _, err := hex.Decode(id[:], text); err != nil {
		return id, err
	}
	return id, nil
}

// element returns the bytes between <name> and </name>, or ok=false when
// either marker is missing.
func element(body []byte, name string) ([]byte, bool) {
	open := "<" + name + ">"
	i := bytes.Index(body, []byte(open))
	if i < 0 {
		return nil, false
	}
	rest := body[i+len(open):]
	j := bytes.Index(rest, []byte("</"+name+">"))
	if j < 0 {
		return nil, false
	}
	return rest[:j], true
}

// dataElement locates the optional payload element. The element carries an
// encoding attribute; base64 is the only encoding shairport-sync emits and
// the only one accepted here.
func dataElement(body []byte) (payload []byte, present bool, err error) {
	i := bytes.Index(body, []byte("<data"))
	if i < 0 {
		return nil, false, nil
	}
	rest := body[i+len("<data"):]
	j := bytes.IndexByte(rest, '>')
	if j < 0 {
		return nil, true, fmt.Errorf("unterminated data element")
	}
	attr := string(bytes.TrimSpace(rest[:j]))
	if attr != `encoding="base64"` {
		return nil, true, fmt.Errorf("unsupported data encoding %q", attr)
	}
	rest = rest[j+1:]
	k := bytes.Index(rest, []byte("</data>"))
	if k < 0 {
		return nil, true, fmt.Errorf("unterminated data element")
	}
	return rest[:k], true, nil
}

// stripSpace removes the line breaks shairport-sync inserts into long
// base64 payloads, plus any stray whitespace.
func stripSpace(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		out = append(out, c)
	}
	return out
}
