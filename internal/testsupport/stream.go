package testsupport

import (
	"bytes"
	"testing"

	"tonearm/internal/frame"
)

// StreamBuilder accumulates encoded frames for feeding a scanner or reader.
type StreamBuilder struct {
	t   testing.TB
	buf bytes.Buffer
}

// NewStream returns an empty stream builder.
func NewStream(t testing.TB) *StreamBuilder {
	t.Helper()
	return &StreamBuilder{t: t}
}

// Text appends a frame whose payload is the given text.
func (s *StreamBuilder) Text(typ, code, text string) *StreamBuilder {
	return s.Raw(typ, code, []byte(text))
}

// Signal appends a payload-free ssnc frame.
func (s *StreamBuilder) Signal(code string) *StreamBuilder {
	return s.Raw("ssnc", code, nil)
}

// Raw appends a frame with an arbitrary payload.
func (s *StreamBuilder) Raw(typ, code string, data []byte) *StreamBuilder {
	s.t.Helper()
	s.buf.Write(frame.Encode(frame.Item{
		Type: frame.MustID(typ),
		Code: frame.MustID(code),
		Data: data,
	}))
	return s
}

// Noise appends bytes that are not part of any frame.
func (s *StreamBuilder) Noise(p []byte) *StreamBuilder {
	s.buf.Write(p)
	return s
}

// Bytes returns the accumulated stream.
func (s *StreamBuilder) Bytes() []byte {
	return s.buf.Bytes()
}
