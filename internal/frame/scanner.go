package frame

import "bytes"

var (
	openMarker  = []byte("<item>")
	closeMarker = []byte("</item>")
)

// DefaultMaxFrameBytes bounds how far the scanner looks ahead for a closing
// marker before giving up on an opening one. Artwork frames can reach a few
// megabytes of base64, so the bound is generous.
const DefaultMaxFrameBytes = 8 << 20

// Scanner splits a metadata byte stream into frame bodies. Callers feed raw
// reads in whatever chunks the source delivers and drain completed frames
// with Next; the scanner buffers partial frames across feeds, so the split
// points of the input never affect the output. Bytes outside item markers
// are discarded. A Scanner is not safe for concurrent use.
type Scanner struct {
	buf []byte
	pos int
	max int
}

// ScannerOption adjusts scanner behavior.
type ScannerOption func(*Scanner)

// WithMaxFrameBytes overrides the lookahead bound. Values below one are
// ignored.
func WithMaxFrameBytes(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.max = n
		}
	}
}

// NewScanner returns a scanner with an empty buffer.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{max: DefaultMaxFrameBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed appends raw bytes to the scan buffer. Already consumed bytes are
// compacted away first, so the buffer only grows with unconsumed input.
func (s *Scanner) Feed(p []byte) {
	if s.pos > 0 {
		n := copy(s.buf, s.buf[s.pos:])
		s.buf = s.buf[:n]
		s.pos = 0
	}
	s.buf = append(s.buf, p...)
}

// Next returns the body of the next complete frame: the bytes between an
// <item> marker and its matching </item>. The returned slice is a copy and
// stays valid across further Feed and Next calls.
//
// Next returns ErrNeedMore when the buffer holds no complete frame yet and
// ErrFrameTooLarge when an opening marker ran past the lookahead bound
// without closing; in the latter case the marker is dropped and the next
// call rescans the bytes after it. Multiple buffered frames drain one per
// call.
func (s *Scanner) Next() ([]byte, error) {
	rel := bytes.Index(s.buf[s.pos:], openMarker)
	if rel < 0 {
		// No opening marker. Drop the scanned noise but keep a tail short
		// enough to be a marker split across reads.
		if keep := len(s.buf) - (len(openMarker) - 1); keep > s.pos {
			s.pos = keep
		}
		return nil, ErrNeedMore
	}
	open := s.pos + rel
	body := open + len(openMarker)
	rel = bytes.Index(s.buf[body:], closeMarker)
	if rel < 0 {
		if len(s.buf)-body > s.max {
			s.pos = body
			return nil, ErrFrameTooLarge
		}
		s.pos = open
		return nil, ErrNeedMore
	}
	end := body + rel
	out := make([]byte, end-body)
	copy(out, s.buf[body:end])
	s.pos = end + len(closeMarker)
	return out, nil
}

// Buffered reports how many unconsumed bytes the scanner holds.
func (s *Scanner) Buffered() int {
	return len(s.buf) - s.pos
}

// Reset drops all buffered state. The stream driver calls it when a source
// is reopened so a frame cut off by the disconnect cannot leak into the new
// stream.
func (s *Scanner) Reset() {
	s.buf = s.buf[:0]
	s.pos = 0
}
