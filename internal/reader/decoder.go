package reader

import (
	"errors"
	"io"

	"tonearm/internal/frame"
	"tonearm/internal/metadata"
)

// readChunk is the size of a single read against the source. Frames are
// usually well under this except artwork payloads, which span several reads.
const readChunk = 32 << 10

// Decoder turns one byte stream into a sequence of classified events.
// Malformed frames and oversized frames are skipped in place so one corrupt
// item never ends the stream.
type Decoder struct {
	src     io.Reader
	scanner *frame.Scanner
	chunk   []byte
	onSkip  func(error)
	skipped uint64
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxFrame caps how many bytes a single frame may span before it is
// dropped. Zero keeps the scanner default.
func WithMaxFrame(limit int) DecoderOption {
	return func(d *Decoder) {
		if limit > 0 {
			d.scanner = frame.NewScanner(frame.WithMaxFrameBytes(limit))
		}
	}
}

// WithSkipHook installs a callback invoked with the cause each time a frame
// is skipped.
func WithSkipHook(hook func(error)) DecoderOption {
	return func(d *Decoder) { d.onSkip = hook }
}

// NewDecoder wraps src. The decoder owns its scan buffer; src is read in
// chunks only when the buffered bytes cannot complete a frame.
func NewDecoder(src io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		src:     src,
		scanner: frame.NewScanner(),
		chunk:   make([]byte, readChunk),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next event from the stream. It reads from the underlying
// source only when the buffered bytes run out, so event boundaries never
// depend on how the source chunks its writes. At end of input it returns
// io.EOF; any other error comes from the source.
func (d *Decoder) Next() (metadata.Event, error) {
	for {
		body, err := d.scanner.Next()
		switch {
		case err == nil:
			item, derr := frame.Decode(body)
			if derr != nil {
				d.skip(derr)
				continue
			}
			return metadata.Classify(item), nil
		case errors.Is(err, frame.ErrFrameTooLarge):
			d.skip(err)
		case errors.Is(err, frame.ErrNeedMore):
			n, rerr := d.src.Read(d.chunk)
			if n > 0 {
				d.scanner.Feed(d.chunk[:n])
				continue
			}
			if rerr == nil {
				// A reader returning (0, nil) is out of contract;
				// retrying is the least bad response.
				continue
			}
			return metadata.Event{}, rerr
		default:
			return metadata.Event{}, err
		}
	}
}

// Reset swaps the decoder onto a new source and discards any partial frame
// buffered from the previous one.
func (d *Decoder) Reset(src io.Reader) {
	d.src = src
	d.scanner.Reset()
}

// Skipped reports how many frames were dropped as malformed or oversized.
func (d *Decoder) Skipped() uint64 {
	return d.skipped
}

func (d *Decoder) skip(err error) {
	d.skipped++
	if d.onSkip != nil {
		d.onSkip(err)
	}
}
