package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"tonearm/internal/logging"
	"tonearm/internal/metadata"
)

// State describes where the continuous loop currently is.
type State uint8

const (
	StateIdle State = iota
	StateOpening
	StateReading
	StateReopening
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateReading:
		return "reading"
	case StateReopening:
		return "reopening"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of reader progress.
type Stats struct {
	State   State  `json:"state"`
	Frames  uint64 `json:"frames"`
	Skipped uint64 `json:"skipped"`
	Reopens uint64 `json:"reopens"`
}

// ErrAlreadyRunning is returned by Start when the reader is live.
var ErrAlreadyRunning = errors.New("reader already running")

// Reader consumes metadata from one source path.
type Reader struct {
	path string
	opts options

	events chan metadata.Event

	state   atomic.Uint32
	frames  atomic.Uint64
	skipped atomic.Uint64
	reopens atomic.Uint64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds a Reader for path. Pass StdinPath to read standard input.
func New(path string, opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reader{
		path:   path,
		opts:   o,
		events: make(chan metadata.Event, o.channelBuffer),
	}
}

// Path reports the source this reader watches.
func (r *Reader) Path() string {
	return r.path
}

// ReadAll drains the source once and returns the events in stream order.
// It stops at end of input, at the item cap, or when the time budget runs
// out, whichever comes first; the budgeted cases return what was collected
// so far without error.
func (r *Reader) ReadAll(ctx context.Context) ([]metadata.Event, error) {
	if r.opts.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.budget)
		defer cancel()
	}
	src, err := openSource(r.path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dec := r.newDecoder(ctx, src)
	var events []metadata.Event
	for {
		ev, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return events, nil
			}
			return events, fmt.Errorf("read %s: %w", r.path, err)
		}
		r.frames.Add(1)
		r.opts.metrics.addFrame()
		events = append(events, ev)
		if r.opts.maxItems > 0 && len(events) >= r.opts.maxItems {
			return events, nil
		}
	}
}

// Start launches the continuous loop. Events arrive on Events until Stop is
// called or the parent context ends; the channel is closed when the loop
// exits.
func (r *Reader) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.running = true
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(runCtx)
	return nil
}

// Events returns the channel Start feeds. Reading it before Start is safe.
func (r *Reader) Events() <-chan metadata.Event {
	return r.events
}

// Stop cancels the loop and waits for it to finish. Safe to call more than
// once.
func (r *Reader) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// Stats snapshots loop state and counters.
func (r *Reader) Stats() Stats {
	return Stats{
		State:   State(r.state.Load()),
		Frames:  r.frames.Load(),
		Skipped: r.skipped.Load(),
		Reopens: r.reopens.Load(),
	}
}

func (r *Reader) setState(s State) {
	r.state.Store(uint32(s))
}

// loop opens, consumes, and reopens the source until cancellation. Pipe
// disconnects trigger a reopen with doubling backoff; stdin and fatal open
// errors on regular files end the loop.
func (r *Reader) loop(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.events)
	defer r.setState(StateStopped)

	backoff := r.opts.initialBackoff
	for {
		r.setState(StateOpening)
		src, err := openSource(r.path)
		if err != nil {
			if r.opts.once {
				r.opts.logger.Error("source unavailable",
					logging.String("path", r.path),
					logging.Error(err))
				return
			}
			r.opts.logger.Warn("source unavailable, retrying",
				logging.String("path", r.path),
				logging.Duration("backoff", backoff),
				logging.Error(err))
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, r.opts.maxBackoff)
			continue
		}
		r.setState(StateReading)
		read, done := r.consume(ctx, src)
		src.Close()
		if done || src.kind == kindStdin {
			return
		}
		if read {
			backoff = r.opts.initialBackoff
		}
		r.setState(StateReopening)
		r.reopens.Add(1)
		r.opts.metrics.addReopen()
		r.opts.logger.Debug("source disconnected, reopening",
			logging.String("path", r.path),
			logging.Duration("backoff", backoff))
		if !sleepCtx(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, r.opts.maxBackoff)
	}
}

// consume decodes events from src until disconnect or cancellation. It
// reports whether any frame was decoded (which resets the backoff) and
// whether the loop should end.
func (r *Reader) consume(ctx context.Context, src *source) (read, done bool) {
	dec := r.newDecoder(ctx, src)
	for {
		ev, err := dec.Next()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return read, true
			case errors.Is(err, io.EOF):
				if r.opts.once {
					return read, true
				}
				if src.kind == kindFile {
					// Tail semantics: keep the handle and any
					// partial frame, wait for appended bytes.
					if !sleepCtx(ctx, r.opts.pollInterval) {
						return read, true
					}
					continue
				}
				return read, false
			default:
				r.opts.logger.Warn("source read failed",
					logging.String("path", r.path),
					logging.Error(err))
				return read, false
			}
		}
		read = true
		r.frames.Add(1)
		r.opts.metrics.addFrame()
		select {
		case r.events <- ev:
		case <-ctx.Done():
			return read, true
		}
	}
}

func (r *Reader) newDecoder(ctx context.Context, src *source) *Decoder {
	var in io.Reader = newDeadlineReader(ctx, src.file, r.opts.pollInterval)
	if r.opts.metrics != nil {
		in = &countingReader{r: in, metrics: r.opts.metrics}
	}
	decOpts := []DecoderOption{
		WithSkipHook(func(err error) {
			r.skipped.Add(1)
			r.opts.metrics.addSkip()
			r.opts.logger.Debug("frame skipped",
				logging.String("path", r.path),
				logging.Error(err))
			if r.opts.onSkip != nil {
				r.opts.onSkip(err)
			}
		}),
	}
	if r.opts.maxFrameBytes > 0 {
		decOpts = append(decOpts, WithMaxFrame(r.opts.maxFrameBytes))
	}
	return NewDecoder(in, decOpts...)
}

type countingReader struct {
	r       io.Reader
	metrics *metrics
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.metrics.addBytes(n)
	return n, err
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
