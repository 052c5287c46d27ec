package reader

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tonearm/internal/logging"
)

const (
	defaultChannelBuffer  = 64
	defaultPollInterval   = 250 * time.Millisecond
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

type options struct {
	logger         *slog.Logger
	maxFrameBytes  int
	channelBuffer  int
	pollInterval   time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxItems       int
	budget         time.Duration
	once           bool
	metrics        *metrics
	onSkip         func(error)
}

func defaultOptions() options {
	return options{
		logger:         logging.NewNop(),
		channelBuffer:  defaultChannelBuffer,
		pollInterval:   defaultPollInterval,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
}

// Option configures a Reader.
type Option func(*options)

// WithLogger attaches a logger for skip and reopen diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxFrameBytes caps how many bytes a single frame may span.
func WithMaxFrameBytes(n int) Option {
	return func(o *options) { o.maxFrameBytes = n }
}

// WithChannelBuffer sets the event channel depth for continuous mode.
func WithChannelBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.channelBuffer = n
		}
	}
}

// WithBackoff sets the reopen backoff range. The delay starts at initial,
// doubles per failed cycle, and never exceeds max.
func WithBackoff(initial, max time.Duration) Option {
	return func(o *options) {
		if initial > 0 {
			o.initialBackoff = initial
		}
		if max > 0 {
			o.maxBackoff = max
		}
	}
}

// WithPollInterval sets how often a blocked read rechecks for cancellation
// and, for regular files, how often the tail loop looks for appended bytes.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithMaxItems caps how many events ReadAll collects. Zero means unbounded.
func WithMaxItems(n int) Option {
	return func(o *options) { o.maxItems = n }
}

// WithBudget bounds how long ReadAll runs. Zero means no time bound.
func WithBudget(d time.Duration) Option {
	return func(o *options) { o.budget = d }
}

// WithOnce makes the continuous loop end at the first end of input instead
// of tailing or reopening: the events channel closes once the source drains.
func WithOnce() Option {
	return func(o *options) { o.once = true }
}

// WithMetrics registers the reader's counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		if reg != nil {
			o.metrics = newMetrics(reg)
		}
	}
}

// WithSkipNotice installs a callback invoked with the cause each time a
// frame is dropped.
func WithSkipNotice(hook func(error)) Option {
	return func(o *options) { o.onSkip = hook }
}
