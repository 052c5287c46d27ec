package reader

import "github.com/prometheus/client_golang/prometheus"

// metrics groups the reader's Prometheus counters. A nil *metrics is valid
// and records nothing, so instrumentation stays optional.
type metrics struct {
	frames  prometheus.Counter
	bytes   prometheus.Counter
	skipped prometheus.Counter
	reopens prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "reader",
			Name:      "frames_total",
			Help:      "Frames decoded into events.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "reader",
			Name:      "bytes_total",
			Help:      "Bytes consumed from the source.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "reader",
			Name:      "skipped_frames_total",
			Help:      "Frames dropped as malformed or oversized.",
		}),
		reopens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "reader",
			Name:      "reopens_total",
			Help:      "Times the source was reopened after a disconnect.",
		}),
	}
	reg.MustRegister(m.frames, m.bytes, m.skipped, m.reopens)
	return m
}

func (m *metrics) addFrame() {
	if m != nil {
		m.frames.Inc()
	}
}

func (m *metrics) addBytes(n int) {
	if m != nil {
		m.bytes.Add(float64(n))
	}
}

func (m *metrics) addSkip() {
	if m != nil {
		m.skipped.Inc()
	}
}

func (m *metrics) addReopen() {
	if m != nil {
		m.reopens.Inc()
	}
}
