package daemon

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"tonearm/internal/artwork"
	"tonearm/internal/logging"
	"tonearm/internal/metadata"
	"tonearm/internal/nowplaying"
)

type dispatchMetrics struct {
	events     prometheus.Counter
	sinkErrors *prometheus.CounterVec
	tracks     prometheus.Counter
}

func newDispatchMetrics(reg prometheus.Registerer) *dispatchMetrics {
	m := &dispatchMetrics{
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "dispatcher",
			Name:      "events_total",
			Help:      "Events dispatched to consumers.",
		}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "dispatcher",
			Name:      "sink_errors_total",
			Help:      "Consumer failures, by sink.",
		}, []string{"sink"}),
		tracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tonearm",
			Subsystem: "dispatcher",
			Name:      "track_changes_total",
			Help:      "Committed track changes.",
		}),
	}
	reg.MustRegister(m.events, m.sinkErrors, m.tracks)
	return m
}

// registerTrackerHooks attaches the consumers that react to tracker-derived
// changes rather than raw events. The hooks run on the dispatcher goroutine.
func (d *Daemon) registerTrackerHooks() {
	d.tracker.OnTrackChange(func(track nowplaying.Track) {
		d.metrics.tracks.Inc()
		if d.store != nil {
			if _, err := d.store.RecordPlay(d.runCtx(), track); err != nil {
				d.sinkError("history", err)
			}
		}
		if err := d.notifier.NotifyTrackStarted(d.runCtx(), track); err != nil {
			d.sinkError("notifications", err)
		}
	})

	d.tracker.OnStateChange(func(state nowplaying.PlayState) {
		snap := d.tracker.Snapshot()
		var err error
		switch state {
		case nowplaying.StatePlaying:
			err = d.notifier.NotifyPlaybackStarted(d.runCtx(), snap.StreamName)
		case nowplaying.StateStopped:
			err = d.notifier.NotifyPlaybackStopped(d.runCtx(), snap.StreamName)
		}
		if err != nil {
			d.sinkError("notifications", err)
		}
	})
}

// dispatch drains the reader channel until it closes. Event order is the
// frame order in the source; every consumer sees events in that order.
func (d *Daemon) dispatch(ctx context.Context) {
	for ev := range d.stream.Events() {
		d.metrics.events.Inc()
		d.apply(ctx, ev)
	}
}

func (d *Daemon) apply(ctx context.Context, ev metadata.Event) {
	// Tracker first: hooks registered on it handle history rows and
	// track notifications.
	d.tracker.Apply(ev)

	switch ev.Kind {
	case metadata.KindPicture:
		if d.exporter != nil {
			if _, err := d.exporter.Save(ev.Raw); err != nil && !errors.Is(err, artwork.ErrEmptyPayload) {
				d.sinkError("artwork", err)
			}
		}
	case metadata.KindActiveBegin:
		if d.store != nil {
			snap := d.tracker.Snapshot()
			if _, err := d.store.BeginSession(ctx, snap.StreamName, snap.UserAgent); err != nil {
				d.sinkError("history", err)
			}
		}
	case metadata.KindActiveEnd:
		if d.store != nil {
			if err := d.store.EndSession(ctx); err != nil {
				d.sinkError("history", err)
			}
		}
	case metadata.KindStreamName, metadata.KindUserAgent:
		// Announced after ActiveBegin, so backfill the session row.
		if d.store != nil {
			snap := d.tracker.Snapshot()
			if err := d.store.SetSessionInfo(ctx, snap.StreamName, snap.UserAgent); err != nil {
				d.sinkError("history", err)
			}
		}
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ev); err != nil {
			d.sinkError("nats", err)
		}
	}
}

func (d *Daemon) sinkError(sink string, err error) {
	d.metrics.sinkErrors.WithLabelValues(sink).Inc()
	d.logger.Warn("consumer failed",
		logging.String(logging.FieldComponent, "dispatcher"),
		logging.String("sink", sink),
		logging.Error(err))

	// A failing notifier must not notify about itself.
	if sink == "notifications" {
		return
	}
	if err := d.notifier.NotifyError(d.runCtx(), err, sink); err != nil {
		d.metrics.sinkErrors.WithLabelValues("notifications").Inc()
		d.logger.Warn("error notification failed",
			logging.String(logging.FieldComponent, "dispatcher"),
			logging.Error(err))
	}
}

// runCtx returns the daemon's run context, falling back to Background for
// hooks that fire during shutdown.
func (d *Daemon) runCtx() context.Context {
	if d.ctx != nil {
		return d.ctx
	}
	return context.Background()
}
