package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"tonearm/internal/artwork"
	"tonearm/internal/config"
	"tonearm/internal/history"
	"tonearm/internal/ipc"
	"tonearm/internal/logging"
	"tonearm/internal/natspub"
	"tonearm/internal/notifications"
	"tonearm/internal/nowplaying"
	"tonearm/internal/reader"
)

// ErrAlreadyRunning is returned by Start when this process already runs the
// daemon.
var ErrAlreadyRunning = errors.New("daemon already running")

// ErrLocked is returned when another daemon instance holds the lock.
var ErrLocked = errors.New("another tonearm daemon instance is already running")

// Daemon owns the stream pipeline and its consumers.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	stream    *reader.Reader
	tracker   *nowplaying.Tracker
	store     *history.Store
	exporter  *artwork.Exporter
	notifier  notifications.Service
	publisher *natspub.Publisher
	metrics   *dispatchMetrics
	api       *apiServer

	lockPath string
	pidPath  string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
}

// New constructs a daemon with all configured consumers initialized.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		tracker:  nowplaying.New(logger),
		notifier: notifications.NewService(cfg),
		metrics:  newDispatchMetrics(registry),
		lockPath: cfg.LockPath(),
		pidPath:  filepath.Join(cfg.Paths.StateDir, "tonearmd.pid"),
		lock:     flock.New(cfg.LockPath()),
		done:     make(chan struct{}),
	}

	streamOpts := []reader.Option{
		reader.WithLogger(logging.NewComponentLogger(logger, "reader")),
		reader.WithMaxFrameBytes(cfg.Source.MaxFrameBytes),
		reader.WithChannelBuffer(cfg.Source.ChannelBuffer),
		reader.WithBackoff(
			time.Duration(cfg.Source.ReopenBackoffMS)*time.Millisecond,
			time.Duration(cfg.Source.MaxBackoffMS)*time.Millisecond,
		),
		reader.WithMetrics(registry),
	}
	if !cfg.Continuous() {
		streamOpts = append(streamOpts, reader.WithOnce())
	}
	d.stream = reader.New(cfg.Source.Path, streamOpts...)

	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		d.store = store
	}
	if cfg.Artwork.Enabled {
		d.exporter = artwork.New(cfg.Paths.ArtworkDir, cfg.Artwork.MaxFiles,
			logging.NewComponentLogger(logger, "artwork"))
	}
	if cfg.NATS.URL != "" {
		d.publisher = natspub.New(cfg.NATS.URL, cfg.NATS.SubjectPrefix,
			logging.NewComponentLogger(logger, "natspub"))
	}

	d.registerTrackerHooks()
	return d, nil
}

// Registry exposes the daemon's metric registry for the API server.
func (d *Daemon) Registry() *prometheus.Registry {
	return d.registry
}

// Start acquires the single-instance lock, launches the reader and the
// dispatcher, and brings up the HTTP API when configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return ErrAlreadyRunning
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.stream.Start(d.ctx); err != nil {
		d.releaseLock()
		d.cancel()
		return fmt.Errorf("start reader: %w", err)
	}

	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.stream.Stop()
		d.releaseLock()
		d.cancel()
		return err
	}
	d.api = api
	if err := d.api.start(d.ctx); err != nil {
		d.stream.Stop()
		d.releaseLock()
		d.cancel()
		return err
	}

	if d.store != nil && d.cfg.History.KeepDays > 0 {
		if removed, err := d.store.Purge(d.ctx, d.cfg.History.KeepDays); err != nil {
			d.logger.Warn("history purge failed", logging.Error(err))
		} else if removed > 0 {
			d.logger.Info("history purged",
				logging.Int64("removed", removed),
				logging.Int("keep_days", d.cfg.History.KeepDays))
		}
	}

	d.writePID()
	d.startedAt = time.Now()
	d.running.Store(true)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(d.done)
		d.dispatch(d.ctx)
	}()

	d.logger.Info("tonearm daemon started",
		logging.String("source", d.cfg.Source.Path),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop ends the stream, drains the dispatcher, and releases the lock. Safe
// to call more than once.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.stream.Stop()
	d.wg.Wait()
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.store != nil {
		if err := d.store.EndSession(context.Background()); err != nil {
			d.logger.Warn("failed to close history session", logging.Error(err))
		}
	}
	if d.publisher != nil {
		d.publisher.Close()
	}
	d.removePID()
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("tonearm daemon stopped")
}

// Close stops the daemon and releases persistent resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start has succeeded and Stop has not run.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Done is closed when the dispatcher has drained the stream. It fires
// before Stop in once mode (the source ran dry) and during shutdown in
// continuous mode.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// APIAddr reports the bound HTTP API address, or "" when the API is off.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Status implements the IPC controller status surface.
func (d *Daemon) Status(ctx context.Context) ipc.StatusResponse {
	stats := d.stream.Stats()
	resp := ipc.StatusResponse{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		StartedAt:   d.startedAt,
		SourcePath:  d.cfg.Source.Path,
		SourceState: stats.State.String(),
		Frames:      stats.Frames,
		Skipped:     stats.Skipped,
		Reopens:     stats.Reopens,
		LockPath:    d.lockPath,
	}
	if d.store != nil {
		resp.HistoryDB = d.store.Path()
		if hs, err := d.store.Stats(ctx); err != nil {
			d.logger.Warn("history stats unavailable", logging.Error(err))
		} else {
			resp.HistoryPlays = hs.Plays
			resp.HistorySessions = hs.Sessions
		}
	}
	return resp
}

// Now implements the IPC controller snapshot surface.
func (d *Daemon) Now() nowplaying.Snapshot {
	return d.tracker.Snapshot()
}

// HistoryList implements the IPC controller history surface.
func (d *Daemon) HistoryList(ctx context.Context, limit int) ([]history.Play, error) {
	if d.store == nil {
		return nil, errors.New("history is disabled")
	}
	return d.store.List(ctx, limit)
}

// TestNotification implements the IPC controller notification test.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, err.Error(), err
	}
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "notifications are not configured", nil
	}
	return true, "test notification sent", nil
}

func (d *Daemon) writePID() {
	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(d.pidPath, []byte(pid), 0o644); err != nil {
		d.logger.Warn("failed to write pid file",
			logging.String("path", d.pidPath),
			logging.Error(err))
	}
}

func (d *Daemon) removePID() {
	if err := os.Remove(d.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("failed to remove pid file",
			logging.String("path", d.pidPath),
			logging.Error(err))
	}
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
