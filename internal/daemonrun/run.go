// Package daemonrun hosts the shared daemon runtime loop used by both the
// tonearm run command and the tonearmd entrypoint.
package daemonrun

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"tonearm/internal/config"
	"tonearm/internal/daemon"
	"tonearm/internal/history"
	"tonearm/internal/ipc"
	"tonearm/internal/logging"
	"tonearm/internal/nowplaying"
	"tonearm/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run brings up the daemon, its IPC socket, and the HTTP API, then blocks
// until SIGINT/SIGTERM, an IPC stop, or context cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := preflight.Run(cfg); err != nil {
		return err
	}

	logCfg := *cfg
	if opts.LogLevel != "" {
		logCfg.Logging.Level = opts.LogLevel
	}
	if opts.Development {
		logCfg.Logging.Format = "console"
	}
	logger, err := logging.NewFromConfig(&logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ctrl := &controller{daemon: d, shutdown: cancel}
	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), ctrl, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	select {
	case <-signalCtx.Done():
		logger.Info("tonearm daemon shutting down")
	case <-d.Done():
		// Once mode: the source drained and the dispatcher finished.
		logger.Info("source drained, shutting down")
	}
	d.Stop()
	return nil
}

// controller adapts the daemon for IPC, turning a remote Stop into full
// process shutdown rather than just ending the stream.
type controller struct {
	daemon   *daemon.Daemon
	shutdown context.CancelFunc
}

var _ ipc.Controller = (*controller)(nil)

func (c *controller) Status(ctx context.Context) ipc.StatusResponse {
	return c.daemon.Status(ctx)
}

func (c *controller) Now() nowplaying.Snapshot {
	return c.daemon.Now()
}

func (c *controller) HistoryList(ctx context.Context, limit int) ([]history.Play, error) {
	return c.daemon.HistoryList(ctx, limit)
}

func (c *controller) TestNotification(ctx context.Context) (bool, string, error) {
	return c.daemon.TestNotification(ctx)
}

func (c *controller) Stop() {
	c.shutdown()
}
