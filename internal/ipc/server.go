package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"tonearm/internal/history"
	"tonearm/internal/logging"
	"tonearm/internal/nowplaying"
)

// Controller is the daemon surface the RPC service calls into.
type Controller interface {
	Status(ctx context.Context) StatusResponse
	Now() nowplaying.Snapshot
	HistoryList(ctx context.Context, limit int) ([]history.Play, error)
	TestNotification(ctx context.Context) (bool, string, error)
	Stop()
}

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, ctrl Controller, logger *slog.Logger) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("ipc server requires a controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{ctrl: ctrl, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Tonearm", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	ctrl   Controller
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.ctrl.Status(s.ctx)
	return nil
}

func (s *service) Now(_ NowRequest, resp *NowResponse) error {
	resp.Snapshot = s.ctrl.Now()
	return nil
}

func (s *service) HistoryList(req HistoryListRequest, resp *HistoryListResponse) error {
	plays, err := s.ctrl.HistoryList(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Plays = plays
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.ctrl.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Info("daemon stop requested via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	s.ctrl.Stop()
	resp.Stopped = true
	return nil
}
