package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/neobeach/core/internal/errors"
)

// Listener is a running server. It is the only handle the assembling code
// keeps once the server is started.
type Listener struct {
	srv     *http.Server
	addr    net.Addr
	group   *errgroup.Group
	stop    chan struct{}
	once    sync.Once
	base    context.Context
	timeout time.Duration
	logger  *slog.Logger
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.addr }

// Wait blocks until the listener has stopped. It returns the error that
// stopped it: nil after a requested shutdown, an error wrapping
// ErrUnhandledFailure under the fail-fast policy, or the serve error.
func (l *Listener) Wait() error {
	return l.group.Wait()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (l *Listener) Shutdown(ctx context.Context) error {
	err := l.shutdown(ctx)
	l.once.Do(func() { close(l.stop) })
	return err
}

// graceful returns the context a self-initiated shutdown runs under. The
// parent context may already be done, so only its values are kept.
func (l *Listener) graceful() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(l.base), l.timeout)
}

func (l *Listener) shutdown(ctx context.Context) error {
	l.logger.Info("shutting down", slog.String("addr", l.addr.String()))
	if err := l.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Start binds the configured address and serves the dispatch tree in the
// background. Cancelling ctx shuts the listener down gracefully. Nothing
// can be mounted once Start has been called.
func (s *Server) Start(ctx context.Context) (*Listener, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrServerRunning
	}

	sc := s.cfg.Server
	ln, err := net.Listen("tcp", sc.Addr())
	if err != nil {
		s.running.Store(false)
		return nil, fmt.Errorf("failed to listen on %s: %w", sc.Addr(), err)
	}

	srv := &http.Server{
		Handler:      s.root,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	l := &Listener{
		srv:     srv,
		addr:    ln.Addr(),
		group:   g,
		stop:    make(chan struct{}),
		base:    ctx,
		timeout: sc.ShutdownTimeout,
		logger:  s.logger,
	}

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-l.stop:
			return nil
		case <-gctx.Done():
			sctx, cancel := l.graceful()
			defer cancel()
			return l.shutdown(sctx)
		case failure := <-s.failures:
			s.logger.Error("stopping after unhandled failure", slog.String("error", failure.Error()))
			sctx, cancel := l.graceful()
			defer cancel()
			if err := l.shutdown(sctx); err != nil {
				return errors.Join(failure, err)
			}
			return failure
		}
	})

	s.logger.Info("server started",
		slog.String("addr", l.addr.String()),
		slog.Int("routes", s.routes),
		slog.String("failure_policy", s.policy.String()))
	return l, nil
}

// Run starts the server and blocks until SIGINT, SIGTERM, cancellation of
// ctx or, under FailFast, an unhandled failure. Telemetry providers are
// flushed before it returns.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := s.Start(ctx)
	if err != nil {
		return err
	}

	err = l.Wait()

	flushCtx, cancel := l.graceful()
	defer cancel()
	if shutdownErr := s.providers.Shutdown(flushCtx); shutdownErr != nil {
		s.logger.Error("error shutting down OpenTelemetry", slog.String("error", shutdownErr.Error()))
	}

	if err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
