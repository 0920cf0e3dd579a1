package kit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// RunHTTPServer serves h until SIGINT/SIGTERM, then drains in-flight
// requests. onShutdown may be nil; otherwise it always runs once the server
// stops, with its own deadline, even when the drain fails.
func RunHTTPServer(addr string, h http.Handler, log *zap.Logger, onShutdown func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return runHook(onShutdown, shutdownTimeout, err)
	}
	log.Info("http server starting", zap.String("addr", ln.Addr().String()))

	return serve(ctx, srv, ln, log, onShutdown, shutdownTimeout, shutdownTimeout)
}

// serve runs srv on ln until ctx is done or Serve fails. The drain and the
// hook get separate deadlines; their errors are joined.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.Logger,
	onShutdown func(ctx context.Context) error, drainTimeout, hookTimeout time.Duration,
) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return runHook(onShutdown, hookTimeout, err)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	err := srv.Shutdown(drainCtx)
	if err != nil {
		log.Warn("http drain incomplete", zap.Error(err))
		_ = srv.Close()
	}
	return runHook(onShutdown, hookTimeout, err)
}

func runHook(onShutdown func(ctx context.Context) error, timeout time.Duration, prior error) error {
	if onShutdown == nil {
		return prior
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return errors.Join(prior, onShutdown(ctx))
}
