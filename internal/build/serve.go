package build

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultServeAddr = "127.0.0.1:8080"
	shutdownTimeout  = 5 * time.Second
)

// Serve serves the files of dir on the listener until the context is done.
func Serve(ctx context.Context, listener net.Listener, dir string, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()
	logger.Info("serving documentation", slog.String("dir", dir), slog.String("url", "http://"+listener.Addr().String()))

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down the server")
	}
	return nil
}
