package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/tmorell/inkwell/pkg/core"
)

const shutdownTimeout = 5 * time.Second

// Server serves the built site over HTTP and rebuilds it when the vault
// changes. Meant for local previewing, not production hosting.
type Server struct {
	builder *Builder
	service *core.Service
	addr    string
	logger  *slog.Logger
}

func NewServer(builder *Builder, service *core.Service, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{builder: builder, service: service, addr: addr, logger: logger}
}

// Serve builds once, starts watching the vault, and blocks serving the
// output directory until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	report, err := s.builder.Build(ctx)
	if err != nil {
		return err
	}

	events, err := s.service.Watch(ctx, "")
	if err != nil {
		return fmt.Errorf("watching vault: %w", err)
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		return s.rebuildLoop(ctx, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("rebuild loop failed", "error", err)
	}))

	srv := &http.Server{
		Addr:    s.addr,
		Handler: http.FileServer(http.Dir(report.Output)),
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("preview server listening", "addr", s.addr, "root", report.Output)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) rebuildLoop(ctx context.Context, events <-chan core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.logger.Info("vault changed, rebuilding", "id", ev.ID, "type", ev.Type)
			if _, err := s.builder.Build(ctx); err != nil {
				// Keep serving the last good build; authors fix and save again.
				s.logger.Error("rebuild failed", "error", err)
			}
		}
	}
}
