package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/dropDatabas3/earlyaccess/internal/config"
	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

// Run arma el servicio y sirve HTTP hasta que ctx se cancele; luego hace
// shutdown ordenado (espera requests en vuelo hasta ShutdownTimeout).
func Run(ctx context.Context, cfg *config.Config) error {
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", cfg.Server.Addr, err)
	}
	return Serve(ctx, cfg, ln)
}

// Serve es Run sobre un listener ya abierto (tests usan :0).
func Serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	log := logger.From(ctx).With(logger.Component("server"))

	built, err := Build(ctx, cfg)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := built.Close(); err != nil {
			log.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Handler:      built.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return logger.ToContext(context.Background(), logger.L()) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", ln.Addr().String()), logger.String("env", cfg.App.Env))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
