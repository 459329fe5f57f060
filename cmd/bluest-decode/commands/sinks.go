package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bluest-sdk/bluest-go/pkg/config"
	"github.com/bluest-sdk/bluest-go/pkg/sink"
)

const shutdownTimeout = 5 * time.Second

// BuildSinks creates the sinks enabled in cfg. The returned cleanup stops
// the WebSocket server; the sinks themselves are closed by the pipeline.
func BuildSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]sink.Sink, func(), error) {
	var sinks []sink.Sink
	cleanup := func() {}

	fail := func(err error) ([]sink.Sink, func(), error) {
		for _, s := range sinks {
			_ = s.Close()
		}
		cleanup()
		return nil, func() {}, err
	}

	if cfg.NATS.Enabled {
		ns, err := sink.DialNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.NATS.ClientName)
		if err != nil {
			return fail(fmt.Errorf("nats sink: %w", err))
		}
		logger.Info("NATS sink connected", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
		sinks = append(sinks, ns)
	}

	if cfg.Redis.Enabled {
		rs := sink.DialRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		logger.Info("Redis shadow sink configured", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		sinks = append(sinks, rs)
	}

	if cfg.WebSocket.Enabled {
		hub := sink.NewHub(logger)
		go hub.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle(cfg.WebSocket.Path, hub)
		srv := &http.Server{
			Addr:              cfg.WebSocket.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("WebSocket server failed", "error", err)
			}
		}()
		logger.Info("WebSocket stream listening", "addr", cfg.WebSocket.Listen, "path", cfg.WebSocket.Path)

		cleanup = func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
		sinks = append(sinks, hub)
	}

	return sinks, cleanup, nil
}
