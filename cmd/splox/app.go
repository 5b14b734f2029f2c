package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"splox-go/internal/infra/config"
	"splox-go/internal/infra/logger"
	"splox-go/internal/infra/metrics"
	"splox-go/internal/infra/tracer"
	"splox-go/pkg/splox"
)

// app is the wiring shared by every networked subcommand.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	client *splox.Client
	out    io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

func withApp(args []string, cmd command) error {
	// 1. Config
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Metrics
	if cfg.Metrics.Enabled {
		stop := metrics.Serve(cfg.Metrics.Addr, log)
		defer stop()
	}

	// 4. Client
	client, err := splox.New(clientOptions(cfg, log)...)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	defer client.Close()

	// 5. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Debug("splox starting", "base_url", client.BaseURL(), "circuit", client.CircuitState())
	return cmd(ctx, &app{cfg: cfg, log: log, client: client, out: os.Stdout}, stripConfigFlag(args))
}

// clientOptions maps the loaded config onto client options.
func clientOptions(cfg *config.Config, log *slog.Logger) []splox.Option {
	opts := []splox.Option{
		splox.WithAPIKey(cfg.APIKey),
		splox.WithBaseURL(cfg.BaseURL),
		splox.WithTimeout(cfg.Timeout),
		splox.WithRunAndWaitTimeout(cfg.RunAndWait.Timeout),
		splox.WithLogger(log),
		splox.WithConnectionPool(splox.PoolConfig{
			MaxIdleConns:        cfg.Pool.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.Pool.MaxIdleConnsPerHost,
			MaxConnsPerHost:     cfg.Pool.MaxConnsPerHost,
			IdleConnTimeout:     cfg.Pool.IdleConnTimeout,
		}),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, splox.WithUserAgent(cfg.UserAgent))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, splox.WithHeader(k, v))
	}
	if cfg.CircuitBreaker.Enabled {
		opts = append(opts, splox.WithCircuitBreaker(splox.BreakerConfig{
			MaxFailures: cfg.CircuitBreaker.MaxFailures,
			Timeout:     cfg.CircuitBreaker.Timeout,
			Interval:    cfg.CircuitBreaker.Interval,
		}))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, splox.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}
	return opts
}
