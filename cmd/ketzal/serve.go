package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ketzal-web/ketzal"
	"github.com/ketzal-web/ketzal/config"
	"github.com/ketzal-web/ketzal/internal/logging"
	"github.com/ketzal-web/ketzal/metrics"
	"github.com/ketzal-web/ketzal/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "address to expose /metrics on, empty disables it")
	serveCmd.Flags().Float64("rps", 100, "requests per second allowed per peer, zero disables the limit")
	serveCmd.Flags().Int("burst", 200, "requests a peer may burst with")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cmd)
	},
}

func serve(ctx context.Context, cmd *cobra.Command) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	envFiles, _ := flags.GetStringSlice("env")
	level, _ := flags.GetString("log-level")
	dev, _ := flags.GetBool("dev")
	metricsAddr, _ := flags.GetString("metrics-addr")
	rps, _ := flags.GetFloat64("rps")
	burst, _ := flags.GetInt("burst")

	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return err
	}

	logger, err := logging.New(level, dev)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	app := ketzal.New(cfg).Logger(logger).Metrics(m)
	app.Use(
		middleware.Recover(logger),
		middleware.RequestID,
		middleware.LogRequests(logger),
		middleware.CORS,
	)
	if rps > 0 {
		app.Use(middleware.RateLimit(rate.Limit(rps), burst))
	}

	registerRoutes(app)

	logger.Info(
		"starting",
		zap.String("version", version),
		zap.String("addr", cfg.Addr()),
		zap.String("max_connections", humanize.Comma(cfg.NET.MaxConnections)),
		zap.Stringer("body_buffer_threshold", cfg.Body.BufferThreshold),
		zap.Stringer("body_max_size", cfg.Body.MaxSize),
		zap.Stringer("compression_threshold", cfg.NET.CompressionThreshold),
		zap.Bool("keep_alive", cfg.NET.KeepAlive),
	)

	if len(metricsAddr) > 0 {
		metricsServer := &stdhttp.Server{
			Addr:              metricsAddr,
			Handler:           metricsMux(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	return app.Serve(ctx)
}

func metricsMux(registry *prometheus.Registry) *stdhttp.ServeMux {
	mux := stdhttp.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return mux
}
