package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/trainsync/internal/adapters/planfile"
	"github.com/okian/trainsync/internal/adapters/repository"
	"github.com/okian/trainsync/internal/adapters/telemetry"
	app "github.com/okian/trainsync/internal/app"
	"github.com/okian/trainsync/internal/config"
	"github.com/okian/trainsync/pkg/logger"
	"github.com/okian/trainsync/pkg/metrics"
)

// Metrics endpoint server timeouts.
const (
	readTimeout       = 5 * time.Second
	writeTimeout      = 5 * time.Second
	readHeaderTimeout = 2 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// A configured plan file must be readable: reconciling without it would
	// silently skip ingestion and mask a misconfiguration. An empty path
	// skips plan ingestion on purpose.
	var planText string
	if cfg.PlanPath != "" {
		raw, err := os.ReadFile(cfg.PlanPath)
		if err != nil {
			log.Error(ctx, "failed to read plan file", logger.String("path", cfg.PlanPath), logger.Error(err))
			return 1
		}
		planText = string(raw)
	}

	var source telemetry.Source
	switch cfg.TelemetryFormat {
	case config.FormatFIT:
		source = telemetry.NewFITDirSource(cfg.TelemetryPath, telemetry.WithFITLogger(log))
	default:
		source = telemetry.NewJSONExportSource(cfg.TelemetryPath, telemetry.WithJSONLogger(log))
	}

	store := repository.NewFileStore(cfg.LedgerPath, repository.WithLogger(log))

	svc := app.New(store, source,
		app.WithLogger(log),
		app.WithWindowDays(cfg.WindowDays),
		app.WithGapWindow(time.Duration(cfg.ClusterGapMinutes)*time.Minute),
		app.WithPlanExtractor(planfile.New(
			planfile.WithLogger(log),
		)),
	)

	// Optional metrics endpoint for scrape-based monitoring of scheduled runs.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	sum, err := svc.Run(ctx, planText)
	if err != nil {
		log.Error(ctx, "reconciliation failed", logger.Error(err))
		return 1
	}

	fmt.Printf("run %s: %d planned, %d linked, %d promoted, %d skipped, %d rows\n",
		sum.RunID, sum.Planned, sum.Linked, sum.Promoted, sum.Skipped, sum.Rows)
	return 0
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}
