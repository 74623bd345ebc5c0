package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/brc/internal/adapters/http/api"
	"github.com/okian/brc/internal/adapters/report"
	app "github.com/okian/brc/internal/app"
	"github.com/okian/brc/internal/config"
	"github.com/okian/brc/internal/domain/record"
	"github.com/okian/brc/pkg/logger"
	"github.com/okian/brc/pkg/metrics"
)

// Timing constants.
const (
	shutdownTimeout       = 5 * time.Second
	systemMetricsInterval = time.Second
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage: brc [flags] <measurements-file>")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds command-line overrides. Zero values mean "not set".
type flags struct {
	configPath string
	workers    int
	chunkSize  int
	strict     bool
	path       string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("brc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", os.Getenv("BRC_CONFIG"), "YAML config file")
	fs.IntVar(&f.workers, "workers", 0, "Number of fold workers (default: config or one per CPU)")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "Target chunk size in bytes (default: config or 8 MiB)")
	fs.BoolVar(&f.strict, "strict", false, "Validate every record and fail on the first malformed line")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return f, errUsage
	}
	f.path = fs.Arg(0)
	return f, nil
}

// apply layers the command-line overrides on top of the loaded config.
func (f flags) apply(cfg *config.Config) error {
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.chunkSize > 0 {
		cfg.ChunkSize = f.chunkSize
	}
	if f.strict {
		cfg.ParseMode = record.ModeStrict.String()
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	// Bootstrap logger until the config says otherwise.
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitError
	}

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.LoadFile(ctx, f.configPath)
	if err == nil {
		err = f.apply(cfg)
	}
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitError
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	mode, _ := cfg.Mode() // validated above
	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.Workers),
		app.WithChunkSize(cfg.ChunkSize),
		app.WithQueueSize(cfg.QueueSize),
		app.WithSizeHint(cfg.StationHint),
		app.WithMode(mode),
	)

	if cfg.MetricsAddr != "" {
		srv := api.NewServer(svc)
		if _, err := srv.Start(ctx, cfg.MetricsAddr); err != nil {
			log.Error(ctx, "failed to start metrics server", logger.Error(err))
			return exitError
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
			}
		}()
	}

	updaterCtx, stopUpdater := context.WithCancel(ctx)
	go startSystemMetricsUpdater(updaterCtx)

	summary, err := svc.AggregateFile(ctx, f.path)
	stopUpdater()
	updateSystemMetrics()
	exportMetrics(ctx, log, cfg.MetricsFile)

	if err != nil {
		log.Error(ctx, "aggregation failed", logger.String("path", f.path), logger.Error(err))
		return exitError
	}
	if err := report.Write(stdout, summary); err != nil {
		log.Error(ctx, "failed to write report", logger.Error(err))
		return exitError
	}
	return exitOK
}

func exportMetrics(ctx context.Context, log logger.Logger, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn(ctx, "failed to export metrics", logger.String("path", path), logger.Error(err))
	}
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
