// Command generate writes a synthetic measurements file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/brc/internal/generator"
	"github.com/okian/brc/pkg/logger"
)

// Default configuration constants.
const (
	defaultRecords = 1_000_000
	outputFileMode = 0o644
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		records = fs.Int("records", defaultRecords, "Number of records to write")
		output  = fs.String("output", "measurements.txt", "Output file, - for stdout")
		seed    = fs.Uint64("seed", 1, "Random seed; equal seeds give equal files")
		stddev  = fs.Float64("stddev", generator.DefaultStdDev, "Spread around each station's mean")
		workers = fs.Int("workers", runtime.NumCPU(), "Number of concurrent block generators")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		return 1
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := os.Stdout
	if *output != "-" {
		f, err := os.OpenFile(*output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFileMode)
		if err != nil {
			log.Error(ctx, "failed to create output file", logger.String("output", *output), logger.Error(err))
			return 1
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Error(ctx, "failed to close output file", logger.Error(err))
			}
		}()
		out = f
	}

	_, err := generator.Generate(ctx, out, generator.Config{
		Records: *records,
		Seed:    *seed,
		StdDev:  *stddev,
		Workers: *workers,
	})
	if err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		return 1
	}
	return 0
}
