// Package generator writes synthetic measurement files: one "name;value"
// line per record, values drawn from a normal distribution around each
// station's mean and rounded to tenths.
package generator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/okian/brc/internal/domain/decimal"
	"github.com/okian/brc/internal/domain/record"
	"github.com/okian/brc/pkg/logger"
)

// Generation defaults.
const (
	DefaultStdDev    = 10.0
	DefaultBlockSize = 64 << 10 // records per block

	maxTenths     = 999 // 99.9
	bytesPerGuess = 16
	writerBuffer  = 1 << 20
)

// Config describes one generated file.
type Config struct {
	Records   int       // number of lines to write
	Stations  []Station // station pool; DefaultStations when empty
	Seed      uint64    // same seed and stations give the same file
	StdDev    float64   // spread around each station's mean
	Workers   int       // concurrent block generators
	BlockSize int       // records generated per block
}

func (c *Config) setDefaults() {
	if len(c.Stations) == 0 {
		c.Stations = DefaultStations
	}
	if c.StdDev <= 0 {
		c.StdDev = DefaultStdDev
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.BlockSize < 1 {
		c.BlockSize = DefaultBlockSize
	}
}

// Value draws one reading for a station with the given mean. The result is
// rounded to tenths and clamped to [-99.9, 99.9].
func Value(r *rand.Rand, mean, stddev float64) decimal.Tenths {
	t := math.Round((mean + r.NormFloat64()*stddev) * 10)
	t = math.Max(-maxTenths, math.Min(maxTenths, t))
	return decimal.Tenths(t)
}

// Generate writes cfg.Records lines to w and returns the bytes written.
// Blocks are generated concurrently but each block has its own seeded
// source, so the output does not depend on cfg.Workers.
func Generate(ctx context.Context, w io.Writer, cfg Config) (int64, error) {
	cfg.setDefaults()
	if cfg.Records < 0 {
		return 0, fmt.Errorf("%w: records must not be negative", ErrInvalidConfig)
	}
	for _, s := range cfg.Stations {
		if s.Name == "" {
			return 0, fmt.Errorf("%w: empty station name", ErrInvalidConfig)
		}
	}

	log := logger.Named("generator")
	log.Info(ctx, "generating measurements",
		logger.Int("records", cfg.Records),
		logger.Int("stations", len(cfg.Stations)),
		logger.Uint64("seed", cfg.Seed),
		logger.Int("workers", cfg.Workers),
	)

	bw := bufio.NewWriterSize(w, writerBuffer)
	blocks := (cfg.Records + cfg.BlockSize - 1) / cfg.BlockSize
	bufs := make([][]byte, cfg.Workers)
	var written int64

	// Generate one wave of Workers blocks in parallel, then write them in order.
	for first := 0; first < blocks; first += cfg.Workers {
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("%w: %w", ErrGenerate, err)
		}
		wave := min(cfg.Workers, blocks-first)

		var wg sync.WaitGroup
		for i := range wave {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				block := first + i
				n := min(cfg.BlockSize, cfg.Records-block*cfg.BlockSize)
				bufs[i] = generateBlock(bufs[i][:0], &cfg, uint64(block), n)
			}(i)
		}
		wg.Wait()

		for i := range wave {
			n, err := bw.Write(bufs[i])
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("%w: %w", ErrGenerate, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("%w: %w", ErrGenerate, err)
	}

	log.Info(ctx, "measurements written", logger.Int64("bytes", written))
	return written, nil
}

func generateBlock(dst []byte, cfg *Config, block uint64, n int) []byte {
	if cap(dst) == 0 {
		dst = make([]byte, 0, n*bytesPerGuess)
	}
	r := rand.New(rand.NewPCG(cfg.Seed, block))
	for range n {
		s := cfg.Stations[r.IntN(len(cfg.Stations))]
		dst = append(dst, s.Name...)
		dst = append(dst, record.Separator)
		dst = Value(r, s.Mean, cfg.StdDev).AppendTo(dst)
		dst = append(dst, record.Newline)
	}
	return dst
}
