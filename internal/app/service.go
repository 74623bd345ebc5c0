// Package service runs one aggregation over an input buffer: it splits the
// buffer into line-aligned chunks, feeds them through a bounded queue to a
// pool of fold workers and finalizes the merged result.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/brc/internal/adapters/input"
	"github.com/okian/brc/internal/adapters/mq/queue"
	"github.com/okian/brc/internal/adapters/mq/worker"
	"github.com/okian/brc/internal/domain/partition"
	"github.com/okian/brc/internal/domain/record"
	"github.com/okian/brc/internal/domain/stats"
	"github.com/okian/brc/pkg/logger"
	"github.com/okian/brc/pkg/metrics"
)

// Run outcomes reported to metrics and /stats.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Service aggregates measurement buffers.
type Service struct {
	mu sync.RWMutex

	// Configuration
	workerCount int
	chunkSize   int
	queueSize   int
	sizeHint    int
	mode        record.Mode

	// State of the current or most recent run
	runID      string
	running    bool
	outcome    string
	inputBytes int
	chunkCount int
	stations   int
	startedAt  time.Time
	elapsed    time.Duration
	pool       *worker.Pool
	queue      *queue.ChunkQueue

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of fold workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithChunkSize sets the target chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithQueueSize sets the chunk queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSizeHint presizes each worker's map.
func WithSizeHint(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sizeHint = n
		}
	}
}

// WithMode selects relaxed or strict parsing for every run.
func WithMode(mode record.Mode) Option {
	return func(s *Service) {
		s.mode = mode
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		chunkSize:   partition.DefaultChunkSize,
		queueSize:   1024,
		sizeHint:    1024,
		mode:        record.ModeRelaxed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Named("service")
}

// AggregateFile maps the file at path and aggregates its contents.
func (s *Service) AggregateFile(ctx context.Context, path string) (stats.Summary, error) {
	src, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			s.log().Warn(ctx, "failed to release input", logger.String("path", path), logger.Error(cerr))
		}
	}()
	// Summary names are copies, so the mapping may go away afterwards.
	return s.Aggregate(ctx, src.Bytes())
}

// Aggregate folds every record in buf and returns the finalized summary
// sorted by station name. On error no partial summary is returned.
func (s *Service) Aggregate(ctx context.Context, buf []byte) (stats.Summary, error) {
	chunks := partition.Split(buf, s.chunkSize)
	q := queue.NewChunkQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q,
		worker.WithMode(s.mode),
		worker.WithSizeHint(s.sizeHint),
	)

	runID := uuid.NewString()
	l := s.log().With(logger.String("run_id", runID))
	s.begin(runID, len(buf), len(chunks), pool, q)
	metrics.UpdateInputBytes(len(buf))
	metrics.UpdateChunkCount(len(chunks))

	l.Info(ctx, "aggregation started",
		logger.Int("bytes", len(buf)),
		logger.Int("chunks", len(chunks)),
		logger.Int("workers", pool.Size()),
		logger.String("mode", s.mode.String()),
	)

	ctx, cancel := context.WithCancel(ctx)
	produced := make(chan struct{})
	go func() {
		defer close(produced)
		defer func() { _ = q.Close() }()
		for _, c := range chunks {
			if !q.Enqueue(ctx, c) {
				return
			}
		}
	}()

	m, err := pool.Run(ctx)
	cancel()
	<-produced

	if err != nil {
		elapsed := s.finish(outcomeError, 0)
		metrics.RecordRun(outcomeError, elapsed)
		l.Error(ctx, "aggregation failed", logger.Duration("elapsed", elapsed), logger.Error(err))
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	summary := stats.Summarize(m)
	elapsed := s.finish(outcomeSuccess, len(summary))
	metrics.RecordRun(outcomeSuccess, elapsed)
	metrics.UpdateStationCount(len(summary))
	l.Info(ctx, "aggregation finished",
		logger.Int("stations", len(summary)),
		logger.Int64("lines", pool.Progress().Lines),
		logger.Duration("elapsed", elapsed),
	)
	return summary, nil
}

func (s *Service) begin(runID string, inputBytes, chunkCount int, pool *worker.Pool, q *queue.ChunkQueue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runID = runID
	s.running = true
	s.outcome = ""
	s.inputBytes = inputBytes
	s.chunkCount = chunkCount
	s.stations = 0
	s.startedAt = time.Now()
	s.elapsed = 0
	s.pool = pool
	s.queue = q
}

func (s *Service) finish(outcome string, stations int) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.outcome = outcome
	s.stations = stations
	s.elapsed = time.Since(s.startedAt)
	return s.elapsed
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"workerCount": s.workerCount,
		"chunkSize":   s.chunkSize,
		"queueSize":   s.queueSize,
		"mode":        s.mode.String(),
		"running":     s.running,
	}
	if s.runID == "" {
		return out
	}

	out["runId"] = s.runID
	out["inputBytes"] = s.inputBytes
	out["chunkCount"] = s.chunkCount
	if s.pool != nil {
		out["progress"] = s.pool.Progress()
	}
	if s.running {
		queueLen := s.queue.Len(context.Background())
		out["queueLength"] = queueLen
		out["elapsedMs"] = time.Since(s.startedAt).Milliseconds()
		metrics.UpdateQueueSize(queueLen)
	} else {
		out["outcome"] = s.outcome
		out["stations"] = s.stations
		out["elapsedMs"] = s.elapsed.Milliseconds()
	}
	return out
}
