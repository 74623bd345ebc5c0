// Package worker folds queued chunks into private aggregate maps and merges
// the partial maps as the workers finish.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/brc/internal/adapters/mq/queue"
	"github.com/okian/brc/internal/domain/record"
	"github.com/okian/brc/internal/domain/stats"
	"github.com/okian/brc/pkg/logger"
	"github.com/okian/brc/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultSizeHint = 1024 // distinct stations expected per worker
)

// Queue defines how workers receive chunks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Chunk
}

// Progress is a point-in-time view of the work done so far.
type Progress struct {
	Chunks int64 `json:"chunks"`
	Lines  int64 `json:"lines"`
	Bytes  int64 `json:"bytes"`
}

type counters struct {
	chunks atomic.Int64
	lines  atomic.Int64
	bytes  atomic.Int64
}

func (c *counters) snapshot() Progress {
	return Progress{Chunks: c.chunks.Load(), Lines: c.lines.Load(), Bytes: c.bytes.Load()}
}

// Folder drains the queue into its own aggregate map.
type Folder struct {
	queue    Queue
	mode     record.Mode
	sizeHint int
	name     string
	progress *counters
	logger   logger.Logger
}

// NewFolder creates a folder with configuration options.
func NewFolder(q Queue, opts ...Option) *Folder {
	f := &Folder{
		queue:    q,
		mode:     record.ModeRelaxed,
		sizeHint: defaultSizeHint,
		name:     "folder",
		progress: &counters{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Named("worker")
	}
	f.logger = f.logger.With(logger.String("worker", f.name))
	return f
}

// Run folds chunks until the queue drains and returns the folder's map.
// The map belongs to the caller afterwards.
func (f *Folder) Run(ctx context.Context) (*stats.AggregateMap, error) {
	m := stats.NewAggregateMap(f.sizeHint)
	for c := range f.queue.Dequeue(ctx) {
		start := time.Now()
		n, err := stats.Fold(m, c.Data, f.mode)
		if err != nil {
			metrics.RecordErrorByComponent("worker", "malformed_record")
			offset := c.Offset
			var le *stats.LineError
			if errors.As(err, &le) {
				offset += le.Offset
				err = le.Err
			}
			f.logger.Debug(ctx, "fold failed", logger.Int("offset", offset), logger.Error(err))
			return nil, fmt.Errorf("%w at byte %d: %w", ErrFold, offset, err)
		}
		latency := time.Since(start)
		metrics.RecordChunk(len(c.Data), n, latency)
		f.progress.chunks.Add(1)
		f.progress.lines.Add(int64(n))
		f.progress.bytes.Add(int64(len(c.Data)))
	}
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	return m, nil
}

// Pool runs a fixed number of folders over one queue.
type Pool struct {
	folders  []*Folder
	progress *counters
	logger   logger.Logger
}

// NewPool creates workerCount folders over q. Options apply to every folder.
// A count below one means one folder per CPU.
func NewPool(workerCount int, q Queue, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		folders:  make([]*Folder, workerCount),
		progress: &counters{},
		logger:   logger.Named("worker-pool"),
	}
	for i := range p.folders {
		fopts := append([]Option{WithName("folder-" + strconv.Itoa(i))}, opts...)
		fopts = append(fopts, withCounters(p.progress))
		p.folders[i] = NewFolder(q, fopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of folders.
func (p *Pool) Size() int { return len(p.folders) }

// Progress reports the work done so far by all folders.
func (p *Pool) Progress() Progress { return p.progress.snapshot() }

// Run starts every folder and merges their maps as each one finishes. The
// first error cancels the remaining folders and is returned alone; no
// partial result is returned with it.
func (p *Pool) Run(ctx context.Context) (*stats.AggregateMap, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := make(chan *stats.AggregateMap, len(p.folders))
	var wg sync.WaitGroup
	for _, f := range p.folders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := f.Run(ctx)
			if err != nil {
				cancel(err)
				return
			}
			results <- m
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	total := stats.NewAggregateMap(0)
	for m := range results {
		start := time.Now()
		total.Merge(m)
		metrics.RecordMergeLatency(time.Since(start))
	}

	if err := context.Cause(ctx); err != nil {
		p.logger.Warn(ctx, "fold aborted", logger.Error(err))
		return nil, err
	}
	return total, nil
}
