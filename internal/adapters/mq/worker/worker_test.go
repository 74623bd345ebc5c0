package worker_test

import (
	"context"
	"errors"
	"testing"

	queue "github.com/okian/brc/internal/adapters/mq/queue"
	worker "github.com/okian/brc/internal/adapters/mq/worker"
	"github.com/okian/brc/internal/domain/decimal"
	"github.com/okian/brc/internal/domain/partition"
	"github.com/okian/brc/internal/domain/record"
	"github.com/okian/brc/internal/domain/stats"
	logging "github.com/okian/brc/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockQueue serves a fixed list of chunks and then closes.
type mockQueue struct {
	ch chan queue.Chunk
}

func newMockQueue(chunks ...partition.Chunk) *mockQueue {
	ch := make(chan queue.Chunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return &mockQueue{ch: ch}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Chunk { return mq.ch }

const input = "Hamburg;12.0\nBerlin;-3.5\nHamburg;14.0\nOslo;0.5\nBerlin;-1.5\n"

func TestFolder(t *testing.T) {
	convey.Convey("Given a folder over a queue of chunks", t, func() {
		_ = logging.Init()
		ctx := context.Background()

		convey.Convey("When every chunk is well-formed", func() {
			f := worker.NewFolder(newMockQueue(partition.Split([]byte(input), 16)...), worker.WithName("t"))
			m, err := f.Run(ctx)

			convey.Convey("Then its map should hold every station", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.Len(), convey.ShouldEqual, 3)
				berlin, _ := m.Get("Berlin")
				convey.So(berlin, convey.ShouldResemble, stats.KeyStats{Sum: -50, Count: 2, Min: -35, Max: -15})
			})
		})

		convey.Convey("When a strict folder meets a malformed line", func() {
			chunks := []partition.Chunk{
				{Offset: 0, Data: []byte("Rome;1.0\n")},
				{Offset: 9, Data: []byte("Nice;2.0\nParis;abc\n")},
			}
			f := worker.NewFolder(newMockQueue(chunks...), worker.WithMode(record.ModeStrict))
			m, err := f.Run(ctx)

			convey.Convey("Then it should report the absolute offset and no map", func() {
				convey.So(m, convey.ShouldBeNil)
				convey.So(errors.Is(err, worker.ErrFold), convey.ShouldBeTrue)
				convey.So(errors.Is(err, decimal.ErrMalformedNumber), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "at byte 18")
				convey.So(err.Error(), convey.ShouldContainSubstring, "Paris;abc")
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			q := queue.NewChunkQueue()
			f := worker.NewFolder(q)
			_, err := f.Run(cctx)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real chunk queue", t, func() {
		_ = logging.Init()
		ctx := context.Background()

		run := func(workers, chunkSize int, mode record.Mode, data string) (*stats.AggregateMap, *worker.Pool, error) {
			pctx, cancel := context.WithCancel(ctx)
			defer cancel()
			q := queue.NewChunkQueue(queue.WithCapacity(4))
			p := worker.NewPool(workers, q, worker.WithMode(mode), worker.WithSizeHint(8))
			go func() {
				for _, c := range partition.Split([]byte(data), chunkSize) {
					if !q.Enqueue(pctx, c) {
						break
					}
				}
				_ = q.Close()
			}()
			m, err := p.Run(ctx)
			return m, p, err
		}

		convey.Convey("When folding with different worker counts and chunk sizes", func() {
			single, _, err := run(1, len(input), record.ModeRelaxed, input)
			convey.So(err, convey.ShouldBeNil)
			want := stats.Summarize(single)

			convey.Convey("Then every layout should give the same summary", func() {
				for workers := 1; workers <= 5; workers++ {
					for _, size := range []int{1, 7, 20, 64} {
						m, p, err := run(workers, size, record.ModeStrict, input)
						convey.So(err, convey.ShouldBeNil)
						convey.So(stats.Summarize(m), convey.ShouldResemble, want)
						convey.So(p.Size(), convey.ShouldEqual, workers)
						convey.So(p.Progress().Lines, convey.ShouldEqual, int64(5))
						convey.So(p.Progress().Bytes, convey.ShouldEqual, int64(len(input)))
					}
				}
			})
		})

		convey.Convey("When one chunk is malformed in strict mode", func() {
			data := input + "Paris;abc\n" + input
			m, _, err := run(3, 8, record.ModeStrict, data)

			convey.Convey("Then the pool should fail without a result", func() {
				convey.So(m, convey.ShouldBeNil)
				convey.So(errors.Is(err, worker.ErrFold), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Paris;abc")
			})
		})

		convey.Convey("When the worker count is not positive", func() {
			p := worker.NewPool(0, queue.NewChunkQueue())
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
