package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type job struct {
	key string
	fn  func(ctx context.Context)
}

// Dispatcher runs session revalidation jobs on a fixed set of workers,
// sharding by session key so re-checks for the same session execute in the
// order they were scheduled. It satisfies session.Runner.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Run enqueues one revalidation job for key. The call never blocks: when the
// responsible worker's buffer is full the job is dropped, which is safe
// because a dropped re-check only means the next read verifies synchronously.
func (d *Dispatcher) Run(key string, fn func(ctx context.Context)) {
	select {
	case d.workers[d.shardIndex(key)] <- job{key: key, fn: fn}:
	default:
		d.log.Debug().Msg("revalidation queue full, dropping job")
	}
}

// Depth reports the total number of queued jobs across all workers.
func (d *Dispatcher) Depth() int {
	total := 0
	for _, ch := range d.workers {
		total += len(ch)
	}
	return total
}

// shardIndex maps a session key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			j.fn(ctx)
		}
	}
}
