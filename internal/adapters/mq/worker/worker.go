// Package worker runs queued linkage requests on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pacematch/internal/domain/model"
	"github.com/okian/pacematch/pkg/logger"
	"github.com/okian/pacematch/pkg/metrics"
)

const defaultWorkerCount = 2

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue() <-chan model.RunRequest
}

// acker is implemented by queues that track dequeues.
type acker interface {
	Ack()
}

// Handler executes one request.
type Handler interface {
	Handle(ctx context.Context, r model.RunRequest) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, r model.RunRequest) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, r model.RunRequest) error { return f(ctx, r) }

// Pool manages a fixed number of workers reading one queue.
type Pool struct {
	queue   Queue
	handler Handler
	size    int
	name    string
	logger  logger.Logger

	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64

	wg       sync.WaitGroup
	started  atomic.Bool
	shutdown chan struct{}
	stopOnce sync.Once
}

// NewPool creates a pool of workerCount workers. Values below 1 use the default.
func NewPool(workerCount int, queue Queue, handler Handler, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		queue:    queue,
		handler:  handler,
		size:     workerCount,
		name:     "worker",
		shutdown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name + "-pool")
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Active returns the number of workers currently running a request.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Processed returns the number of requests handled successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns the number of requests whose handler returned an error.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Start launches the workers. Later calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, p.name+"-"+strconv.Itoa(i))
	}
}

func (p *Pool) run(ctx context.Context, name string) {
	defer p.wg.Done()
	log := p.logger.With(logger.String("worker", name))

	requests := p.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if a, ok := p.queue.(acker); ok {
				a.Ack()
			}
			p.process(ctx, log, r)
		}
	}
}

func (p *Pool) process(ctx context.Context, log logger.Logger, r model.RunRequest) {
	start := time.Now()
	p.setActive(p.active.Add(1))
	defer func() {
		p.setActive(p.active.Add(-1))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	ctx = logger.ContextWith(ctx, logger.String("run_id", r.ID), logger.String("race", r.RaceID))
	if err := p.handler.Handle(ctx, r); err != nil {
		p.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "handler_error")
		log.Error(ctx, "run failed", logger.Error(err))
		return
	}
	p.processed.Add(1)
}

func (p *Pool) setActive(n int64) {
	metrics.UpdateWorkerActiveCount(int(n))
	metrics.UpdateWorkerIdleCount(p.size - int(n))
}

// Shutdown stops the workers and waits for running requests to finish or ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}
