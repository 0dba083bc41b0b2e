// Package worker delivers outbox jobs to the append store and records each
// outcome in the delivery ledger.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/roster/internal/adapters/mq/queue"
	"github.com/okian/roster/internal/domain/delivery"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/types"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Sender delivers one record and returns the store's structured result.
type Sender interface {
	Append(ctx context.Context, rec model.Record) (types.AppendResult, error)
}

// Reporter receives classified delivery outcomes.
type Reporter interface {
	Record(o delivery.Outcome)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its queue is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	sender   Sender
	reporter Reporter
	name     string
	handled  *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sender Sender, reporter Reporter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sender:   sender,
		reporter: reporter,
		name:     "worker",
		handled:  &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker after the job in flight.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process delivers one job. Every job ends with exactly one outcome
// reported; there are no retries.
func (w *InMemoryWorker) process(ctx context.Context, j Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	res, err := w.sender.Append(ctx, j.Record)
	metrics.RecordDispatchLatency(float64(time.Since(start).Milliseconds()))

	o := Classify(res, err)
	o.ID = j.Record.ID
	o.JobID = j.ID
	o.At = time.Now()
	w.reporter.Record(o)
	w.handled.Add(1)
	metrics.RecordDispatchOutcome(string(o.Status))

	switch o.Status {
	case delivery.StatusAccepted:
		w.logger.Debug(ctx, "record delivered", logger.String("id", o.ID), logger.String("job", j.ID))
	case delivery.StatusDuplicate:
		w.logger.Info(ctx, "store already had record", logger.String("id", o.ID))
	default:
		metrics.RecordErrorByComponent("worker", string(o.Status))
		w.logger.Warn(ctx, "record not delivered",
			logger.String("id", o.ID),
			logger.String("status", string(o.Status)),
			logger.String("error", o.Error),
		)
	}
}

// Classify maps a send result to a delivery outcome.
func Classify(res types.AppendResult, err error) delivery.Outcome {
	switch {
	case err != nil:
		return delivery.Outcome{Status: delivery.StatusFailed, Error: err.Error()}
	case res.Success:
		return delivery.Outcome{Status: delivery.StatusAccepted}
	case res.Code == types.CodeDuplicate:
		return delivery.Outcome{Status: delivery.StatusDuplicate, Error: res.Error}
	case res.Code == types.CodeBadRequest, res.Code == types.CodeRejected:
		return delivery.Outcome{Status: delivery.StatusRejected, Error: res.Error}
	default:
		return delivery.Outcome{Status: delivery.StatusFailed, Error: res.Error}
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	cancel       context.CancelFunc
	shutdown     chan struct{}
	shutdownOnce sync.Once
	started      atomic.Bool

	handled       atomic.Int64
	lastCount     int64
	lastRateCheck time.Time

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses
// twice the number of CPUs.
func NewPool(workerCount int, q Queue, sender Sender, reporter Reporter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:       make([]*InMemoryWorker, workerCount),
		queue:         q,
		shutdown:      make(chan struct{}),
		lastRateCheck: time.Now(),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, sender, reporter, workerOpts...)
		w.handled = &p.handled
		p.workers[i] = w
	}
	p.logger = logger.Get().Named("worker-pool")

	metrics.UpdateDispatchWorkers(workerCount)
	metrics.UpdateDispatchesPerSecond(0)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Handled returns the number of jobs processed so far.
func (p *Pool) Handled() int64 { return p.handled.Load() }

// Start starts all workers in the pool. It is a no-op after the first call.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	go p.startMetricsUpdater(runCtx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	count := p.handled.Load()
	if secs := now.Sub(p.lastRateCheck).Seconds(); secs > 0 {
		metrics.UpdateDispatchesPerSecond(float64(count-p.lastCount) / secs)
	}
	p.lastCount = count
	p.lastRateCheck = now
}

// Stop closes the queue and stops all workers after their job in flight,
// abandoning jobs still queued.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if !p.started.Load() {
		return
	}
	for _, w := range p.workers {
		_ = w.Shutdown(context.Background())
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// Shutdown closes the queue and waits for the workers to drain it. If ctx
// expires first, in-flight sends are canceled, the remaining jobs are
// abandoned and the context error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	defer p.shutdownOnce.Do(func() { close(p.shutdown) })

	if !p.started.Load() {
		return nil
	}

	var timedOut error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			if timedOut == nil {
				p.logger.Warn(ctx, "drain timed out, canceling deliveries", logger.Int("worker_id", i))
				timedOut = fmt.Errorf("drain outbox: %w", ctx.Err())
				p.cancel()
			}
			<-w.done
		}
	}
	p.cancel()
	return timedOut
}
