package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goadapp/proxybench/api"
	log "github.com/inconshreveable/log15"
	"golang.org/x/sync/semaphore"
)

// Executor performs one request attempt. Implementations must be safe for
// concurrent use.
type Executor interface {
	Execute(ctx context.Context) (api.BenchmarkResult, error)
}

// Dispatcher runs a fixed number of attempts with at most Concurrency of
// them in flight at once.
type Dispatcher struct {
	executor    Executor
	requests    int
	concurrency int
	logger      log.Logger
	onProgress  func(api.Progress)
}

type outcome struct {
	worker int
	result api.BenchmarkResult
	err    error
}

// New returns a Dispatcher. A concurrency below 1 is treated as 1.
func New(executor Executor, requests, concurrency int, logger log.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if requests < 0 {
		requests = 0
	}
	if logger == nil {
		logger = log.New()
		logger.SetHandler(log.DiscardHandler())
	}
	return &Dispatcher{
		executor:    executor,
		requests:    requests,
		concurrency: concurrency,
		logger:      logger,
	}
}

// OnProgress registers fn to be called after every attempt. Calls are made
// from a single goroutine, never concurrently.
func (d *Dispatcher) OnProgress(fn func(api.Progress)) {
	d.onProgress = fn
}

// Run schedules every attempt and blocks until all of them reached a terminal
// state. Failed attempts are logged and left out of the returned slice, so
// the number of failures is requests - len(results). Results are unordered.
//
// Only min(concurrency, requests) workers are started; they claim attempts
// from a shared counter until none are left. Once ctx is done the workers
// stop claiming and every unclaimed attempt counts as failed.
func (d *Dispatcher) Run(ctx context.Context) []api.BenchmarkResult {
	results := make([]api.BenchmarkResult, 0)
	if d.requests == 0 {
		return results
	}

	workers := d.concurrency
	if workers > d.requests {
		workers = d.requests
	}
	sem := semaphore.NewWeighted(int64(workers))
	outcomes := make(chan outcome, workers)
	var claimed int64
	var wg sync.WaitGroup

	d.logger.Debug("Dispatching requests", "requests", d.requests, "concurrency", workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			d.work(ctx, sem, worker, &claimed, outcomes)
		}(i)
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	progress := api.Progress{Requested: d.requests}
	for o := range outcomes {
		progress.Done++
		if o.err != nil {
			progress.Failed++
			d.logger.Debug("Request failed", "worker", o.worker, "err", o.err)
		} else {
			results = append(results, o.result)
		}
		d.report(progress)
	}
	if skipped := d.requests - progress.Done; skipped > 0 {
		progress.Done += skipped
		progress.Failed += skipped
		d.logger.Debug("Batch cancelled", "skipped", skipped, "err", ctx.Err())
		d.report(progress)
	}
	d.logger.Debug("All requests finished", "completed", len(results), "failed", progress.Failed)
	return results
}

func (d *Dispatcher) report(progress api.Progress) {
	if d.onProgress != nil {
		d.onProgress(progress)
	}
}

func (d *Dispatcher) work(ctx context.Context, sem *semaphore.Weighted, worker int, claimed *int64, outcomes chan<- outcome) {
	for atomic.AddInt64(claimed, 1) <= int64(d.requests) {
		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		result, err := d.executor.Execute(ctx)
		sem.Release(1)
		outcomes <- outcome{worker: worker, result: result, err: err}
	}
}
