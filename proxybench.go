package proxybench

import (
	"context"
	"time"

	"github.com/goadapp/proxybench/api"
	"github.com/goadapp/proxybench/bench/types"
	"github.com/goadapp/proxybench/dispatcher"
	"github.com/goadapp/proxybench/executor"
	"github.com/goadapp/proxybench/result"
	"github.com/goadapp/proxybench/version"
	log "github.com/inconshreveable/log15"
)

// Benchmark runs one batch of requests through a proxy.
type Benchmark struct {
	Config     *types.TestConfig
	logger     log.Logger
	executor   dispatcher.Executor
	onProgress func(api.Progress)
}

// Report is the outcome of a run.
type Report struct {
	Results []api.BenchmarkResult
	Stats   result.AggregateStats
	Elapsed time.Duration
}

// NewBenchmark validates the configuration and builds the request executor.
// Any error returned is a configuration error and no request has been sent.
func NewBenchmark(config *types.TestConfig, logger log.Logger) (*Benchmark, error) {
	if err := config.Check(); err != nil {
		return nil, &executor.ConfigError{Op: "check settings", Err: err}
	}
	exec, err := executor.New(executor.Config{
		URL:       config.URL,
		Proxy:     config.Proxy,
		Timeout:   time.Duration(config.Timeout) * time.Second,
		Headers:   config.HeaderPairs(),
		UserAgent: version.UserAgent(),
		MaxConns:  config.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New()
		logger.SetHandler(log.DiscardHandler())
	}
	return &Benchmark{Config: config, logger: logger, executor: exec}, nil
}

// OnProgress registers fn to receive a snapshot after every attempt.
func (b *Benchmark) OnProgress(fn func(api.Progress)) {
	b.onProgress = fn
}

// Run issues every request and aggregates the completed ones.
func (b *Benchmark) Run(ctx context.Context) Report {
	b.logger.Info("Starting benchmark", "url", b.Config.URL, "proxy", b.Config.Proxy,
		"requests", b.Config.Requests, "concurrency", b.Config.Concurrency)

	d := dispatcher.New(b.executor, b.Config.Requests, b.Config.Concurrency, b.logger.New("component", "dispatcher"))
	d.OnProgress(b.onProgress)

	start := time.Now()
	results := d.Run(ctx)
	report := Report{
		Results: results,
		Stats:   result.Aggregate(results, b.Config.Requests),
		Elapsed: time.Since(start),
	}

	b.logger.Info("Benchmark finished", "completed", report.Stats.Completed,
		"failed", report.Stats.Failed, "elapsed", report.Elapsed)
	return report
}
