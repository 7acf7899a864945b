package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultBatchWorkers   = 4
	MaxBatchWorkers       = 16
	DefaultBatchRateLimit = 50.0
)

// Resolver resolves a single query. Implemented by [search.Resolver].
type Resolver interface {
	Resolve(ctx context.Context, query string, verbose bool) (*search.Report, error)
}

// BatchOpts configures a batch run.
type BatchOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 16)
	RateLimit  float64 // Queries per second (default: 50)
	Verbose    bool    // Record attempts in each report
}

// QueryResult is the outcome of one query in a batch.
type QueryResult struct {
	Query  string
	Report *search.Report // nil when Error is set
	Error  error
}

// BatchResult contains every query outcome, in input order.
type BatchResult struct {
	Total     int
	Matched   int
	Unmatched int
	Failed    int
	Results   []QueryResult
}

// Reports returns the successful reports in input order.
func (b *BatchResult) Reports() []*search.Report {
	reports := make([]*search.Report, 0, len(b.Results))
	for _, r := range b.Results {
		if r.Report != nil {
			reports = append(reports, r.Report)
		}
	}
	return reports
}

type batchJob struct {
	index int
	query string
}

type batchOutcome struct {
	index  int
	result QueryResult
}

// BatchResolver resolves many queries concurrently with a worker pool and rate limiting.
type BatchResolver struct {
	resolver Resolver
}

// NewBatchResolver creates a BatchResolver around resolver.
func NewBatchResolver(resolver Resolver) *BatchResolver {
	return &BatchResolver{resolver: resolver}
}

// Run resolves queries and returns their results in input order.
//
// A failing query is recorded in its [QueryResult] and does not stop the batch. If ctx is canceled, queries not yet
// dispatched are marked with the context error and Run returns that error with the partial result.
func (b *BatchResolver) Run(ctx context.Context, prog chan<- ProgressUpdate, queries []string, opts BatchOpts) (*BatchResult, error) {
	if b.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not initialized", shared.ErrInvalidArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultBatchWorkers
	}
	if opts.NumWorkers > MaxBatchWorkers {
		opts.NumWorkers = MaxBatchWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultBatchRateLimit
	}

	total := len(queries)
	result := &BatchResult{Total: total, Results: make([]QueryResult, total)}
	dispatched := make([]bool, total)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan batchJob, total)
	outcomes := make(chan batchOutcome, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go b.worker(ctx, &wg, jobs, outcomes, opts.Verbose)
	}

	for i, q := range queries {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		dispatched[i] = true
		jobs <- batchJob{index: i, query: q}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for out := range outcomes {
		completed++
		result.Results[out.index] = out.result

		if out.result.Error != nil {
			sendProgress(prog, failedQueryUpdate(completed, total, out.result.Query, out.result.Error))
		} else {
			sendProgress(prog, resolvedQueryUpdate(completed, total, out.result.Query, out.result.Report))
		}
	}

	for i, ok := range dispatched {
		if !ok {
			result.Results[i] = QueryResult{Query: queries[i], Error: fmt.Errorf("not dispatched: %w", ctx.Err())}
		}
	}

	for _, r := range result.Results {
		switch {
		case r.Error != nil:
			result.Failed++
		case r.Report.ResultCount > 0:
			result.Matched++
		default:
			result.Unmatched++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch canceled: %w", err)
	}
	return result, nil
}

// worker resolves queries from jobs until the channel closes.
func (b *BatchResolver) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan batchJob, outcomes chan<- batchOutcome, verbose bool) {
	defer wg.Done()

	for job := range jobs {
		report, err := b.resolver.Resolve(ctx, job.query, verbose)
		res := QueryResult{Query: job.query, Report: report, Error: err}
		if err != nil {
			res.Report = nil
		}
		outcomes <- batchOutcome{index: job.index, result: res}
	}
}
