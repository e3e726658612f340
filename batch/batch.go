package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/geometry"
	"github.com/vsmlab/magcore/internal/options"
)

// Job is one measured curve queued for analysis, tagged with a unique ID
// so log lines and outcomes can be correlated across a large run.
type Job struct {
	ID     uuid.UUID
	Label  string
	Curve  *curve.Curve
	Sample *geometry.Sample
}

// NewJob tags a curve with a fresh ID. A nil sample is allowed; analyses
// that need physical context will fail per-job, not per-run.
func NewJob(label string, c *curve.Curve, s *geometry.Sample) Job {
	return Job{ID: uuid.New(), Label: label, Curve: c, Sample: s}
}

// Func analyzes one job. It must be safe for concurrent use; the runner
// calls it from multiple workers.
type Func[T any] func(ctx context.Context, job Job) (T, error)

// Outcome pairs a job with its result. Err is set per job: one failed
// curve never aborts the rest of the run.
type Outcome[T any] struct {
	Job     Job
	Result  T
	Err     error
	Elapsed time.Duration
}

// Runner fans a set of jobs out over a bounded worker pool.
type Runner[T any] struct {
	fn      Func[T]
	workers int
	logger  zerolog.Logger
}

type runnerConfig struct {
	workers int
	logger  zerolog.Logger
}

// Option configures a Runner.
type Option = options.Option[*runnerConfig]

// WithWorkers bounds the pool size. The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return options.New(func(cfg *runnerConfig) error {
		if n < 1 {
			return fmt.Errorf("worker count must be >= 1, got %d", n)
		}
		cfg.workers = n

		return nil
	})
}

// WithLogger attaches a logger; every job logs its start, duration and
// failure through it. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(cfg *runnerConfig) {
		cfg.logger = logger
	})
}

// NewRunner builds a runner around the given analysis function.
func NewRunner[T any](fn Func[T], opts ...Option) (*Runner[T], error) {
	if fn == nil {
		return nil, fmt.Errorf("analysis function must not be nil")
	}

	cfg := runnerConfig{
		workers: runtime.NumCPU(),
		logger:  zerolog.Nop(),
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Runner[T]{fn: fn, workers: cfg.workers, logger: cfg.logger}, nil
}

// Run analyzes all jobs and returns one outcome per job, in input order.
// Cancelling the context stops new jobs from starting; jobs never started
// carry the context's error as their outcome.
func (r *Runner[T]) Run(ctx context.Context, jobs []Job) []Outcome[T] {
	outcomes := make([]Outcome[T], len(jobs))

	type indexed struct {
		idx int
		job Job
	}
	queue := make(chan indexed)

	var wg sync.WaitGroup
	workers := r.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				outcomes[item.idx] = r.runOne(ctx, item.job)
			}
		}()
	}

	// Submission loop: cancellation stops feeding the pool; the
	// remaining slots are filled with the context error below.
	submitted := len(jobs)
submit:
	for i, job := range jobs {
		select {
		case queue <- indexed{idx: i, job: job}:
		case <-ctx.Done():
			submitted = i
			break submit
		}
	}
	close(queue)
	wg.Wait()

	for i := submitted; i < len(jobs); i++ {
		outcomes[i] = Outcome[T]{Job: jobs[i], Err: ctx.Err()}
	}

	return outcomes
}

func (r *Runner[T]) runOne(ctx context.Context, job Job) Outcome[T] {
	r.logger.Debug().
		Stringer("job_id", job.ID).
		Str("label", job.Label).
		Msg("job started")

	start := time.Now()
	result, err := r.fn(ctx, job)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error().
			Stringer("job_id", job.ID).
			Str("label", job.Label).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("job failed")
	} else {
		r.logger.Info().
			Stringer("job_id", job.ID).
			Str("label", job.Label).
			Dur("elapsed", elapsed).
			Msg("job finished")
	}

	return Outcome[T]{Job: job, Result: result, Err: err, Elapsed: elapsed}
}
