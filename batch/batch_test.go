package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/units"
)

func testJobs(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		points := []curve.Point{
			curve.Pt(-100, -50),
			curve.Pt(100, 50),
		}
		label := fmt.Sprintf("curve-%d", i)
		c := curve.New(label, points, units.FieldAm, units.MomentAm2)
		jobs[i] = NewJob(label, c, nil)
	}

	return jobs
}

func TestNewJobAssignsUniqueIDs(t *testing.T) {
	jobs := testJobs(10)

	seen := make(map[string]bool)
	for _, job := range jobs {
		id := job.ID.String()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestRunPreservesOrder(t *testing.T) {
	runner, err := NewRunner(func(_ context.Context, job Job) (string, error) {
		return job.Label, nil
	}, WithWorkers(4))
	require.NoError(t, err)

	jobs := testJobs(32)
	outcomes := runner.Run(context.Background(), jobs)

	require.Len(t, outcomes, len(jobs))
	for i, out := range outcomes {
		require.NoError(t, out.Err)
		require.Equal(t, jobs[i].Label, out.Result)
		require.Equal(t, jobs[i].ID, out.Job.ID)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	boom := errors.New("bad curve")

	runner, err := NewRunner(func(_ context.Context, job Job) (int, error) {
		if job.Label == "curve-3" {
			return 0, boom
		}

		return job.Curve.Len(), nil
	}, WithWorkers(2))
	require.NoError(t, err)

	outcomes := runner.Run(context.Background(), testJobs(8))

	var failed int
	for i, out := range outcomes {
		if i == 3 {
			require.ErrorIs(t, out.Err, boom)
			failed++
			continue
		}
		require.NoError(t, out.Err)
		require.Equal(t, 2, out.Result)
	}
	require.Equal(t, 1, failed)
}

func TestRunBoundsConcurrency(t *testing.T) {
	const workers = 3

	var mu sync.Mutex
	var active, peak int

	runner, err := NewRunner(func(_ context.Context, _ Job) (struct{}, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()

		return struct{}{}, nil
	}, WithWorkers(workers))
	require.NoError(t, err)

	runner.Run(context.Background(), testJobs(20))

	require.LessOrEqual(t, peak, workers)
	require.Greater(t, peak, 0)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{}, 64)
	runner, err := NewRunner(func(ctx context.Context, _ Job) (struct{}, error) {
		started <- struct{}{}
		<-ctx.Done()

		return struct{}{}, ctx.Err()
	}, WithWorkers(2))
	require.NoError(t, err)

	jobs := testJobs(16)

	done := make(chan []Outcome[struct{}])
	go func() { done <- runner.Run(ctx, jobs) }()

	<-started
	<-started
	cancel()

	outcomes := <-done
	require.Len(t, outcomes, len(jobs))

	var cancelled int
	for _, out := range outcomes {
		if errors.Is(out.Err, context.Canceled) {
			cancelled++
		}
	}
	// The two in-flight jobs observe the cancellation, everything not yet
	// submitted is cut off with the context error.
	require.GreaterOrEqual(t, cancelled, len(jobs)-2)
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner[int](nil)
	require.Error(t, err)

	_, err = NewRunner(func(_ context.Context, _ Job) (int, error) { return 0, nil }, WithWorkers(0))
	require.Error(t, err)
}

func TestRunWithLogger(t *testing.T) {
	runner, err := NewRunner(func(_ context.Context, job Job) (int, error) {
		return job.Curve.Len(), nil
	}, WithLogger(zerolog.Nop()), WithWorkers(1))
	require.NoError(t, err)

	outcomes := runner.Run(context.Background(), testJobs(3))
	for _, out := range outcomes {
		require.NoError(t, out.Err)
		require.Greater(t, out.Elapsed, time.Duration(0))
	}
}

func TestRunEmptyJobs(t *testing.T) {
	runner, err := NewRunner(func(_ context.Context, _ Job) (int, error) { return 0, nil })
	require.NoError(t, err)

	outcomes := runner.Run(context.Background(), nil)
	require.Empty(t, outcomes)
}
