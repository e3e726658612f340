// Package batch fans curve analyses out over a bounded worker pool.
//
// A Job ties one measured curve to its sample description and a unique ID.
// The Runner applies a caller-supplied analysis function to every job,
// collecting per-job outcomes so a single bad curve never aborts the run:
//
//	runner, _ := batch.NewRunner(func(ctx context.Context, job batch.Job) (*analysis.CrossingResult, error) {
//		return analysis.Coercivity(job.Curve)
//	}, batch.WithWorkers(4))
//
//	outcomes := runner.Run(ctx, jobs)
//
// Outcomes arrive in input order regardless of worker scheduling.
package batch
