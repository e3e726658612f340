// Package magcore analyzes magnetometry curves: hysteresis-loop metrics,
// anisotropy estimates and background correction for VSM/SQUID data.
//
// The library is organized in layers. The low-level packages are usable on
// their own; this package ties them together into a one-call pipeline.
//
// # Core Features
//
//   - CGS/SI unit conversion with explicit physical context (units)
//   - Branch splitting and zero-crossing location on raw loops (curve)
//   - Coercivity, remanence and saturation extraction (analysis)
//   - Sucksmith-Thompson anisotropy with demagnetization correction
//   - Linear, Langevin and Brillouin background subtraction
//   - Spheroid/thin-film demagnetizing factors (geometry)
//   - Concurrent batch analysis with per-job outcomes (batch)
//   - Compressed binary session snapshots (session)
//
// # Basic Usage
//
// Analyzing a single measured loop:
//
//	import "github.com/vsmlab/magcore"
//
//	loop := curve.New("film-17", points, units.FieldOe, units.MomentEmu)
//	sample := &geometry.Sample{
//	    Shape:     geometry.ShapeThinFilm,
//	    Mass:      2.1e-6,
//	    Density:   8900,
//	    Thickness: 50e-9,
//	    Area:      2.5e-5,
//	}
//
//	report, err := magcore.AnalyzeLoop(loop,
//	    magcore.WithSample(sample),
//	    magcore.WithTargetUnit(units.MomentAPerM),
//	    magcore.WithBackground(analysis.BackgroundLinear),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Hc = %v\n", report.Coercivity)
//
// Persisting the results:
//
//	snap := &session.Snapshot{
//	    CreatedAt: time.Now(),
//	    Curves:    []*curve.Curve{report.Curve},
//	    Metrics:   report.Metrics(),
//	}
//	data, err := snap.Encode(session.CompressionZstd)
//
// # Package Structure
//
// This package wraps the analysis pipeline for the common case. For
// fine-grained control (custom windows, per-branch crossings, raw fits)
// use the curve and analysis packages directly.
package magcore

import (
	"fmt"

	"github.com/vsmlab/magcore/analysis"
	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/geometry"
	"github.com/vsmlab/magcore/internal/options"
	"github.com/vsmlab/magcore/session"
	"github.com/vsmlab/magcore/units"
)

// LoopReport is the outcome of the standard loop pipeline. Metric pointers
// are nil when that extraction failed; the failure reason is recorded in
// Skipped so one bad metric never hides the others.
type LoopReport struct {
	// Curve is the curve the metrics were extracted from: canonicalized,
	// unit-normalized and background-corrected as configured.
	Curve *curve.Curve
	// Window is the high-field window used for saturation and background
	// fits.
	Window analysis.Window
	// Background is the fitted model, nil when subtraction was off.
	Background *analysis.BackgroundModel

	Coercivity *analysis.CrossingResult
	Remanence  *analysis.CrossingResult
	Saturation *analysis.MsResult

	// Skipped lists metrics that could not be extracted and why.
	Skipped []string
}

// Metrics flattens the report for session persistence.
func (r *LoopReport) Metrics() []session.Metric {
	id := session.CurveID(r.Curve.Label)

	var out []session.Metric
	if r.Coercivity != nil {
		out = append(out, toMetric(id, "coercivity", r.Coercivity.FitResult))
	}
	if r.Remanence != nil {
		out = append(out, toMetric(id, "remanence", r.Remanence.FitResult))
	}
	if r.Saturation != nil {
		out = append(out, toMetric(id, "saturation-magnetization", r.Saturation.FitResult))
	}

	return out
}

// BackgroundRecord flattens the fitted background for session persistence.
// Nil when subtraction was off.
func (r *LoopReport) BackgroundRecord() *session.Background {
	if r.Background == nil {
		return nil
	}

	m := r.Background

	return &session.Background{
		CurveID:     session.CurveID(r.Curve.Label),
		Kind:        m.Kind.String(),
		WindowMin:   m.Window.Min,
		WindowMax:   m.Window.Max,
		Chi:         m.Chi,
		Intercept:   m.Intercept,
		Msat:        m.Msat,
		Mu:          m.Mu,
		SpinJ:       m.SpinJ,
		Temperature: m.Temperature,
		R2:          m.R2,
	}
}

func toMetric(id uint64, name string, f analysis.FitResult) session.Metric {
	return session.Metric{
		CurveID:   id,
		Name:      name,
		Method:    f.Method.String(),
		WindowMin: f.Window.Min,
		WindowMax: f.Window.Max,
		Value:     f.Value,
		Stderr:    f.Stderr,
		R2:        f.R2,
		N:         uint32(f.N),
	}
}

type loopConfig struct {
	sample       *geometry.Sample
	target       units.MomentUnit
	smoothWindow int
	smoothOrder  int
	background   analysis.BackgroundKind
	bgOptions    []analysis.BackgroundOption
	window       analysis.Window
	windowFrac   float64
	msMethod     analysis.MsMethod
	crossOptions []analysis.CrossingOption
}

func defaultLoopConfig() loopConfig {
	return loopConfig{
		windowFrac: 0.15,
		msMethod:   analysis.MsLinear,
	}
}

// LoopOption configures AnalyzeLoop.
type LoopOption = options.Option[*loopConfig]

// WithSample supplies the physical sample description used for unit
// normalization and, when needed, volume/mass context.
func WithSample(s *geometry.Sample) LoopOption {
	return options.NoError(func(cfg *loopConfig) {
		cfg.sample = s
	})
}

// WithTargetUnit normalizes the loop to the given SI moment unit before
// analysis. The default keeps the curve's own quantity kind and only maps
// it to its SI equivalent.
func WithTargetUnit(u units.MomentUnit) LoopOption {
	return options.NoError(func(cfg *loopConfig) {
		cfg.target = u
	})
}

// WithSmoothing applies a Savitzky-Golay filter to the moment channel
// before metric extraction.
func WithSmoothing(window, order int) LoopOption {
	return options.New(func(cfg *loopConfig) error {
		if window < 3 || window%2 == 0 {
			return fmt.Errorf("smoothing window must be odd and >= 3, got %d", window)
		}
		if order < 1 || order >= window {
			return fmt.Errorf("smoothing order must be in [1, %d), got %d", window, order)
		}
		cfg.smoothWindow = window
		cfg.smoothOrder = order

		return nil
	})
}

// WithBackground fits and subtracts a background of the given kind before
// metric extraction.
func WithBackground(kind analysis.BackgroundKind, opts ...analysis.BackgroundOption) LoopOption {
	return options.NoError(func(cfg *loopConfig) {
		cfg.background = kind
		cfg.bgOptions = opts
	})
}

// WithWindow pins the high-field window instead of detecting it.
func WithWindow(w analysis.Window) LoopOption {
	return options.NoError(func(cfg *loopConfig) {
		cfg.window = w
	})
}

// WithWindowFraction tunes automatic window detection: the top fraction of
// the loop by |H| is treated as the saturated tail. The default is 0.15.
func WithWindowFraction(frac float64) LoopOption {
	return options.New(func(cfg *loopConfig) error {
		if frac <= 0 || frac >= 1 {
			return fmt.Errorf("window fraction must be in (0, 1), got %g", frac)
		}
		cfg.windowFrac = frac

		return nil
	})
}

// WithMsMethod selects the saturation extraction method; the default is
// linear high-field extrapolation.
func WithMsMethod(m analysis.MsMethod) LoopOption {
	return options.NoError(func(cfg *loopConfig) {
		cfg.msMethod = m
	})
}

// WithSplineCrossings refines the Hc/Mr crossings with a local cubic
// spline.
func WithSplineCrossings() LoopOption {
	return options.NoError(func(cfg *loopConfig) {
		cfg.crossOptions = append(cfg.crossOptions, analysis.WithSpline())
	})
}

// AnalyzeLoop runs the standard pipeline over one measured loop:
// canonicalize, normalize units, optionally smooth and subtract a
// background, then extract coercivity, remanence and saturation.
//
// Pipeline-level failures (bad configuration, impossible unit conversion,
// undetectable window) return an error. Per-metric failures do not: the
// corresponding report field stays nil and the reason is appended to
// Skipped.
func AnalyzeLoop(c *curve.Curve, opts ...LoopOption) (*LoopReport, error) {
	cfg := defaultLoopConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	work := c.Canonicalize()

	target := cfg.target
	if target == 0 {
		target = units.SITag(c.MomentUnit)
	}
	conv := units.NewConverter(units.SI)
	work, err := work.Normalize(conv, cfg.sample, target)
	if err != nil {
		return nil, fmt.Errorf("normalize %q: %w", c.Label, err)
	}

	if cfg.smoothWindow > 0 {
		work, err = work.Smooth(cfg.smoothWindow, cfg.smoothOrder)
		if err != nil {
			return nil, fmt.Errorf("smooth %q: %w", c.Label, err)
		}
	}

	window := cfg.window
	if window == (analysis.Window{}) {
		window, err = analysis.AutoWindow(work, cfg.windowFrac)
		if err != nil {
			return nil, fmt.Errorf("detect window for %q: %w", c.Label, err)
		}
	}

	report := &LoopReport{Window: window}

	if cfg.background != 0 {
		model, err := analysis.FitBackground(work, window, cfg.background, cfg.bgOptions...)
		if err != nil {
			return nil, fmt.Errorf("fit %s background for %q: %w", cfg.background, c.Label, err)
		}
		report.Background = model
		work = model.Subtract(work)
	}

	report.Curve = work

	if hc, err := analysis.Coercivity(work, cfg.crossOptions...); err == nil {
		report.Coercivity = hc
	} else {
		report.Skipped = append(report.Skipped, fmt.Sprintf("coercivity: %s", err))
	}
	if mr, err := analysis.Remanence(work, cfg.crossOptions...); err == nil {
		report.Remanence = mr
	} else {
		report.Skipped = append(report.Skipped, fmt.Sprintf("remanence: %s", err))
	}
	if ms, err := analysis.SaturationMagnetization(work, window, cfg.msMethod); err == nil {
		report.Saturation = ms
	} else {
		report.Skipped = append(report.Skipped, fmt.Sprintf("saturation: %s", err))
	}

	return report, nil
}

// Anisotropy estimates K1 from a hard-axis curve using the pipeline's
// normalization and the report's saturation value. The demagnetizing
// factor is resolved from the sample geometry.
func Anisotropy(hardAxis *curve.Curve, report *LoopReport, s *geometry.Sample) (*analysis.AnisotropyResult, error) {
	if report == nil || report.Saturation == nil {
		return nil, analysis.ErrMissingSaturationMagnetization
	}

	work := hardAxis.Canonicalize()
	conv := units.NewConverter(units.SI)
	work, err := work.Normalize(conv, s, units.MomentAPerM)
	if err != nil {
		return nil, fmt.Errorf("normalize %q: %w", hardAxis.Label, err)
	}

	in := analysis.KuInput{
		Ms:       report.Saturation.Value,
		MsStderr: report.Saturation.Stderr,
	}
	if s != nil {
		in.DemagN = geometry.Demag(*s).N
	}

	return analysis.SucksmithThompson(work, report.Window, in)
}
