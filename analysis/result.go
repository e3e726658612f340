package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFitData indicates a fit window contains too few
	// samples for the requested method.
	ErrInsufficientFitData = errors.New("insufficient fit data")

	// ErrFitDidNotConverge indicates an iterative fit hit its iteration
	// cap before meeting the convergence tolerance.
	ErrFitDidNotConverge = errors.New("fit did not converge")

	// ErrMissingSaturationMagnetization indicates an anisotropy estimate
	// was requested without a saturation magnetization.
	ErrMissingSaturationMagnetization = errors.New("missing saturation magnetization")

	// ErrWindowDetectionFailed indicates automatic high-field window
	// detection found no acceptable linear tail; callers should fall back
	// to manual window selection.
	ErrWindowDetectionFailed = errors.New("window auto-detection failed")
)

// Method tags the algorithm that produced a FitResult.
type Method uint8

const (
	MethodLinearExtrapolation Method = 0x1 // MethodLinearExtrapolation: high-field OLS, intercept at the field axis.
	MethodPlateauAverage      Method = 0x2 // MethodPlateauAverage: arithmetic mean over a high-field window.
	MethodCrossing            Method = 0x3 // MethodCrossing: interpolated zero crossing per branch.
	MethodSucksmithThompson   Method = 0x4 // MethodSucksmithThompson: H/M vs M² regression.
)

func (m Method) String() string {
	switch m {
	case MethodLinearExtrapolation:
		return "linear-extrapolation"
	case MethodPlateauAverage:
		return "plateau-average"
	case MethodCrossing:
		return "crossing"
	case MethodSucksmithThompson:
		return "sucksmith-thompson"
	default:
		return "unknown"
	}
}

// Window is an inclusive field window applied to |H|: a sample is selected
// when Min <= |H| <= Max. Max <= 0 means unbounded above.
type Window struct {
	Min float64
	Max float64
}

// Contains reports whether the absolute field value falls in the window.
func (w Window) Contains(absH float64) bool {
	if absH < w.Min {
		return false
	}

	return w.Max <= 0 || absH <= w.Max
}

func (w Window) String() string {
	if w.Max <= 0 {
		return fmt.Sprintf("[%g, ∞)", w.Min)
	}

	return fmt.Sprintf("[%g, %g]", w.Min, w.Max)
}

// FitResult is the immutable outcome of a metric extraction: the value,
// its one-sigma uncertainty, the window and sample count the fit used, the
// goodness of fit and the method that produced it. Downstream consumers
// (plots, reports, session files) only read it.
type FitResult struct {
	Value    float64
	Stderr   float64
	Window   Window
	R2       float64
	N        int
	Method   Method
	Warnings []string
}

func (r FitResult) String() string {
	return fmt.Sprintf("FitResult{%s: %g ± %g, n=%d, R²=%.4f, window=%s}",
		r.Method, r.Value, r.Stderr, r.N, r.R2, r.Window)
}

// CrossingResult is a FitResult for Hc or Mr carrying the signed per-branch
// crossings as diagnostics.
type CrossingResult struct {
	FitResult

	// Ascending and Descending are the signed crossing values of each
	// branch; NaN when the branch was absent.
	Ascending  float64
	Descending float64
}

// MsResult is a FitResult for saturation magnetization. Chi is the
// high-field susceptibility slope of the linear-extrapolation method, zero
// for plateau averaging.
type MsResult struct {
	FitResult

	Chi float64
}

// AnisotropyResult is a FitResult for Ku carrying the anisotropy field and
// the raw regression coefficients.
type AnisotropyResult struct {
	FitResult

	// Hk is the anisotropy field in A/m.
	Hk float64
	// Slope and Intercept are the raw coefficients of the H/M vs M²
	// regression.
	Slope     float64
	Intercept float64
}
