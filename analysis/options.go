package analysis

import (
	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/internal/options"
)

// CrossingConfig tunes the Hc/Mr extractors.
type CrossingConfig struct {
	// Interp selects the crossing interpolation.
	Interp curve.Interpolation
	// AsymmetryTol is the absolute tolerance on the difference between
	// the two branch magnitudes before an asymmetry warning is attached.
	// Zero selects the default of 2% of the reported value.
	AsymmetryTol float64
}

func defaultCrossingConfig() CrossingConfig {
	return CrossingConfig{Interp: curve.InterpLinear}
}

// CrossingOption is a functional option for the Hc/Mr extractors.
type CrossingOption = options.Option[*CrossingConfig]

// WithSpline refines each crossing with a local cubic spline when at least
// 4 points surround the bracket.
func WithSpline() CrossingOption {
	return options.NoError(func(cfg *CrossingConfig) {
		cfg.Interp = curve.InterpSpline
	})
}

// WithAsymmetryTolerance sets the absolute branch-asymmetry tolerance in
// the curve's field (Hc) or moment (Mr) unit.
func WithAsymmetryTolerance(tol float64) CrossingOption {
	return options.NoError(func(cfg *CrossingConfig) {
		cfg.AsymmetryTol = tol
	})
}
