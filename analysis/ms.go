package analysis

import (
	"math"

	"github.com/vsmlab/magcore/curve"
)

// MsMethod selects the saturation-magnetization extraction method. The set
// is closed: extend it here rather than registering methods at runtime.
type MsMethod uint8

const (
	MsLinear  MsMethod = 0x1 // MsLinear: high-field OLS, intercept at zero inverse field.
	MsPlateau MsMethod = 0x2 // MsPlateau: arithmetic mean over the high-field window.
)

func (m MsMethod) String() string {
	switch m {
	case MsLinear:
		return "linear"
	case MsPlateau:
		return "plateau"
	default:
		return "unknown"
	}
}

// SaturationMagnetization extracts Ms over the given high-field window
// (applied to |H|, so both tails contribute when present).
//
// MsLinear folds the loop onto one quadrant (x=|H|, y=sign(H)·M) and fits
// y = Ms + χ·x: the intercept extrapolates the ferromagnetic part to zero
// field slope-free, the slope is the high-field susceptibility. MsPlateau
// averages the folded moment and reports the window's standard deviation
// as the uncertainty.
//
// Both methods need at least 2 samples in the window, failing with
// ErrInsufficientFitData otherwise. Unit normalization is the caller's
// explicit step (curve.Normalize); this extractor works in whatever unit
// the curve carries.
func SaturationMagnetization(c *curve.Curve, w Window, method MsMethod) (*MsResult, error) {
	selected := selectWindow(c.Points, w)
	if len(selected) < 2 {
		return nil, ErrInsufficientFitData
	}

	// Fold both tails onto the positive quadrant so a symmetric loop's
	// tails reinforce rather than cancel.
	xs := make([]float64, len(selected))
	ys := make([]float64, len(selected))
	for i, p := range selected {
		xs[i] = math.Abs(p.H)
		ys[i] = math.Copysign(1, p.H) * p.M
	}

	res := &MsResult{}
	res.Window = w
	res.N = len(selected)

	switch method {
	case MsPlateau:
		res.Method = MethodPlateauAverage
		res.Value = mean(ys)
		res.Stderr = stddev(ys)

		return res, nil
	default:
		fit, err := linearFit(xs, ys)
		if err != nil {
			return nil, err
		}

		res.Method = MethodLinearExtrapolation
		res.Value = fit.intercept
		res.Stderr = fit.interceptErr
		res.R2 = fit.r2
		res.Chi = fit.slope

		return res, nil
	}
}
