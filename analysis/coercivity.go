package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/internal/options"
)

// Coercivity extracts Hc: the field magnitude at which each branch's
// moment crosses zero. The reported value is the mean of the branch
// magnitudes; the signed branch crossings stay in the result as
// diagnostics. Asymmetry beyond the configured tolerance attaches a
// warning, never an error.
func Coercivity(c *curve.Curve, opts ...CrossingOption) (*CrossingResult, error) {
	return branchCrossing(c, crossField, opts...)
}

// Remanence extracts Mr: the moment at which each branch's field crosses
// zero, averaged over branch magnitudes, with the same asymmetry-warning
// policy as Coercivity.
func Remanence(c *curve.Curve, opts ...CrossingOption) (*CrossingResult, error) {
	return branchCrossing(c, crossMoment, opts...)
}

type crossFunc func(b *curve.Branch, interp curve.Interpolation) (float64, error)

func crossField(b *curve.Branch, interp curve.Interpolation) (float64, error) {
	return b.CrossingH(0, interp)
}

func crossMoment(b *curve.Branch, interp curve.Interpolation) (float64, error) {
	return b.CrossingM(0, interp)
}

func branchCrossing(c *curve.Curve, cross crossFunc, opts ...CrossingOption) (*CrossingResult, error) {
	cfg := defaultCrossingConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	branches, err := curve.SplitBranches(c)
	if err != nil {
		return nil, err
	}
	asc, desc := curve.Principal(branches)

	res := &CrossingResult{
		Ascending:  math.NaN(),
		Descending: math.NaN(),
	}
	res.Method = MethodCrossing
	res.Window = fieldDomain(c)

	var magnitudes []float64
	var missing int

	if asc != nil {
		if v, err := cross(asc, cfg.Interp); err == nil {
			res.Ascending = v
			magnitudes = append(magnitudes, math.Abs(v))
		} else if errors.Is(err, curve.ErrNoCrossingFound) {
			missing++
		} else {
			return nil, err
		}
	}
	if desc != nil {
		if v, err := cross(desc, cfg.Interp); err == nil {
			res.Descending = v
			magnitudes = append(magnitudes, math.Abs(v))
		} else if errors.Is(err, curve.ErrNoCrossingFound) {
			missing++
		} else {
			return nil, err
		}
	}

	if len(magnitudes) == 0 {
		return nil, curve.ErrNoCrossingFound
	}

	res.Value = mean(magnitudes)
	res.N = len(magnitudes)

	switch {
	case len(magnitudes) == 2:
		diff := math.Abs(magnitudes[0] - magnitudes[1])
		res.Stderr = diff / 2

		tol := cfg.AsymmetryTol
		if tol <= 0 {
			tol = 0.02 * math.Abs(res.Value)
		}
		if diff > tol {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("branch asymmetry %g exceeds tolerance %g", diff, tol))
		}
	case missing > 0:
		res.Warnings = append(res.Warnings, "crossing found on one branch only")
	default:
		res.Warnings = append(res.Warnings, "single-branch curve: no asymmetry check")
	}

	return res, nil
}

// fieldDomain reports the |H| span of the curve as the crossing's search
// window.
func fieldDomain(c *curve.Curve) Window {
	if c.Len() == 0 {
		return Window{}
	}

	maxAbs := 0.0
	for _, p := range c.Points {
		if a := math.Abs(p.H); a > maxAbs {
			maxAbs = a
		}
	}

	return Window{Min: 0, Max: maxAbs}
}
