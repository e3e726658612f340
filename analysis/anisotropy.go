package analysis

import (
	"math"

	"github.com/vsmlab/magcore/curve"
)

// Mu0 is the vacuum permeability in T·m/A.
const Mu0 = 4 * math.Pi * 1e-7

// KuInput supplies the context the Sucksmith-Thompson estimate needs. Ms
// must come from a prior extraction or the user; DemagN is the resolved
// demagnetizing factor (0 disables the internal-field correction).
type KuInput struct {
	// Ms is the saturation magnetization in A/m.
	Ms float64
	// MsStderr is Ms's one-sigma uncertainty, combined in quadrature with
	// the regression error.
	MsStderr float64
	// DemagN corrects the applied field to the internal field
	// H_int = H - N·M before the H/M ratio is formed.
	DemagN float64
}

// SucksmithThompson estimates the uniaxial anisotropy constant from a
// hard-axis magnetization curve over the given window.
//
// Each sample is transformed to (x, y) = (M², H_int/M) and fitted by OLS.
// In SI units the Sucksmith-Thompson relation reads
//
//	H/M = 2·K1/(μ0·Ms²) + 4·K2/(μ0·Ms⁴)·M²
//
// so the intercept maps to K1 = ½·μ0·Ms²·intercept and the anisotropy
// field to Hk = 2·K1/(μ0·Ms) = Ms·intercept. The reported uncertainty
// combines the intercept's standard error with Ms's uncertainty in
// quadrature.
//
// Fails with ErrMissingSaturationMagnetization when Ms is absent and with
// ErrInsufficientFitData below 3 points in the window.
func SucksmithThompson(c *curve.Curve, w Window, in KuInput) (*AnisotropyResult, error) {
	if in.Ms <= 0 {
		return nil, ErrMissingSaturationMagnetization
	}

	selected := selectWindow(c.Points, w)

	xs := make([]float64, 0, len(selected))
	ys := make([]float64, 0, len(selected))
	for _, p := range selected {
		if p.M == 0 {
			continue // H/M undefined at zero moment
		}

		hint := p.H - in.DemagN*p.M
		xs = append(xs, p.M*p.M)
		ys = append(ys, hint/p.M)
	}

	if len(xs) < 3 {
		return nil, ErrInsufficientFitData
	}

	fit, err := linearFit(xs, ys)
	if err != nil {
		return nil, err
	}

	k1 := 0.5 * Mu0 * in.Ms * in.Ms * fit.intercept

	// Relative errors of the intercept and Ms² add in quadrature.
	var rel2 float64
	if fit.intercept != 0 {
		r := fit.interceptErr / fit.intercept
		rel2 += r * r
	}
	if in.MsStderr > 0 {
		r := 2 * in.MsStderr / in.Ms
		rel2 += r * r
	}

	res := &AnisotropyResult{
		Hk:        in.Ms * fit.intercept,
		Slope:     fit.slope,
		Intercept: fit.intercept,
	}
	res.Method = MethodSucksmithThompson
	res.Value = k1
	res.Stderr = math.Abs(k1) * math.Sqrt(rel2)
	res.Window = w
	res.R2 = fit.r2
	res.N = fit.n

	if in.DemagN == 0 {
		res.Warnings = append(res.Warnings, "no demagnetization correction applied")
	}

	return res, nil
}
