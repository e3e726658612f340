package analysis

import (
	"math"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/units"
)

// syntheticLoop builds a noise-free piecewise-linear hysteresis loop with
// exactly known metrics: Hc=100, Mr=50, Ms=200 (field and moment in the
// curve's raw units). The ascending branch crosses zero at +100 with slope
// 0.5, the descending branch is its 180° rotation.
func syntheticLoop() *curve.Curve {
	clamp := func(v float64) float64 {
		return math.Max(-200, math.Min(200, v))
	}
	asc := func(h float64) float64 { return clamp(0.5 * (h - 100)) }
	desc := func(h float64) float64 { return clamp(0.5 * (h + 100)) }

	var points []curve.Point
	for h := 1000.0; h >= -1000; h -= 40 {
		points = append(points, curve.Pt(h, desc(h)))
	}
	for h := -960.0; h <= 1000; h += 40 {
		points = append(points, curve.Pt(h, asc(h)))
	}

	return curve.New("synthetic-loop", points, units.FieldAm, units.MomentAm2)
}

// tanhLoop mimics a measured loop: M = Ms·tanh(H/H0) ± sign-folded, plus a
// paramagnetic slope, sampled densely over ±hmax.
func tanhLoop(ms, h0, chi, hmax float64, n int) *curve.Curve {
	var points []curve.Point
	step := 2 * hmax / float64(n-1)

	for i := 0; i < n; i++ { // descending sweep
		h := hmax - float64(i)*step
		points = append(points, curve.Pt(h, ms*math.Tanh((h+0.02*h0)/h0)+chi*h))
	}
	for i := 1; i < n; i++ { // ascending sweep
		h := -hmax + float64(i)*step
		points = append(points, curve.Pt(h, ms*math.Tanh((h-0.02*h0)/h0)+chi*h))
	}

	return curve.New("tanh-loop", points, units.FieldAm, units.MomentAm2)
}
