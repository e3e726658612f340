package analysis

import (
	"math"

	"github.com/vsmlab/magcore/curve"
)

// linFit is an ordinary least-squares line fit y = intercept + slope*x with
// the standard error of both coefficients.
type linFit struct {
	slope        float64
	intercept    float64
	slopeErr     float64
	interceptErr float64
	r2           float64
	n            int
}

// linearFit performs OLS on the given series. Requires len >= 2; with
// exactly 2 points the standard errors are zero (the fit is exact).
func linearFit(xs, ys []float64) (linFit, error) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return linFit{}, ErrInsufficientFitData
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return linFit{}, ErrInsufficientFitData
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		r := ys[i] - (intercept + slope*xs[i])
		ssRes += r * r
		d := ys[i] - meanY
		ssTot += d * d
	}

	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	fit := linFit{slope: slope, intercept: intercept, r2: r2, n: n}
	if n > 2 {
		s2 := ssRes / float64(n-2)
		fit.slopeErr = math.Sqrt(s2 / sxx)
		fit.interceptErr = math.Sqrt(s2 * (1/float64(n) + meanX*meanX/sxx))
	}

	return fit, nil
}

// selectWindow picks the samples whose |H| falls in the window, preserving
// order.
func selectWindow(points []curve.Point, w Window) []curve.Point {
	out := make([]curve.Point, 0, len(points))
	for _, p := range points {
		if w.Contains(math.Abs(p.H)) {
			out = append(out, p)
		}
	}

	return out
}

// splitTails separates windowed samples by field sign. Zero-field samples
// belong to neither tail.
func splitTails(points []curve.Point) (pos, neg []curve.Point) {
	for _, p := range points {
		switch {
		case p.H > 0:
			pos = append(pos, p)
		case p.H < 0:
			neg = append(neg, p)
		}
	}

	return pos, neg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}

	return math.Sqrt(ss / float64(n-1))
}

// median returns the median of the values; the slice is not modified.
func median(values []float64) float64 {
	n := len(values)
	switch n {
	case 0:
		return 0
	case 1:
		return values[0]
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	if n%2 == 1 {
		return sorted[n/2]
	}

	return 0.5 * (sorted[n/2-1] + sorted[n/2])
}
