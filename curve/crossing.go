package curve

import (
	"errors"
	"math"
)

// ErrNoCrossingFound indicates the requested crossing value is not
// bracketed anywhere within the branch's domain.
var ErrNoCrossingFound = errors.New("no crossing found")

// Interpolation selects how a crossing between two bracketing samples is
// refined.
type Interpolation uint8

const (
	InterpLinear Interpolation = 0x1 // InterpLinear interpolates the bracketing pair.
	InterpSpline Interpolation = 0x2 // InterpSpline refines with a local cubic spline.
)

func (i Interpolation) String() string {
	switch i {
	case InterpLinear:
		return "Linear"
	case InterpSpline:
		return "Spline"
	default:
		return "Unknown"
	}
}

// CrossingH locates the field at which the branch's moment crosses target.
// Used for coercivity (target 0).
func (b *Branch) CrossingH(target float64, interp Interpolation) (float64, error) {
	xs := make([]float64, len(b.Points))
	ys := make([]float64, len(b.Points))
	for i, p := range b.Points {
		xs[i] = p.H
		ys[i] = p.M
	}

	return crossing(xs, ys, target, interp)
}

// CrossingM locates the moment at which the branch's field crosses target.
// Used for remanence (target 0).
func (b *Branch) CrossingM(target float64, interp Interpolation) (float64, error) {
	xs := make([]float64, len(b.Points))
	ys := make([]float64, len(b.Points))
	for i, p := range b.Points {
		xs[i] = p.M
		ys[i] = p.H
	}

	return crossing(xs, ys, target, interp)
}

// crossing finds the abscissa where the sampled y series crosses y0.
//
// An exact sample hit wins without interpolation. Otherwise the first
// bracketing pair is interpolated linearly; spline interpolation refines
// the estimate with a local cubic fit but never leaves the bracket, and
// falls back to linear when fewer than 4 points surround the bracket.
func crossing(xs, ys []float64, y0 float64, interp Interpolation) (float64, error) {
	n := len(xs)
	if n < 2 {
		return 0, ErrInsufficientBranchData
	}

	for i := 0; i < n; i++ {
		if ys[i] == y0 {
			return xs[i], nil
		}

		if i == n-1 {
			break
		}

		d1 := ys[i] - y0
		d2 := ys[i+1] - y0
		if d1*d2 > 0 {
			continue
		}

		x := xs[i] + (xs[i+1]-xs[i])*(y0-ys[i])/(ys[i+1]-ys[i])
		if interp == InterpSpline {
			if refined, ok := splineRefine(xs, ys, i, y0); ok {
				x = refined
			}
		}

		return x, nil
	}

	return 0, ErrNoCrossingFound
}

// splineRefine fits a natural cubic spline through the (up to 4) samples
// surrounding the bracket [i, i+1] and bisects it for y(x)=y0 inside the
// bracket only. Reports false when the local window has fewer than 4
// points or the spline does not change sign over the bracket.
func splineRefine(xs, ys []float64, i int, y0 float64) (float64, bool) {
	lo := max(i-1, 0)
	hi := min(i+3, len(xs))
	if hi-lo < 4 {
		return 0, false
	}

	sp := newSpline(xs[lo:hi], ys[lo:hi])
	if sp == nil {
		return 0, false
	}

	a, b := xs[i], xs[i+1]
	fa := sp.at(a) - y0
	fb := sp.at(b) - y0
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}
	if fa*fb > 0 {
		return 0, false
	}

	for iter := 0; iter < 80; iter++ {
		mid := 0.5 * (a + b)
		fm := sp.at(mid) - y0
		if fm == 0 || math.Abs(b-a) < 1e-15*(1+math.Abs(mid)) {
			return mid, true
		}
		if fa*fm < 0 {
			b, fb = mid, fm
		} else {
			a, fa = mid, fm
		}
	}

	return 0.5 * (a + b), true
}

// spline is a natural cubic spline over strictly monotonic knots.
type spline struct {
	xs, ys, m []float64
	reversed  bool
}

// newSpline builds a natural cubic spline. Knots must be strictly
// monotonic; returns nil otherwise.
func newSpline(xs, ys []float64) *spline {
	n := len(xs)
	if n < 3 {
		return nil
	}

	x := make([]float64, n)
	y := make([]float64, n)
	copy(x, xs)
	copy(y, ys)

	reversed := x[0] > x[n-1]
	if reversed {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			x[i], x[j] = x[j], x[i]
			y[i], y[j] = y[j], y[i]
		}
	}

	for i := 1; i < n; i++ {
		if x[i] <= x[i-1] {
			return nil
		}
	}

	// Second derivatives by the standard tridiagonal solve with natural
	// boundary conditions.
	m := make([]float64, n)
	diag := make([]float64, n)
	rhs := make([]float64, n)
	diag[0], diag[n-1] = 1, 1

	for i := 1; i < n-1; i++ {
		h0 := x[i] - x[i-1]
		h1 := x[i+1] - x[i]
		diag[i] = 2 * (h0 + h1)
		rhs[i] = 6 * ((y[i+1]-y[i])/h1 - (y[i]-y[i-1])/h0)
	}

	// Forward elimination (sub/super diagonals are the interval widths).
	for i := 2; i < n-1; i++ {
		h := x[i] - x[i-1]
		f := h / diag[i-1]
		diag[i] -= f * h
		rhs[i] -= f * rhs[i-1]
	}
	for i := n - 2; i >= 1; i-- {
		h := x[i+1] - x[i]
		m[i] = (rhs[i] - h*m[i+1]) / diag[i]
	}

	return &spline{xs: x, ys: y, m: m, reversed: reversed}
}

// at evaluates the spline, clamping outside the knot range to the boundary
// cubic (callers only evaluate inside a bracket).
func (s *spline) at(v float64) float64 {
	n := len(s.xs)
	i := 0
	for i < n-2 && v > s.xs[i+1] {
		i++
	}

	h := s.xs[i+1] - s.xs[i]
	a := (s.xs[i+1] - v) / h
	b := (v - s.xs[i]) / h

	return a*s.ys[i] + b*s.ys[i+1] +
		((a*a*a-a)*s.m[i]+(b*b*b-b)*s.m[i+1])*h*h/6
}
