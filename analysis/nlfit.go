package analysis

import (
	"fmt"
	"math"
)

// Boltzmann constant, J/K.
const boltzmann = 1.380649e-23

// modelFunc evaluates a two-parameter model at h, returning the value and
// the gradient with respect to both parameters.
type modelFunc func(h, p0, p1 float64) (y, g0, g1 float64)

// levmar2 fits a two-parameter model by Levenberg-Marquardt. Iteration is
// always bounded: the fit stops when the relative parameter step falls
// below tol, and fails with ErrFitDidNotConverge when maxIter is exhausted
// or the damping explodes without the residual shrinking.
func levmar2(xs, ys []float64, p0, p1 float64, f modelFunc, maxIter int, tol float64) (q0, q1 float64, iters int, err error) {
	const (
		lambdaInit = 1e-3
		lambdaUp   = 10.0
		lambdaDown = 10.0
		lambdaMax  = 1e12
	)

	sse := func(a, b float64) float64 {
		s := 0.0
		for i := range xs {
			y, _, _ := f(xs[i], a, b)
			r := ys[i] - y
			s += r * r
		}

		return s
	}

	lambda := lambdaInit
	cur := sse(p0, p1)

	for iter := 1; iter <= maxIter; iter++ {
		// Normal equations from the analytic Jacobian.
		var jtj00, jtj01, jtj11, jtr0, jtr1 float64
		for i := range xs {
			y, g0, g1 := f(xs[i], p0, p1)
			r := ys[i] - y
			jtj00 += g0 * g0
			jtj01 += g0 * g1
			jtj11 += g1 * g1
			jtr0 += g0 * r
			jtr1 += g1 * r
		}

		for {
			// Marquardt scaling keeps the step meaningful when the two
			// parameters live on very different magnitudes.
			a00 := jtj00 * (1 + lambda)
			a11 := jtj11 * (1 + lambda)
			det := a00*a11 - jtj01*jtj01
			if det == 0 || math.IsNaN(det) {
				return p0, p1, iter, fmt.Errorf("%w: singular normal equations", ErrFitDidNotConverge)
			}

			d0 := (a11*jtr0 - jtj01*jtr1) / det
			d1 := (a00*jtr1 - jtj01*jtr0) / det

			t0 := p0 + d0
			t1 := p1 + d1
			next := sse(t0, t1)

			if next <= cur {
				p0, p1 = t0, t1

				step := math.Max(relStep(d0, p0), relStep(d1, p1))
				converged := step < tol || next == 0
				cur = next
				lambda = math.Max(lambda/lambdaDown, 1e-12)

				if converged {
					return p0, p1, iter, nil
				}

				break
			}

			lambda *= lambdaUp
			if lambda > lambdaMax {
				return p0, p1, iter, fmt.Errorf("%w: residual stopped decreasing after %d iterations", ErrFitDidNotConverge, iter)
			}
		}
	}

	return p0, p1, maxIter, fmt.Errorf("%w: iteration cap %d reached", ErrFitDidNotConverge, maxIter)
}

func relStep(d, p float64) float64 {
	return math.Abs(d) / (math.Abs(p) + 1e-30)
}

// langevinL evaluates the Langevin function L(a) = coth(a) - 1/a and its
// derivative, with a series expansion near zero and overflow-safe
// asymptotes.
func langevinL(a float64) (l, lp float64) {
	abs := math.Abs(a)
	switch {
	case abs < 1e-4:
		return a/3 - a*a*a/45, 1.0/3 - a*a/15
	case abs > 350:
		// coth saturates; csch² underflows to zero.
		return math.Copysign(1, a) - 1/a, 1 / (a * a)
	default:
		sinh := math.Sinh(a)
		coth := math.Cosh(a) / sinh

		return coth - 1/a, 1/(a*a) - 1/(sinh*sinh)
	}
}

// brillouinB evaluates the Brillouin function B_J(x) and its derivative.
func brillouinB(j, x float64) (b, bp float64) {
	c1 := (2*j + 1) / (2 * j)
	c2 := 1 / (2 * j)

	if math.Abs(x) < 1e-4 {
		lin := (j + 1) / (3 * j)
		c14 := c1 * c1 * c1 * c1
		c24 := c2 * c2 * c2 * c2
		cub := (c14 - c24) / 45

		return lin*x - cub*x*x*x, lin - 3*cub*x*x
	}

	b = c1*cothSafe(c1*x) - c2*cothSafe(c2*x)
	bp = c2*c2*cschSq(c2*x) - c1*c1*cschSq(c1*x)

	return b, bp
}

func cothSafe(x float64) float64 {
	if math.Abs(x) > 350 {
		return math.Copysign(1, x)
	}

	return math.Cosh(x) / math.Sinh(x)
}

func cschSq(x float64) float64 {
	if math.Abs(x) > 350 {
		return 0
	}

	s := math.Sinh(x)

	return 1 / (s * s)
}
