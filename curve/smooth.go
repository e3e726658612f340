package curve

import (
	"fmt"
	"math"
)

// SavitzkyGolay smooths the series with a Savitzky-Golay filter: each value
// is replaced by the value of a least-squares polynomial of the given order
// fitted over a window of neighboring samples. Near the edges the window is
// shifted to stay inside the series, so the output has the same length as
// the input.
//
// window must be odd, larger than order, and no larger than the series.
func SavitzkyGolay(values []float64, window, order int) ([]float64, error) {
	switch {
	case window < 3 || window%2 == 0:
		return nil, fmt.Errorf("savitzky-golay: window must be odd and >= 3, got %d", window)
	case order < 1 || order >= window:
		return nil, fmt.Errorf("savitzky-golay: order must be in [1, window), got %d", order)
	case len(values) < window:
		return nil, fmt.Errorf("savitzky-golay: series of %d points is shorter than window %d", len(values), window)
	}

	n := len(values)
	half := window / 2
	out := make([]float64, n)

	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		if lo+window > n {
			lo = n - window
		}

		out[i] = polyValueAt(values[lo:lo+window], i-lo, order)
	}

	return out, nil
}

// polyValueAt fits a polynomial of degree order to the window (abscissa =
// sample index) and evaluates it at offset center.
func polyValueAt(win []float64, center, order int) float64 {
	coeffs := polyfit(win, order)

	v := 0.0
	x := float64(center)
	for k := len(coeffs) - 1; k >= 0; k-- {
		v = v*x + coeffs[k]
	}

	return v
}

// polyfit solves the normal equations for a least-squares polynomial of the
// given degree over y(0..n-1). Returns coefficients in ascending order.
func polyfit(y []float64, degree int) []float64 {
	n := len(y)
	terms := degree + 1

	// Power sums Σx^k for the normal-equation matrix.
	pow := make([]float64, 2*degree+1)
	for i := 0; i < n; i++ {
		x := 1.0
		for k := range pow {
			pow[k] += x
			x *= float64(i)
		}
	}

	// Right-hand side Σx^k·y.
	rhs := make([]float64, terms)
	for i := 0; i < n; i++ {
		x := 1.0
		for k := range rhs {
			rhs[k] += x * y[i]
			x *= float64(i)
		}
	}

	// Build and solve the (terms x terms) system by Gaussian elimination
	// with partial pivoting. The system is tiny (order is small).
	a := make([][]float64, terms)
	for r := range a {
		a[r] = make([]float64, terms+1)
		for c := 0; c < terms; c++ {
			a[r][c] = pow[r+c]
		}
		a[r][terms] = rhs[r]
	}

	for col := 0; col < terms; col++ {
		pivot := col
		for r := col + 1; r < terms; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		a[col], a[pivot] = a[pivot], a[col]

		if a[col][col] == 0 {
			continue
		}

		for r := col + 1; r < terms; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= terms; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	coeffs := make([]float64, terms)
	for r := terms - 1; r >= 0; r-- {
		if a[r][r] == 0 {
			continue
		}

		v := a[r][terms]
		for c := r + 1; c < terms; c++ {
			v -= a[r][c] * coeffs[c]
		}
		coeffs[r] = v / a[r][r]
	}

	return coeffs
}
