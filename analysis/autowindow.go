package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/vsmlab/magcore/curve"
)

// AutoWindow picks a high-field window automatically: the top frac of the
// curve by |H|. The candidate window is validated by a linear tail fit; a
// window with fewer than minPoints samples or a fit below minR2 fails with
// ErrWindowDetectionFailed so the caller can fall back to manual selection.
func AutoWindow(c *curve.Curve, frac float64) (Window, error) {
	const (
		minPoints = 4
		minR2     = 0.7
	)

	if frac <= 0 || frac >= 1 {
		return Window{}, fmt.Errorf("auto window: fraction must be in (0, 1), got %g", frac)
	}
	if c.Len() < minPoints {
		return Window{}, fmt.Errorf("%w: %d points", ErrWindowDetectionFailed, c.Len())
	}

	abs := make([]float64, c.Len())
	for i, p := range c.Points {
		abs[i] = math.Abs(p.H)
	}

	threshold := quantile(abs, 1-frac)
	w := Window{Min: threshold}

	selected := selectWindow(c.Points, w)
	if len(selected) < minPoints {
		return Window{}, fmt.Errorf("%w: only %d points above |H|=%g", ErrWindowDetectionFailed, len(selected), threshold)
	}

	// The tails must actually be linear there, otherwise the window still
	// contains the switching region.
	model, err := FitBackground(c, w, BackgroundLinear)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %s", ErrWindowDetectionFailed, err)
	}
	if model.R2 < minR2 {
		return Window{}, fmt.Errorf("%w: tail fit R²=%.3f below %.2f", ErrWindowDetectionFailed, model.R2, minR2)
	}

	maxAbs := 0.0
	for _, v := range abs {
		if v > maxAbs {
			maxAbs = v
		}
	}
	w.Max = maxAbs

	return w, nil
}

// quantile returns the q-quantile of values by linear interpolation of the
// sorted order statistics; the input is not modified.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)

	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
