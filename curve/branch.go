package curve

import "errors"

// ErrInsufficientBranchData indicates a sweep does not contain enough
// points to form a usable branch.
var ErrInsufficientBranchData = errors.New("insufficient branch data")

// ErrNonMonotonic indicates the field column never sweeps: the curve has
// no monotonic run to split into branches.
var ErrNonMonotonic = errors.New("field does not sweep monotonically")

// Branch is a maximal monotonic run of a swept-field curve.
type Branch struct {
	Points    []Point
	Ascending bool
}

// Len returns the number of samples in the branch.
func (b *Branch) Len() int {
	return len(b.Points)
}

// SplitBranches splits a swept-field curve into maximal monotonic runs
// using the sign of consecutive field steps. A zero step (tie) is assigned
// to the branch of the previous sample. The branch slices alias the curve's
// points; branches are read-only views.
//
// Curves with fewer than 2 points fail with ErrInsufficientBranchData.
func SplitBranches(c *Curve) ([]Branch, error) {
	pts := c.Points
	if len(pts) < 2 {
		return nil, ErrInsufficientBranchData
	}

	ascending, ok := firstDirection(pts)
	if !ok {
		return nil, ErrNonMonotonic
	}

	branches := make([]Branch, 0, 2)
	start := 0

	for i := 1; i < len(pts); i++ {
		dh := pts[i].H - pts[i-1].H
		if dh == 0 {
			continue // tie: stays in the previous branch
		}

		up := dh > 0
		if up != ascending {
			branches = append(branches, Branch{Points: pts[start:i], Ascending: ascending})
			// The turning point belongs to both sweeps; start the new
			// branch at the previous sample so the reversal is bracketed.
			start = i - 1
			ascending = up
		}
	}

	branches = append(branches, Branch{Points: pts[start:], Ascending: ascending})

	return branches, nil
}

// Principal picks the dominant ascending and descending branches (longest
// of each direction). Jitter runs shorter than the principal ones are
// thereby excluded from metric extraction. Either result may be nil when
// the curve sweeps only one way.
func Principal(branches []Branch) (asc, desc *Branch) {
	for i := range branches {
		b := &branches[i]
		if b.Ascending {
			if asc == nil || b.Len() > asc.Len() {
				asc = b
			}
		} else {
			if desc == nil || b.Len() > desc.Len() {
				desc = b
			}
		}
	}

	return asc, desc
}

// firstDirection returns the direction of the first nonzero field step.
// ok is false when every step is a tie.
func firstDirection(pts []Point) (ascending, ok bool) {
	for i := 1; i < len(pts); i++ {
		if dh := pts[i].H - pts[i-1].H; dh != 0 {
			return dh > 0, true
		}
	}

	return false, false
}
