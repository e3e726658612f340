// Package curve holds the measured magnetization-curve data model and the
// geometric primitives every extractor shares: canonicalization of raw
// sample sequences, ascending/descending branch splitting, zero-crossing
// location with linear or spline interpolation, and Savitzky-Golay
// smoothing.
//
// A Curve is an ordered sequence of (H, M) samples with optional
// temperature and time channels, tagged with the units the instrument
// reported. Analysis never mutates a Curve: canonicalization, normalization
// and smoothing all return new Curve values so the original stays available
// for before/after comparison.
//
// Typical preparation pipeline:
//
//	c := curve.New("loop-300K", points, units.FieldOe, units.MomentEmu)
//	c = c.Canonicalize()
//	branches, err := curve.SplitBranches(c)
//	if err != nil {
//	    return err
//	}
//	asc, desc := curve.Principal(branches)
package curve
