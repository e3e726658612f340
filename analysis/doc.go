// Package analysis extracts physical parameters from prepared magnetization
// curves: coercivity (Hc), remanence (Mr), saturation magnetization (Ms),
// uniaxial anisotropy (Ku, Sucksmith-Thompson) and paramagnetic/diamagnetic
// background models.
//
// Every extractor is a pure function of its inputs: curves are never
// retained or mutated, so independent curves can be analyzed concurrently
// without locking. Results carry their one-sigma uncertainty, the field
// window used, goodness of fit and the method tag that produced them, so a
// persisted result reproduces the displayed numbers without re-fitting.
//
// Method sets are closed tagged variants (Ms: linear extrapolation or
// plateau averaging; background: linear, Langevin or Brillouin tail); new
// methods are added by extending the variant set, not by registering into
// shared state.
//
// Extracting the standard loop metrics:
//
//	hc, err := analysis.Coercivity(c)
//	mr, err := analysis.Remanence(c)
//	ms, err := analysis.SaturationMagnetization(c, analysis.Window{Min: 4e5, Max: 8e5}, analysis.MsLinear)
//
// Background subtraction keeps the original curve available:
//
//	model, err := analysis.FitBackground(c, analysis.Window{Min: 4e5, Max: 8e5}, analysis.BackgroundLinear)
//	corrected := model.Subtract(c)
package analysis
