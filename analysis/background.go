package analysis

import (
	"fmt"
	"math"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/internal/options"
)

// BackgroundKind selects the background model. The set is closed; new
// models extend the variant set here.
type BackgroundKind uint8

const (
	BackgroundLinear    BackgroundKind = 0x1 // BackgroundLinear: M = χ·H + b tail.
	BackgroundLangevin  BackgroundKind = 0x2 // BackgroundLangevin: classical paramagnet M = Ms·L(μ·μ0·H/kT).
	BackgroundBrillouin BackgroundKind = 0x3 // BackgroundBrillouin: quantum paramagnet M = Ms·B_J(μ·μ0·H/kT).
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundLinear:
		return "linear"
	case BackgroundLangevin:
		return "langevin"
	case BackgroundBrillouin:
		return "brillouin"
	default:
		return "unknown"
	}
}

// BackgroundConfig tunes the background fit.
type BackgroundConfig struct {
	// Temperature in kelvin, used to map the Langevin/Brillouin argument
	// to a physical moment.
	Temperature float64
	// SpinJ is the effective spin of the Brillouin model.
	SpinJ float64
	// InitMsat and InitMu seed the nonlinear fit; zero means derive the
	// seed from the data.
	InitMsat float64
	InitMu   float64
	// MaxIter caps the nonlinear iterations.
	MaxIter int
	// Tol is the relative parameter-step convergence tolerance.
	Tol float64
	// RemoveIntercept also subtracts the fitted intercept b. Off by
	// default so the loop's vertical placement (remanence) is unchanged.
	RemoveIntercept bool
}

func defaultBackgroundConfig() BackgroundConfig {
	return BackgroundConfig{
		Temperature: 300,
		SpinJ:       0.5,
		MaxIter:     200,
		Tol:         1e-10,
	}
}

// BackgroundOption is a functional option for FitBackground.
type BackgroundOption = options.Option[*BackgroundConfig]

// WithTemperature sets the sample temperature in kelvin for the
// Langevin/Brillouin models.
func WithTemperature(kelvin float64) BackgroundOption {
	return options.New(func(cfg *BackgroundConfig) error {
		if kelvin <= 0 {
			return fmt.Errorf("temperature must be positive, got %g", kelvin)
		}
		cfg.Temperature = kelvin

		return nil
	})
}

// WithSpinJ sets the Brillouin effective spin.
func WithSpinJ(j float64) BackgroundOption {
	return options.New(func(cfg *BackgroundConfig) error {
		if j <= 0 {
			return fmt.Errorf("spin J must be positive, got %g", j)
		}
		cfg.SpinJ = j

		return nil
	})
}

// WithInitialGuess seeds the nonlinear fit with a saturation moment and a
// magnetic moment per particle (A·m²).
func WithInitialGuess(msat, mu float64) BackgroundOption {
	return options.NoError(func(cfg *BackgroundConfig) {
		cfg.InitMsat = msat
		cfg.InitMu = mu
	})
}

// WithMaxIterations caps the nonlinear solver.
func WithMaxIterations(n int) BackgroundOption {
	return options.New(func(cfg *BackgroundConfig) error {
		if n < 1 {
			return fmt.Errorf("max iterations must be >= 1, got %d", n)
		}
		cfg.MaxIter = n

		return nil
	})
}

// WithTolerance sets the relative convergence tolerance.
func WithTolerance(tol float64) BackgroundOption {
	return options.New(func(cfg *BackgroundConfig) error {
		if tol <= 0 {
			return fmt.Errorf("tolerance must be positive, got %g", tol)
		}
		cfg.Tol = tol

		return nil
	})
}

// WithInterceptRemoval also subtracts the linear fit's intercept, shifting
// the loop vertically.
func WithInterceptRemoval() BackgroundOption {
	return options.NoError(func(cfg *BackgroundConfig) {
		cfg.RemoveIntercept = true
	})
}

// TailFit is the per-tail diagnostic of a linear background fit.
type TailFit struct {
	Positive  bool
	Chi       float64
	Intercept float64
	R2        float64
	N         int
}

// BackgroundModel is a fitted background: the parameters, the window they
// were fitted on, and a residual curve for before/after diagnostics.
// Subtraction produces a new corrected curve; the original is untouched.
type BackgroundModel struct {
	Kind   BackgroundKind
	Window Window

	// Linear parameters.
	Chi             float64
	Intercept       float64
	Tails           []TailFit
	RemoveIntercept bool

	// Langevin/Brillouin parameters. Mu is the per-particle moment in
	// A·m²; Msat the saturation of the background component.
	Msat        float64
	Mu          float64
	SpinJ       float64
	Temperature float64

	R2         float64
	N          int
	Iterations int

	// Residual holds data minus model over the fit window.
	Residual *curve.Curve
}

// FitBackground fits a paramagnetic/diamagnetic background of the given
// kind over the window (applied to |H|). The Langevin and Brillouin fits
// iterate under a hard cap and fail with ErrFitDidNotConverge rather than
// silently returning a poor fit.
func FitBackground(c *curve.Curve, w Window, kind BackgroundKind, opts ...BackgroundOption) (*BackgroundModel, error) {
	cfg := defaultBackgroundConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	selected := selectWindow(c.Points, w)
	if len(selected) < 2 {
		return nil, ErrInsufficientFitData
	}

	switch kind {
	case BackgroundLinear:
		return fitLinearTail(c, w, selected, cfg)
	case BackgroundLangevin, BackgroundBrillouin:
		return fitParamagnet(c, w, selected, kind, cfg)
	default:
		return nil, fmt.Errorf("unsupported background kind %s", kind)
	}
}

// Eval returns the model's background contribution at the given field.
func (m *BackgroundModel) Eval(h float64) float64 {
	switch m.Kind {
	case BackgroundLinear:
		v := m.Chi * h
		if m.RemoveIntercept {
			v += m.Intercept
		}

		return v
	case BackgroundLangevin:
		l, _ := langevinL(m.argument() * h)

		return m.Msat * l
	case BackgroundBrillouin:
		b, _ := brillouinB(m.SpinJ, m.argument()*h)

		return m.Msat * b
	default:
		return 0
	}
}

// Subtract removes the background from the curve and returns the corrected
// curve as a new object.
func (m *BackgroundModel) Subtract(c *curve.Curve) *curve.Curve {
	points := make([]curve.Point, len(c.Points))
	for i, p := range c.Points {
		p.M -= m.Eval(p.H)
		points[i] = p
	}

	return c.WithPoints(c.Label+" (corrected)", points)
}

// argument maps a field in A/m to the Langevin/Brillouin argument scale
// μ·μ0/(kB·T).
func (m *BackgroundModel) argument() float64 {
	return m.Mu * Mu0 / (boltzmann * m.Temperature)
}

// fitLinearTail fits M = χ·H + b per field-sign tail and combines them:
// χ is the median of the tail slopes so one contaminated tail cannot drag
// the correction, b the mean of the tail intercepts.
func fitLinearTail(c *curve.Curve, w Window, selected []curve.Point, cfg BackgroundConfig) (*BackgroundModel, error) {
	pos, neg := splitTails(selected)

	model := &BackgroundModel{
		Kind:            BackgroundLinear,
		Window:          w,
		RemoveIntercept: cfg.RemoveIntercept,
	}

	var slopes, intercepts, r2s []float64
	for _, tail := range []struct {
		pts []curve.Point
		pos bool
	}{{pos, true}, {neg, false}} {
		if len(tail.pts) < 2 {
			continue
		}

		xs := make([]float64, len(tail.pts))
		ys := make([]float64, len(tail.pts))
		for i, p := range tail.pts {
			xs[i] = p.H
			ys[i] = p.M
		}

		fit, err := linearFit(xs, ys)
		if err != nil {
			continue
		}

		model.Tails = append(model.Tails, TailFit{
			Positive:  tail.pos,
			Chi:       fit.slope,
			Intercept: fit.intercept,
			R2:        fit.r2,
			N:         fit.n,
		})
		slopes = append(slopes, fit.slope)
		intercepts = append(intercepts, fit.intercept)
		r2s = append(r2s, fit.r2)
		model.N += fit.n
	}

	if len(slopes) == 0 {
		return nil, ErrInsufficientFitData
	}

	model.Chi = median(slopes)
	model.Intercept = mean(intercepts)
	model.R2 = mean(r2s)
	model.Residual = residualCurve(c, model, selected)

	return model, nil
}

// fitParamagnet fits the Langevin or Brillouin model by
// Levenberg-Marquardt on (Msat, q) with q = μ·μ0/(kB·T).
func fitParamagnet(c *curve.Curve, w Window, selected []curve.Point, kind BackgroundKind, cfg BackgroundConfig) (*BackgroundModel, error) {
	if len(selected) < 3 {
		return nil, ErrInsufficientFitData
	}

	xs := make([]float64, len(selected))
	ys := make([]float64, len(selected))
	maxAbsM, maxAbsH := 0.0, 0.0
	for i, p := range selected {
		xs[i] = p.H
		ys[i] = p.M
		if a := math.Abs(p.M); a > maxAbsM {
			maxAbsM = a
		}
		if a := math.Abs(p.H); a > maxAbsH {
			maxAbsH = a
		}
	}
	if maxAbsH == 0 {
		return nil, ErrInsufficientFitData
	}

	// Seed: saturation near the largest observed moment, argument of
	// order one at the window edge.
	msat0 := cfg.InitMsat
	if msat0 <= 0 {
		msat0 = maxAbsM
	}
	q0 := 0.0
	if cfg.InitMu > 0 {
		q0 = cfg.InitMu * Mu0 / (boltzmann * cfg.Temperature)
	}
	if q0 <= 0 {
		q0 = 1 / maxAbsH
	}

	f := langevinModel
	if kind == BackgroundBrillouin {
		f = brillouinModel(cfg.SpinJ)
	}

	msat, q, iters, err := levmar2(xs, ys, msat0, q0, f, cfg.MaxIter, cfg.Tol)
	if err != nil {
		return nil, err
	}

	model := &BackgroundModel{
		Kind:        kind,
		Window:      w,
		Msat:        msat,
		Mu:          q * boltzmann * cfg.Temperature / Mu0,
		SpinJ:       cfg.SpinJ,
		Temperature: cfg.Temperature,
		N:           len(selected),
		Iterations:  iters,
	}
	model.R2 = modelR2(xs, ys, func(h float64) float64 { return model.Eval(h) })
	model.Residual = residualCurve(c, model, selected)

	return model, nil
}

func langevinModel(h, msat, q float64) (y, g0, g1 float64) {
	l, lp := langevinL(q * h)

	return msat * l, l, msat * h * lp
}

func brillouinModel(j float64) modelFunc {
	return func(h, msat, q float64) (y, g0, g1 float64) {
		b, bp := brillouinB(j, q*h)

		return msat * b, b, msat * h * bp
	}
}

// residualCurve builds the data-minus-model diagnostic over the window.
// For the linear model each tail's own intercept is used so a saturated
// ferromagnetic plateau shows up flat, not offset.
func residualCurve(c *curve.Curve, m *BackgroundModel, selected []curve.Point) *curve.Curve {
	points := make([]curve.Point, len(selected))
	for i, p := range selected {
		var fitted float64
		if m.Kind == BackgroundLinear {
			fitted = m.tailValue(p.H)
		} else {
			fitted = m.Eval(p.H)
		}

		p.M -= fitted
		points[i] = p
	}

	return c.WithPoints(c.Label+" (background residual)", points)
}

// tailValue evaluates the full per-tail line χ·H + b for residuals.
func (m *BackgroundModel) tailValue(h float64) float64 {
	for _, tail := range m.Tails {
		if tail.Positive == (h > 0) {
			return tail.Chi*h + tail.Intercept
		}
	}

	return m.Chi*h + m.Intercept
}

func modelR2(xs, ys []float64, f func(float64) float64) float64 {
	meanY := mean(ys)

	var ssRes, ssTot float64
	for i := range xs {
		r := ys[i] - f(xs[i])
		ssRes += r * r
		d := ys[i] - meanY
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}

	return 1 - ssRes/ssTot
}
