package curve

import (
	"fmt"
	"math"

	"github.com/vsmlab/magcore/geometry"
	"github.com/vsmlab/magcore/units"
)

// Point is a single measured sample. T and Time are optional channels;
// NaN marks an unrecorded value.
type Point struct {
	H    float64 // applied field
	M    float64 // moment or magnetization
	T    float64 // temperature in K, NaN when not recorded
	Time float64 // elapsed seconds, NaN when not recorded
}

// Pt builds a field/moment point with the optional channels unset.
func Pt(h, m float64) Point {
	return Point{H: h, M: m, T: math.NaN(), Time: math.NaN()}
}

// Curve is an ordered sequence of samples plus the units the instrument
// reported and free-form metadata. Instances are treated as immutable by
// the analysis packages; operations return new curves.
type Curve struct {
	Label      string
	Points     []Point
	FieldUnit  units.FieldUnit
	MomentUnit units.MomentUnit
	Meta       map[string]string
}

// New creates a curve from measured points. The points slice is used
// directly; callers that keep mutating their slice should pass a copy.
func New(label string, points []Point, fu units.FieldUnit, mu units.MomentUnit) *Curve {
	return &Curve{
		Label:      label,
		Points:     points,
		FieldUnit:  fu,
		MomentUnit: mu,
	}
}

// Len returns the number of samples.
func (c *Curve) Len() int {
	return len(c.Points)
}

// Fields returns a copy of the H column.
func (c *Curve) Fields() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.H
	}

	return out
}

// Moments returns a copy of the M column.
func (c *Curve) Moments() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.M
	}

	return out
}

// Clone returns a deep copy, optionally relabeled.
func (c *Curve) Clone(label string) *Curve {
	if label == "" {
		label = c.Label
	}

	points := make([]Point, len(c.Points))
	copy(points, c.Points)

	var meta map[string]string
	if c.Meta != nil {
		meta = make(map[string]string, len(c.Meta))
		for k, v := range c.Meta {
			meta[k] = v
		}
	}

	return &Curve{
		Label:      label,
		Points:     points,
		FieldUnit:  c.FieldUnit,
		MomentUnit: c.MomentUnit,
		Meta:       meta,
	}
}

// WithPoints returns a copy of the curve carrying the given points and the
// original tags and metadata.
func (c *Curve) WithPoints(label string, points []Point) *Curve {
	out := c.Clone(label)
	out.Points = points

	return out
}

// Canonicalize returns a cleaned copy of the curve: non-finite samples are
// dropped and consecutive samples sharing the same field value are averaged
// into one, so no branch carries duplicate abscissas. The receiver is not
// modified.
func (c *Curve) Canonicalize() *Curve {
	points := make([]Point, 0, len(c.Points))

	for _, p := range c.Points {
		if math.IsNaN(p.H) || math.IsInf(p.H, 0) || math.IsNaN(p.M) || math.IsInf(p.M, 0) {
			continue
		}

		n := len(points)
		if n > 0 && points[n-1].H == p.H {
			// Same sweep position measured twice: average the moment.
			prev := &points[n-1]
			prev.M = (prev.M + p.M) / 2
			prev.T = meanOptional(prev.T, p.T)
			prev.Time = meanOptional(prev.Time, p.Time)

			continue
		}

		points = append(points, p)
	}

	return c.WithPoints(c.Label, points)
}

// Normalize converts the curve to canonical SI with the requested moment
// class: MomentAPerM (volume magnetization), MomentAm2PerKg (specific
// moment) or MomentAm2 (raw moment). The field column always becomes A/m.
// Conversions that need mass, density or geometry fail with the converter's
// MissingContextError; normalization is never silently skipped.
func (c *Curve) Normalize(conv units.Converter, s *geometry.Sample, target units.MomentUnit) (*Curve, error) {
	convert, err := momentConverter(conv, c.MomentUnit, s, target)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(c.Points))
	for i, p := range c.Points {
		m, err := convert(p.M)
		if err != nil {
			return nil, err
		}

		points[i] = Point{
			H:    conv.Field(p.H, c.FieldUnit),
			M:    m,
			T:    p.T,
			Time: p.Time,
		}
	}

	out := c.WithPoints(c.Label, points)
	out.FieldUnit = units.FieldAm
	out.MomentUnit = target

	return out, nil
}

// Denormalize converts a canonical SI curve back to display units, the
// inverse of Normalize for the same quantity class. Cross-class targets
// (say A/m back to raw emu) need context and an explicit Normalize call;
// here they fail.
func (c *Curve) Denormalize(conv units.Converter, fu units.FieldUnit, mu units.MomentUnit) (*Curve, error) {
	if c.FieldUnit != units.FieldAm {
		return nil, fmt.Errorf("denormalize: field column is %s, not A/m", c.FieldUnit)
	}
	if units.SITag(mu) != c.MomentUnit {
		return nil, fmt.Errorf("denormalize: %s is not a display unit of %s", mu, c.MomentUnit)
	}

	points := make([]Point, len(c.Points))
	for i, p := range c.Points {
		points[i] = Point{
			H:    conv.FieldFrom(p.H, fu),
			M:    conv.MomentFrom(p.M, mu),
			T:    p.T,
			Time: p.Time,
		}
	}

	out := c.WithPoints(c.Label, points)
	out.FieldUnit = fu
	out.MomentUnit = mu

	return out, nil
}

// Smooth returns a copy of the curve with the moment column smoothed by a
// Savitzky-Golay filter. The field column is untouched.
func (c *Curve) Smooth(window, order int) (*Curve, error) {
	smoothed, err := SavitzkyGolay(c.Moments(), window, order)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(c.Points))
	copy(points, c.Points)
	for i := range points {
		points[i].M = smoothed[i]
	}

	return c.WithPoints(c.Label, points), nil
}

func momentConverter(conv units.Converter, from units.MomentUnit, s *geometry.Sample, target units.MomentUnit) (func(float64) (float64, error), error) {
	switch units.SITag(target) {
	case units.MomentAPerM:
		return func(v float64) (float64, error) { return conv.Magnetization(v, from, s) }, nil
	case units.MomentAm2PerKg:
		return func(v float64) (float64, error) { return conv.SpecificMoment(v, from, s) }, nil
	case units.MomentAm2:
		return func(v float64) (float64, error) { return conv.RawMoment(v, from, s) }, nil
	default:
		return nil, fmt.Errorf("unsupported normalization target %s", target)
	}
}

func meanOptional(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return (a + b) / 2
	}
}
