package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vsmlab/magcore/geometry"
	"github.com/vsmlab/magcore/units"
)

func TestCanonicalize_AveragesDuplicates(t *testing.T) {
	c := New("dup", []Point{
		Pt(-10, -5),
		Pt(0, 1),
		Pt(0, 3), // duplicate abscissa, same sweep position
		Pt(10, 5),
	}, units.FieldAm, units.MomentAm2)

	out := c.Canonicalize()
	require.Equal(t, 3, out.Len())
	require.Equal(t, 0.0, out.Points[1].H)
	require.Equal(t, 2.0, out.Points[1].M)

	// Original untouched.
	require.Equal(t, 4, c.Len())
}

func TestCanonicalize_DropsNonFinite(t *testing.T) {
	c := New("bad", []Point{
		Pt(-1, -2),
		Pt(math.NaN(), 1),
		Pt(0, math.Inf(1)),
		Pt(1, 2),
	}, units.FieldAm, units.MomentAm2)

	out := c.Canonicalize()
	require.Equal(t, 2, out.Len())
	require.Equal(t, -1.0, out.Points[0].H)
	require.Equal(t, 1.0, out.Points[1].H)
}

func TestCanonicalize_KeepsLoopRevisits(t *testing.T) {
	// A hysteresis loop legitimately revisits the same field on the way
	// back; only consecutive duplicates are merged.
	c := New("loop", []Point{
		Pt(-1, -5), Pt(0, -1), Pt(1, 5), Pt(0, 1), Pt(-1, -5),
	}, units.FieldAm, units.MomentAm2)

	out := c.Canonicalize()
	require.Equal(t, 5, out.Len())
}

func TestNormalize_FieldAndMoment(t *testing.T) {
	conv := units.NewConverter(units.SI)
	s := &geometry.Sample{Shape: geometry.ShapeThinFilm, Thickness: 100e-9, Area: 1e-4}

	c := New("raw", []Point{Pt(1, 1), Pt(2, 2)}, units.FieldOe, units.MomentEmu)
	out, err := c.Normalize(conv, s, units.MomentAPerM)
	require.NoError(t, err)

	require.Equal(t, units.FieldAm, out.FieldUnit)
	require.Equal(t, units.MomentAPerM, out.MomentUnit)
	require.InEpsilon(t, 1000.0/(4*math.Pi), out.Points[0].H, 1e-12)
	require.InEpsilon(t, 1e8, out.Points[0].M, 1e-9) // 1e-3 A·m² / 1e-11 m³

	// Source curve unchanged.
	require.Equal(t, units.FieldOe, c.FieldUnit)
	require.Equal(t, 1.0, c.Points[0].H)
}

func TestNormalize_MissingContext(t *testing.T) {
	conv := units.NewConverter(units.SI)
	c := New("raw", []Point{Pt(1, 1), Pt(2, 2)}, units.FieldOe, units.MomentEmu)

	_, err := c.Normalize(conv, nil, units.MomentAPerM)
	require.ErrorIs(t, err, units.ErrMissingPhysicalContext)

	_, err = c.Normalize(conv, &geometry.Sample{}, units.MomentAm2PerKg)
	require.ErrorIs(t, err, units.ErrMissingPhysicalContext)
}

func TestNormalize_RawMomentNeedsNoContext(t *testing.T) {
	conv := units.NewConverter(units.SI)
	c := New("raw", []Point{Pt(1, 2)}, units.FieldOe, units.MomentEmu)

	out, err := c.Normalize(conv, nil, units.MomentAm2)
	require.NoError(t, err)
	require.InEpsilon(t, 2e-3, out.Points[0].M, 1e-12)
}

func TestClone_Independent(t *testing.T) {
	c := New("orig", []Point{Pt(1, 2)}, units.FieldOe, units.MomentEmu)
	c.Meta = map[string]string{"instrument": "vsm-1"}

	cl := c.Clone("copy")
	cl.Points[0].M = 99
	cl.Meta["instrument"] = "other"

	require.Equal(t, 2.0, c.Points[0].M)
	require.Equal(t, "vsm-1", c.Meta["instrument"])
	require.Equal(t, "copy", cl.Label)
}

func TestDenormalize_RoundTrip(t *testing.T) {
	conv := units.NewConverter(units.SI)
	c := New("display", []Point{Pt(500, 0.02), Pt(-500, -0.02)}, units.FieldOe, units.MomentEmuPerCm3)

	si, err := c.Normalize(conv, nil, units.MomentAPerM)
	require.NoError(t, err)

	back, err := si.Denormalize(conv, units.FieldOe, units.MomentEmuPerCm3)
	require.NoError(t, err)

	require.Equal(t, units.FieldOe, back.FieldUnit)
	require.Equal(t, units.MomentEmuPerCm3, back.MomentUnit)
	for i := range c.Points {
		require.InEpsilon(t, c.Points[i].H, back.Points[i].H, 1e-12)
		require.InEpsilon(t, c.Points[i].M, back.Points[i].M, 1e-12)
	}
}

func TestDenormalize_RejectsCrossClass(t *testing.T) {
	conv := units.NewConverter(units.SI)
	si := New("si", []Point{Pt(100, 200)}, units.FieldAm, units.MomentAPerM)

	// emu is a raw moment; going there from A/m needs a volume and an
	// explicit Normalize call.
	_, err := si.Denormalize(conv, units.FieldOe, units.MomentEmu)
	require.Error(t, err)

	display := New("oe", []Point{Pt(100, 200)}, units.FieldOe, units.MomentAPerM)
	_, err = display.Denormalize(conv, units.FieldOe, units.MomentEmuPerCm3)
	require.Error(t, err)
}
