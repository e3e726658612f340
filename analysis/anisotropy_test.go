package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/units"
)

// hardAxisCurve generates samples obeying H/M = a + b·M² exactly, with an
// optional demagnetizing contribution folded into the applied field.
func hardAxisCurve(ms, a, b, demagN float64) *curve.Curve {
	var points []curve.Point
	for f := 0.5; f <= 0.96; f += 0.05 {
		m := f * ms
		hint := m * (a + b*m*m)
		points = append(points, curve.Pt(hint+demagN*m, m))
	}

	return curve.New("hard-axis", points, units.FieldAm, units.MomentAPerM)
}

func TestSucksmithThompson(t *testing.T) {
	const (
		ms = 8e5
		a  = 1.0
		b  = 1e-12
	)

	res, err := SucksmithThompson(hardAxisCurve(ms, a, b, 0), Window{}, KuInput{Ms: ms})
	require.NoError(t, err)

	wantK1 := 0.5 * Mu0 * ms * ms * a
	require.InEpsilon(t, wantK1, res.Value, 1e-9)
	require.InEpsilon(t, ms*a, res.Hk, 1e-9)
	require.InEpsilon(t, a, res.Intercept, 1e-9)
	require.InEpsilon(t, b, res.Slope, 1e-6)
	require.InDelta(t, 1.0, res.R2, 1e-9)
	require.Equal(t, MethodSucksmithThompson, res.Method)

	// No demag factor supplied: the internal field is uncorrected.
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "demagnetization")
}

func TestSucksmithThompsonDemagCorrection(t *testing.T) {
	const (
		ms = 8e5
		a  = 1.0
		b  = 1e-12
		n  = 1.0 / 3
	)

	res, err := SucksmithThompson(hardAxisCurve(ms, a, b, n), Window{}, KuInput{Ms: ms, DemagN: n})
	require.NoError(t, err)

	wantK1 := 0.5 * Mu0 * ms * ms * a
	require.InEpsilon(t, wantK1, res.Value, 1e-9)
	require.Empty(t, res.Warnings)
}

func TestSucksmithThompsonMsUncertainty(t *testing.T) {
	const (
		ms    = 8e5
		sigma = 1e4
	)

	res, err := SucksmithThompson(hardAxisCurve(ms, 1.0, 1e-12, 0), Window{}, KuInput{Ms: ms, MsStderr: sigma})
	require.NoError(t, err)

	// A perfect regression leaves only the Ms contribution: 2·σ/Ms
	// relative.
	want := math.Abs(res.Value) * 2 * sigma / ms
	require.InDelta(t, want, res.Stderr, want*1e-6)
}

func TestSucksmithThompsonMissingMs(t *testing.T) {
	_, err := SucksmithThompson(hardAxisCurve(8e5, 1.0, 1e-12, 0), Window{}, KuInput{})
	require.ErrorIs(t, err, ErrMissingSaturationMagnetization)
}

func TestSucksmithThompsonTooFewPoints(t *testing.T) {
	points := []curve.Point{
		curve.Pt(1000, 4e5),
		curve.Pt(2000, 6e5),
	}
	c := curve.New("short", points, units.FieldAm, units.MomentAPerM)

	_, err := SucksmithThompson(c, Window{}, KuInput{Ms: 8e5})
	require.ErrorIs(t, err, ErrInsufficientFitData)
}

func TestSucksmithThompsonSkipsZeroMoment(t *testing.T) {
	c := hardAxisCurve(8e5, 1.0, 1e-12, 0)
	pts := append([]curve.Point{curve.Pt(0, 0)}, c.Points...)
	c = c.WithPoints("with-origin", pts)

	res, err := SucksmithThompson(c, Window{}, KuInput{Ms: 8e5})
	require.NoError(t, err)
	require.InEpsilon(t, 0.5*Mu0*8e5*8e5, res.Value, 1e-9)
}
