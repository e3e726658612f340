package magcore

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vsmlab/magcore/analysis"
	"github.com/vsmlab/magcore/curve"
	"github.com/vsmlab/magcore/geometry"
	"github.com/vsmlab/magcore/session"
	"github.com/vsmlab/magcore/units"
)

// cgsLoop builds a piecewise-linear loop in instrument units (Oe, emu)
// with crossings at ±50 Oe, remanence ±5e-4 emu and saturation 1e-3 emu.
func cgsLoop() *curve.Curve {
	clamp := func(v float64) float64 {
		return math.Max(-1e-3, math.Min(1e-3, v))
	}
	asc := func(h float64) float64 { return clamp(1e-5 * (h - 50)) }
	desc := func(h float64) float64 { return clamp(1e-5 * (h + 50)) }

	var points []curve.Point
	for h := 1000.0; h >= -1000; h -= 25 {
		points = append(points, curve.Pt(h, desc(h)))
	}
	for h := -975.0; h <= 1000; h += 25 {
		points = append(points, curve.Pt(h, asc(h)))
	}

	return curve.New("cgs-loop", points, units.FieldOe, units.MomentEmu)
}

// testSample has volume 1e-9 m³ via mass/density, so 1e-3 emu maps to
// 1e3 A/m.
func testSample() *geometry.Sample {
	return &geometry.Sample{
		Shape:   geometry.ShapeThinFilm,
		Mass:    8.9e-6,
		Density: 8900,
	}
}

func TestAnalyzeLoopNormalizesUnits(t *testing.T) {
	report, err := AnalyzeLoop(cgsLoop(),
		WithSample(testSample()),
		WithTargetUnit(units.MomentAPerM),
	)
	require.NoError(t, err)

	require.Equal(t, units.FieldAm, report.Curve.FieldUnit)
	require.Equal(t, units.MomentAPerM, report.Curve.MomentUnit)
	require.Empty(t, report.Skipped)

	oeToAm := 1000 / (4 * math.Pi)

	require.NotNil(t, report.Coercivity)
	require.InEpsilon(t, 50*oeToAm, report.Coercivity.Value, 1e-9)

	require.NotNil(t, report.Remanence)
	require.InEpsilon(t, 500.0, report.Remanence.Value, 1e-9)

	require.NotNil(t, report.Saturation)
	require.InEpsilon(t, 1000.0, report.Saturation.Value, 1e-6)
}

func TestAnalyzeLoopDefaultTargetKeepsQuantityKind(t *testing.T) {
	// emu is a raw moment, so the default normalization lands on A·m²
	// and needs no sample context.
	report, err := AnalyzeLoop(cgsLoop())
	require.NoError(t, err)

	require.Equal(t, units.MomentAm2, report.Curve.MomentUnit)
	require.NotNil(t, report.Saturation)
	require.InEpsilon(t, 1e-6, report.Saturation.Value, 1e-6)
}

func TestAnalyzeLoopMissingContext(t *testing.T) {
	_, err := AnalyzeLoop(cgsLoop(), WithTargetUnit(units.MomentAPerM))
	require.ErrorIs(t, err, units.ErrMissingPhysicalContext)
}

func TestAnalyzeLoopPinnedWindow(t *testing.T) {
	report, err := AnalyzeLoop(cgsLoop(), WithWindow(analysis.Window{Min: 5e4}))
	require.NoError(t, err)
	require.Equal(t, analysis.Window{Min: 5e4}, report.Window)
}

func TestAnalyzeLoopBackgroundSubtraction(t *testing.T) {
	// Add a paramagnetic slope of 1e-6 emu/Oe on top of the loop.
	base := cgsLoop()
	points := make([]curve.Point, base.Len())
	for i, p := range base.Points {
		p.M += 1e-6 * p.H
		points[i] = p
	}
	c := base.WithPoints("sloped-loop", points)

	report, err := AnalyzeLoop(c, WithBackground(analysis.BackgroundLinear))
	require.NoError(t, err)

	require.NotNil(t, report.Background)
	require.NotNil(t, report.Saturation)
	require.InEpsilon(t, 1e-6, report.Saturation.Value, 1e-6)
	require.InDelta(t, 0.0, report.Saturation.Chi, 1e-12)

	record := report.BackgroundRecord()
	require.NotNil(t, record)
	require.Equal(t, "linear", record.Kind)
	require.Equal(t, session.CurveID(report.Curve.Label), record.CurveID)
}

func TestAnalyzeLoopSmoothing(t *testing.T) {
	report, err := AnalyzeLoop(cgsLoop(), WithSmoothing(5, 2))
	require.NoError(t, err)
	require.NotNil(t, report.Coercivity)

	_, err = AnalyzeLoop(cgsLoop(), WithSmoothing(4, 2))
	require.Error(t, err)

	_, err = AnalyzeLoop(cgsLoop(), WithSmoothing(5, 5))
	require.Error(t, err)
}

func TestAnalyzeLoopSkipsFailedMetrics(t *testing.T) {
	// A moment-only offset curve has no zero crossing: coercivity and
	// remanence are skipped, saturation still reported.
	var points []curve.Point
	for h := -1000.0; h <= 1000; h += 25 {
		points = append(points, curve.Pt(h, 5e-3+1e-9*h))
	}
	c := curve.New("offset", points, units.FieldOe, units.MomentEmu)

	report, err := AnalyzeLoop(c)
	require.NoError(t, err)

	require.Nil(t, report.Coercivity)
	require.NotEmpty(t, report.Skipped)
	require.NotNil(t, report.Saturation)
}

func TestLoopReportMetricsRoundTrip(t *testing.T) {
	report, err := AnalyzeLoop(cgsLoop())
	require.NoError(t, err)

	metrics := report.Metrics()
	require.Len(t, metrics, 3)
	for _, m := range metrics {
		require.Equal(t, session.CurveID(report.Curve.Label), m.CurveID)
	}

	snap := &session.Snapshot{
		CreatedAt: time.Unix(0, 1756600000000000000),
		Curves:    []*curve.Curve{report.Curve},
		Metrics:   metrics,
	}
	data, err := snap.Encode(session.CompressionS2)
	require.NoError(t, err)

	decoded, err := session.Decode(data)
	require.NoError(t, err)
	require.Equal(t, metrics, decoded.Metrics)
}

func TestAnisotropyFromReport(t *testing.T) {
	const (
		ms = 8e5
		a  = 1.0
		b  = 1e-12
	)

	var points []curve.Point
	for f := 0.5; f <= 0.96; f += 0.05 {
		m := f * ms
		points = append(points, curve.Pt(m*(a+b*m*m), m))
	}
	hard := curve.New("hard-axis", points, units.FieldAm, units.MomentAPerM)

	report := &LoopReport{
		Saturation: &analysis.MsResult{FitResult: analysis.FitResult{Value: ms}},
	}

	res, err := Anisotropy(hard, report, nil)
	require.NoError(t, err)
	require.InEpsilon(t, 0.5*analysis.Mu0*ms*ms*a, res.Value, 1e-9)

	_, err = Anisotropy(hard, &LoopReport{}, nil)
	require.ErrorIs(t, err, analysis.ErrMissingSaturationMagnetization)
}
