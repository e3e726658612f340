package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func branchOf(points ...Point) *Branch {
	return &Branch{Points: points, Ascending: points[len(points)-1].H >= points[0].H}
}

func TestCrossingH_LinearMidpoint(t *testing.T) {
	b := branchOf(Pt(-1, -5), Pt(1, 5))

	x, err := b.CrossingH(0, InterpLinear)
	require.NoError(t, err)
	require.Equal(t, 0.0, x)
}

func TestCrossingH_ExactSampleHitWins(t *testing.T) {
	b := branchOf(Pt(-2, -3), Pt(-0.5, 0), Pt(2, 4))

	x, err := b.CrossingH(0, InterpLinear)
	require.NoError(t, err)
	require.Equal(t, -0.5, x)
}

func TestCrossingH_InterpolatedOffCenter(t *testing.T) {
	// M goes 1 -> 4 between H=0 and H=3; M=2 is reached at H=1.
	b := branchOf(Pt(0, 1), Pt(3, 4))

	x, err := b.CrossingH(2, InterpLinear)
	require.NoError(t, err)
	require.InEpsilon(t, 1.0, x, 1e-12)
}

func TestCrossingH_NoCrossing(t *testing.T) {
	b := branchOf(Pt(1, 2), Pt(2, 3), Pt(3, 4))

	_, err := b.CrossingH(10, InterpLinear)
	require.ErrorIs(t, err, ErrNoCrossingFound)
}

func TestCrossingH_TooShort(t *testing.T) {
	b := branchOf(Pt(1, 2))

	_, err := b.CrossingH(0, InterpLinear)
	require.ErrorIs(t, err, ErrInsufficientBranchData)
}

func TestCrossingM_Remanence(t *testing.T) {
	// Field crosses zero between the middle samples; interpolate M there.
	b := branchOf(Pt(-10, -4), Pt(-2, -1), Pt(2, 3), Pt(10, 5))

	m, err := b.CrossingM(0, InterpLinear)
	require.NoError(t, err)
	require.InEpsilon(t, 1.0, m, 1e-12) // midpoint of -1 and 3
}

func TestCrossing_SplineRefinesTowardCurve(t *testing.T) {
	// Sparse samples of a tanh-shaped branch with its zero at H=0. The
	// chord across the asymmetric bracket [-0.5, 1.5] overshoots; the
	// spline lands closer to the true root.
	b := branchOf(
		Pt(-2, math.Tanh(-2)), Pt(-0.5, math.Tanh(-0.5)),
		Pt(1.5, math.Tanh(1.5)), Pt(3, math.Tanh(3)),
	)

	linear, err := b.CrossingH(0, InterpLinear)
	require.NoError(t, err)

	refined, err := b.CrossingH(0, InterpSpline)
	require.NoError(t, err)

	require.Less(t, math.Abs(refined), math.Abs(linear))

	// The refinement never leaves the bracketing interval.
	require.GreaterOrEqual(t, refined, -0.5)
	require.LessOrEqual(t, refined, 1.5)
}

func TestCrossing_SplineFallsBackWithFewPoints(t *testing.T) {
	b := branchOf(Pt(-1, -5), Pt(1, 5))

	x, err := b.CrossingH(0, InterpSpline)
	require.NoError(t, err)
	require.Equal(t, 0.0, x)
}

func TestCrossing_DescendingBranch(t *testing.T) {
	b := branchOf(Pt(5, 4), Pt(1, 2), Pt(-3, -2))

	x, err := b.CrossingH(0, InterpLinear)
	require.NoError(t, err)
	require.InEpsilon(t, -1.0, x, 1e-12) // between (1,2) and (-3,-2)
}
