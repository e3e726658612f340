package geometry

import "math"

// DemagResult carries the demagnetizing factor for a sample along the
// measured direction, in the SI-normalized convention where the factors of
// the three principal axes sum to 1 (sphere: 1/3 each).
type DemagResult struct {
	// N is the demagnetizing factor, in [0, 1].
	N float64
	// Note is non-empty when the factor is a fallback or an assumption was
	// made (unspecified geometry, defaulted orientation).
	Note string
}

// Demag resolves the demagnetizing factor for the sample. Pure function of
// the geometry; an unspecified shape yields N=0 with an explanatory note so
// callers can surface the skipped correction as a warning.
func Demag(s Sample) DemagResult {
	switch s.Shape {
	case ShapeSphere:
		return DemagResult{N: 1.0 / 3.0}
	case ShapeThinFilm:
		return filmDemag(s)
	case ShapeRod, ShapeEllipsoid:
		return spheroidDemag(s)
	default:
		return DemagResult{N: 0, Note: "unspecified geometry: demagnetization correction skipped"}
	}
}

// filmDemag treats the film as an infinite sheet: N=1 along the normal,
// N=0 in plane. A tilt angle away from the normal scales the out-of-plane
// factor by cos²θ.
func filmDemag(s Sample) DemagResult {
	theta := s.AngleDeg * math.Pi / 180

	switch s.Orientation {
	case OrientationInPlane:
		// The in-plane factor stays zero; tilting toward the normal mixes
		// the out-of-plane component back in.
		sin := math.Sin(theta)
		return DemagResult{N: sin * sin}
	case OrientationOutOfPlane:
		cos := math.Cos(theta)
		return DemagResult{N: cos * cos}
	default:
		cos := math.Cos(theta)
		return DemagResult{N: cos * cos, Note: "film orientation unset: assuming out-of-plane"}
	}
}

// spheroidDemag uses the analytic prolate/oblate spheroid factors on the
// aspect ratio m = length / diameter, the standard approximation for rods.
func spheroidDemag(s Sample) DemagResult {
	if s.Radius <= 0 || s.Length <= 0 {
		return DemagResult{N: 0, Note: "rod/ellipsoid dimensions missing: demagnetization correction skipped"}
	}

	m := s.Length / (2 * s.Radius)
	na := axialFactor(m)
	nt := (1 - na) / 2

	theta := s.AngleDeg * math.Pi / 180
	cos2 := math.Cos(theta) * math.Cos(theta)
	sin2 := 1 - cos2

	switch s.Orientation {
	case OrientationTransverse:
		return DemagResult{N: nt*cos2 + na*sin2}
	case OrientationAxial:
		return DemagResult{N: na*cos2 + nt*sin2}
	default:
		return DemagResult{N: na*cos2 + nt*sin2, Note: "orientation unset: assuming axial"}
	}
}

// axialFactor returns the demagnetizing factor along the symmetry axis of a
// spheroid with aspect ratio m = c/a (polar over equatorial semi-axis).
// Prolate (m>1) and oblate (m<1) closed forms; both limit to 1/3 at m=1.
func axialFactor(m float64) float64 {
	const eps = 1e-9

	switch {
	case math.Abs(m-1) < eps:
		return 1.0 / 3.0
	case m > 1:
		q := math.Sqrt(m*m - 1)
		return (m/(2*q)*math.Log((m+q)/(m-q)) - 1) / (m*m - 1)
	default:
		q := math.Sqrt(1 - m*m)
		return (1 - m/q*math.Acos(m)) / (1 - m*m)
	}
}
