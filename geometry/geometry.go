package geometry

import (
	"errors"
	"math"
)

// ErrUnderspecified indicates the sample description does not carry enough
// information (mass/density or dimensions) to derive the requested quantity.
var ErrUnderspecified = errors.New("sample geometry underspecified")

// Shape identifies the sample geometry used for volume derivation and
// demagnetization factors.
type Shape uint8

const (
	ShapeUnspecified Shape = 0x0 // ShapeUnspecified disables geometry-based corrections.
	ShapeThinFilm    Shape = 0x1 // ShapeThinFilm is a film described by thickness and area.
	ShapeRod         Shape = 0x2 // ShapeRod is a cylinder described by radius and length.
	ShapeSphere      Shape = 0x3 // ShapeSphere is a sphere described by radius.
	ShapeEllipsoid   Shape = 0x4 // ShapeEllipsoid is a spheroid described by radius and length.
)

func (s Shape) String() string {
	switch s {
	case ShapeThinFilm:
		return "ThinFilm"
	case ShapeRod:
		return "Rod"
	case ShapeSphere:
		return "Sphere"
	case ShapeEllipsoid:
		return "Ellipsoid"
	case ShapeUnspecified:
		return "Unspecified"
	default:
		return "Unknown"
	}
}

// Orientation describes how the applied field relates to the sample's
// distinguished axis: the film normal, or the rod/ellipsoid long axis.
type Orientation uint8

const (
	OrientationUnset      Orientation = 0x0 // OrientationUnset falls back to the shape's default.
	OrientationOutOfPlane Orientation = 0x1 // OrientationOutOfPlane: field along the film normal.
	OrientationInPlane    Orientation = 0x2 // OrientationInPlane: field in the film plane.
	OrientationAxial      Orientation = 0x3 // OrientationAxial: field along the long axis.
	OrientationTransverse Orientation = 0x4 // OrientationTransverse: field across the long axis.
)

func (o Orientation) String() string {
	switch o {
	case OrientationOutOfPlane:
		return "OutOfPlane"
	case OrientationInPlane:
		return "InPlane"
	case OrientationAxial:
		return "Axial"
	case OrientationTransverse:
		return "Transverse"
	case OrientationUnset:
		return "Unset"
	default:
		return "Unknown"
	}
}

// Sample holds the physical context of a measured specimen. All quantities
// are SI: meters, square meters, kilograms, kg/m³. Analysis code only reads
// a Sample, never mutates it.
type Sample struct {
	Shape       Shape
	Orientation Orientation

	// AngleDeg tilts the applied field away from the orientation axis,
	// in degrees. Zero means perfectly aligned.
	AngleDeg float64

	Mass    float64 // kg
	Density float64 // kg/m³

	Thickness float64 // m, thin films
	Area      float64 // m², thin films
	Radius    float64 // m, spheres and rod/ellipsoid cross sections
	Length    float64 // m, rod/ellipsoid long axis
}

// Volume derives the sample volume in m³. Mass over density wins when both
// are known; otherwise the shape's dimensions are used. Returns
// ErrUnderspecified when neither route is possible.
func (s *Sample) Volume() (float64, error) {
	if s.Mass > 0 && s.Density > 0 {
		return s.Mass / s.Density, nil
	}

	switch s.Shape {
	case ShapeThinFilm:
		if s.Thickness > 0 && s.Area > 0 {
			return s.Thickness * s.Area, nil
		}
	case ShapeRod:
		if s.Radius > 0 && s.Length > 0 {
			return math.Pi * s.Radius * s.Radius * s.Length, nil
		}
	case ShapeSphere:
		if s.Radius > 0 {
			return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius, nil
		}
	case ShapeEllipsoid:
		// Spheroid with equatorial radius and polar length.
		if s.Radius > 0 && s.Length > 0 {
			return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * (s.Length / 2), nil
		}
	}

	return 0, ErrUnderspecified
}

// HasMass reports whether a mass-normalized conversion is possible.
func (s *Sample) HasMass() bool {
	return s != nil && s.Mass > 0
}
