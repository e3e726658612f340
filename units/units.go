package units

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vsmlab/magcore/geometry"
)

// ErrMissingPhysicalContext indicates a mass- or volume-normalized
// conversion was requested without enough sample context to perform it.
// The concrete error is always a *MissingContextError naming the inputs
// that must be supplied.
var ErrMissingPhysicalContext = errors.New("missing physical context")

// MissingContextError reports which sample inputs a conversion needs. It is
// surfaced to the caller as a request for the missing quantities rather than
// a computed garbage value.
type MissingContextError struct {
	// Conversion describes the attempted conversion, e.g. "emu -> A/m".
	Conversion string
	// Missing lists the required inputs, e.g. ["mass", "density"].
	Missing []string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("conversion %s requires %s", e.Conversion, strings.Join(e.Missing, ", "))
}

func (e *MissingContextError) Unwrap() error {
	return ErrMissingPhysicalContext
}

// System selects the display unit system. Internally every quantity is
// canonicalized to SI; System only affects which units Display* report.
type System uint8

const (
	SI  System = 0x1 // SI: A/m fields, A·m² moments.
	CGS System = 0x2 // CGS: Oe fields, emu moments.
)

func (s System) String() string {
	switch s {
	case SI:
		return "SI"
	case CGS:
		return "CGS"
	default:
		return "Unknown"
	}
}

// FieldUnit tags an applied-field quantity.
type FieldUnit uint8

const (
	FieldAm FieldUnit = 0x1 // FieldAm is ampere per meter (SI).
	FieldOe FieldUnit = 0x2 // FieldOe is oersted (CGS).
)

func (u FieldUnit) String() string {
	switch u {
	case FieldAm:
		return "A/m"
	case FieldOe:
		return "Oe"
	default:
		return "Unknown"
	}
}

// MomentUnit tags a moment or magnetization quantity. The first three are
// CGS, the last three their SI counterparts.
type MomentUnit uint8

const (
	MomentEmu       MomentUnit = 0x1 // MomentEmu is emu (raw moment, CGS).
	MomentEmuPerG   MomentUnit = 0x2 // MomentEmuPerG is emu/g (mass-normalized, CGS).
	MomentEmuPerCm3 MomentUnit = 0x3 // MomentEmuPerCm3 is emu/cm³ (volume-normalized, CGS).
	MomentAm2       MomentUnit = 0x4 // MomentAm2 is A·m² (raw moment, SI).
	MomentAm2PerKg  MomentUnit = 0x5 // MomentAm2PerKg is A·m²/kg (mass-normalized, SI).
	MomentAPerM     MomentUnit = 0x6 // MomentAPerM is A/m (volume-normalized, SI).
)

func (u MomentUnit) String() string {
	switch u {
	case MomentEmu:
		return "emu"
	case MomentEmuPerG:
		return "emu/g"
	case MomentEmuPerCm3:
		return "emu/cm³"
	case MomentAm2:
		return "A·m²"
	case MomentAm2PerKg:
		return "A·m²/kg"
	case MomentAPerM:
		return "A/m"
	default:
		return "Unknown"
	}
}

// Conversion factors between CGS tags and their SI counterparts.
const (
	oeToAm        = 1000.0 / (4 * math.Pi) // Oe -> A/m
	emuToAm2      = 1e-3                   // emu -> A·m²
	emuPerGToSI   = 1.0                    // emu/g -> A·m²/kg
	emuPerCm3ToSI = 1000.0                 // emu/cm³ -> A/m
)

// Converter performs unit canonicalization and physical normalization. It
// replaces any process-wide unit registry: construct one per call site (or
// per batch job) and pass it explicitly, overriding the display System as
// needed. The zero value is not valid; use NewConverter.
type Converter struct {
	system System
}

// NewConverter creates a Converter with the given display system.
func NewConverter(sys System) Converter {
	return Converter{system: sys}
}

// System returns the converter's display system.
func (c Converter) System() System {
	return c.system
}

// Field canonicalizes an applied-field value to A/m. Deterministic and
// side-effect free; field conversion never needs sample context.
func (c Converter) Field(v float64, u FieldUnit) float64 {
	if u == FieldOe {
		return v * oeToAm
	}

	return v
}

// FieldFrom converts a canonical A/m value back into the tagged unit.
// Inverse of Field for every supported tag.
func (c Converter) FieldFrom(v float64, u FieldUnit) float64 {
	if u == FieldOe {
		return v / oeToAm
	}

	return v
}

// Moment canonicalizes a moment value to the SI counterpart of its tag
// class: emu -> A·m², emu/g -> A·m²/kg, emu/cm³ -> A/m. Pure unit
// conversion; changing the normalization class requires Magnetization or
// SpecificMoment.
func (c Converter) Moment(v float64, u MomentUnit) float64 {
	switch u {
	case MomentEmu:
		return v * emuToAm2
	case MomentEmuPerG:
		return v * emuPerGToSI
	case MomentEmuPerCm3:
		return v * emuPerCm3ToSI
	default:
		return v
	}
}

// MomentFrom converts a canonical SI value back into the tagged unit.
// Inverse of Moment for every supported tag.
func (c Converter) MomentFrom(v float64, u MomentUnit) float64 {
	switch u {
	case MomentEmu:
		return v / emuToAm2
	case MomentEmuPerG:
		return v / emuPerGToSI
	case MomentEmuPerCm3:
		return v / emuPerCm3ToSI
	default:
		return v
	}
}

// SITag returns the canonical SI tag Moment converts the given tag into.
func SITag(u MomentUnit) MomentUnit {
	switch u {
	case MomentEmu:
		return MomentAm2
	case MomentEmuPerG:
		return MomentAm2PerKg
	case MomentEmuPerCm3:
		return MomentAPerM
	default:
		return u
	}
}

// Magnetization converts a tagged moment value to volume magnetization in
// A/m. Raw moments (emu, A·m²) need a sample volume; mass-normalized values
// (emu/g, A·m²/kg) need a density. Fails with a *MissingContextError when
// the sample cannot supply what the conversion needs.
func (c Converter) Magnetization(v float64, u MomentUnit, s *geometry.Sample) (float64, error) {
	si := c.Moment(v, u)

	switch SITag(u) {
	case MomentAPerM:
		return si, nil
	case MomentAm2:
		vol, err := sampleVolume(u, s)
		if err != nil {
			return 0, err
		}

		return si / vol, nil
	case MomentAm2PerKg:
		if s == nil || s.Density <= 0 {
			return 0, &MissingContextError{
				Conversion: u.String() + " -> A/m",
				Missing:    []string{"density"},
			}
		}

		return si * s.Density, nil
	default:
		return 0, fmt.Errorf("unsupported moment unit %s", u)
	}
}

// SpecificMoment converts a tagged moment value to mass-normalized moment
// in A·m²/kg. Raw moments need a mass; volume-normalized values need a
// density. Fails with a *MissingContextError when context is missing.
func (c Converter) SpecificMoment(v float64, u MomentUnit, s *geometry.Sample) (float64, error) {
	si := c.Moment(v, u)

	switch SITag(u) {
	case MomentAm2PerKg:
		return si, nil
	case MomentAm2:
		if !s.HasMass() {
			return 0, &MissingContextError{
				Conversion: u.String() + " -> A·m²/kg",
				Missing:    []string{"mass"},
			}
		}

		return si / s.Mass, nil
	case MomentAPerM:
		if s == nil || s.Density <= 0 {
			return 0, &MissingContextError{
				Conversion: u.String() + " -> A·m²/kg",
				Missing:    []string{"density"},
			}
		}

		return si / s.Density, nil
	default:
		return 0, fmt.Errorf("unsupported moment unit %s", u)
	}
}

// RawMoment converts a tagged moment value to raw moment in A·m².
// Mass-normalized values need a mass; volume-normalized values need a
// volume. Fails with a *MissingContextError when context is missing.
func (c Converter) RawMoment(v float64, u MomentUnit, s *geometry.Sample) (float64, error) {
	si := c.Moment(v, u)

	switch SITag(u) {
	case MomentAm2:
		return si, nil
	case MomentAm2PerKg:
		if !s.HasMass() {
			return 0, &MissingContextError{
				Conversion: u.String() + " -> A·m²",
				Missing:    []string{"mass"},
			}
		}

		return si * s.Mass, nil
	case MomentAPerM:
		vol, err := sampleVolume(u, s)
		if err != nil {
			return 0, err
		}

		return si * vol, nil
	default:
		return 0, fmt.Errorf("unsupported moment unit %s", u)
	}
}

// DisplayField converts a canonical A/m value into the system's display
// unit and reports the tag.
func (c Converter) DisplayField(v float64) (float64, FieldUnit) {
	if c.system == CGS {
		return c.FieldFrom(v, FieldOe), FieldOe
	}

	return v, FieldAm
}

// sampleVolume wraps geometry volume derivation in a MissingContextError so
// the caller learns which inputs to prompt for.
func sampleVolume(u MomentUnit, s *geometry.Sample) (float64, error) {
	if s != nil {
		if vol, err := s.Volume(); err == nil && vol > 0 {
			return vol, nil
		}
	}

	return 0, &MissingContextError{
		Conversion: u.String() + " -> A/m",
		Missing:    []string{"mass and density", "or explicit dimensions"},
	}
}
