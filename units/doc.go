// Package units converts magnetometry quantities between CGS instrument
// units and canonical SI.
//
// Field conversion (Oe ↔ A/m) is a pure factor. Moment conversions that
// change the normalization class (raw moment, mass-normalized, volume
// magnetization) need physical context from the sample description; when
// it is missing the conversion fails with a MissingContextError naming
// exactly what is required, never a silently wrong number.
package units
