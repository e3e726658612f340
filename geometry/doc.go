// Package geometry describes the measured sample: shape, dimensions, mass
// and orientation. From that description it resolves the quantities the
// analysis needs: the sample volume and the demagnetizing factor along the
// measurement direction (closed spheroid forms, thin-film cosine mixing).
package geometry
