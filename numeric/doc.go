// Package numeric provides the value types that polyconst-generated code is
// built on.
//
// Go has no predeclared non-zero integer types and no 128-bit integers, so
// both live here:
//
//	numeric.NonZero[uint8]   // nz_u8
//	numeric.Int128           // i128
//	numeric.NonZero[Uint128] // nz_u128
//
// Generated code constructs these values with AssumeNonZero and the
// FromParts constructors. The generator has already proven the values valid,
// and for the fixed-width wrappers the generated file also carries a constant
// guard that fails `go build` on zero.
package numeric
