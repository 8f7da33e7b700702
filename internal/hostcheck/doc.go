// Package hostcheck type-checks generated Go code.
//
// Generated files rely on the Go type checker for everything the generator
// leaves to it: zero guards on non-zero variants, conversions whose value
// references identifiers outside the declaration list, and forward
// references. CheckSource checks a single generated file in isolation;
// CheckPackages loads real packages through go/packages.
package hostcheck
