// Package ir provides the declaration model for polyconst.
//
// This package contains type definitions and naming rules only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Declarations are immutable once parsed; substitution produces new trees
//   - Generated names are a pure function of (prefix, name, visibility)
//   - Identifiers are compared in Unicode NFC form
//   - All JSON tags use snake_case
package ir
