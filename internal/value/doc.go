// Package value provides the constrained property value domain for Quark.
//
// This package contains value type definitions only. All other internal
// packages import value; value imports nothing internal. This keeps the
// value domain the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float kind anywhere - use Int (int64) for numbers
//   - Equality is structural and total over the domain (Equal)
//   - Canonical serialization is RFC 8785 with NFC-normalized strings
package value
