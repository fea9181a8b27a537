// Package typedef compiles CUE type-definition files into registrations
// for the object runtime.
//
// Types are declared declaratively and registered parents-first, so a
// definition file is order-independent. The compiler rejects float
// property types - the runtime's value domain is int64 only.
package typedef
