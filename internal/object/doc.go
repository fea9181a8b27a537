// Package object implements the Quark object runtime.
//
// The runtime provides four cooperating pieces:
//
// Type registry: process-wide, populated before instances exist.
// Registration flattens the ancestor chain into per-type lookup tables, so
// descriptors are immutable and property/signal resolution never walks the
// hierarchy at runtime.
//
// Reference-counted instances: every Construct returns an instance with
// count 1. Retain/Release govern shared ownership; destruction at zero
// clears subscribers before property storage so no signal can fire during
// teardown.
//
// Property store: per-instance named, typed slots validated against the
// resolved specs on every access. A Set that stores an actually-different
// value (structural equality) emits the property's "<name>-changed"
// signal; an equal value is a no-op.
//
// Signal dispatcher: per-instance ordered subscriber lists. Emission
// iterates a snapshot for re-entrancy safety and does not isolate handler
// failures - they propagate to the emitter.
//
// CRITICAL PATTERNS:
//
// Deterministic ordering: subscribers fire in connection order, journal
// events are stamped by a monotonic logical clock. No wall-clock time
// anywhere in the runtime.
//
// Single-lock instances: one mutex per instance serializes property and
// signal mutations; handlers always run outside the lock so they can call
// back into the instance.
package object
