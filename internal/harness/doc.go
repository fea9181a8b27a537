// Package harness runs declarative YAML scenarios against a real runtime:
// a fresh registry, an in-memory journal, and sequential instance ids.
// Scenarios declare types in CUE, construct objects, drive property and
// signal operations, and assert on the resulting state and journal trace.
// Golden fixtures pin full traces byte-for-byte via canonical JSON.
package harness
