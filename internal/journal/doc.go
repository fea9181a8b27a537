// Package journal provides SQLite-backed durable storage for runtime
// events: construction, property changes, signal emissions, and
// reference-count transitions.
//
// The journal is an append-only log. All ordering uses seq INTEGER (the
// registry's logical clock), never timestamps, so a trace reads back in
// exactly the order the runtime produced it regardless of wall time.
// Payloads are stored as RFC 8785 canonical JSON, which makes persisted
// traces byte-comparable for golden testing.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package journal
