// Package testutil provides deterministic test doubles for the runtime's
// pluggable pieces: instance id generation and anything else that would
// otherwise make golden traces non-reproducible.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator hands out "obj-1", "obj-2", ... instance ids.
//
// Substituting it for the UUIDv7 generator makes scenario runs and golden
// traces byte-identical across executions.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator with the given prefix.
// An empty prefix defaults to "obj".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "obj"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next sequential id.
//
// Implements object.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset, the next Generate returns
// "<prefix>-1" again.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
