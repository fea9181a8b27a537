package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator("obj")

	assert.Equal(t, "obj-1", gen.Generate())
	assert.Equal(t, "obj-2", gen.Generate())
	assert.Equal(t, "obj-3", gen.Generate())

	gen.Reset()
	assert.Equal(t, "obj-1", gen.Generate())
}

func TestSequentialIDGeneratorPrefixes(t *testing.T) {
	a := NewSequentialIDGenerator("a")
	b := NewSequentialIDGenerator("b")

	assert.Equal(t, "a-1", a.Generate())
	assert.Equal(t, "b-1", b.Generate())
	assert.Equal(t, "a-2", a.Generate())
}
