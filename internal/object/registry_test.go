package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quark/internal/value"
)

// counterDef is the canonical test type: a named integer counter.
func counterDef() TypeDef {
	return TypeDef{
		Name: "counter",
		Props: []PropSpec{
			{Name: "value", Kind: value.KindInt},
			{Name: "name", Kind: value.KindString, Nullable: true},
		},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	_, err := reg.Register(counterDef())
	require.NoError(t, err)
	return reg
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	desc, err := reg.Register(counterDef())
	require.NoError(t, err)
	assert.Equal(t, "counter", desc.Name())
	assert.Nil(t, desc.Parent())

	got, err := reg.Lookup("counter")
	require.NoError(t, err)
	assert.Same(t, desc, got)
}

func TestRegisterDuplicateType(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Register(counterDef())
	require.Error(t, err)
	assert.Equal(t, ErrCodeDuplicateType, CodeOf(err))
}

func TestRegisterUnknownParent(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Register(TypeDef{Name: "orphan", Parent: "missing"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownParent, CodeOf(err))
}

func TestRegisterInvalidSpecs(t *testing.T) {
	reg := NewRegistry()

	// Empty type name
	_, err := reg.Register(TypeDef{})
	assert.Equal(t, ErrCodeInvalidSpec, CodeOf(err))

	// Duplicate property within one definition
	_, err = reg.Register(TypeDef{
		Name: "dup",
		Props: []PropSpec{
			{Name: "x", Kind: value.KindInt},
			{Name: "x", Kind: value.KindString},
		},
	})
	assert.Equal(t, ErrCodeInvalidSpec, CodeOf(err))

	// Default kind disagrees with declared kind
	_, err = reg.Register(TypeDef{
		Name:  "bad-default",
		Props: []PropSpec{{Name: "x", Kind: value.KindInt, Default: value.String("ten")}},
	})
	assert.Equal(t, ErrCodeInvalidSpec, CodeOf(err))
}

func TestLookupUnknownType(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Lookup("nope")
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownType, CodeOf(err))
}

func TestTypeNamesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := reg.Register(TypeDef{Name: name})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.TypeNames())
}

func TestResolveInheritedProps(t *testing.T) {
	reg := newTestRegistry(t)

	child, err := reg.Register(TypeDef{
		Name:   "limited",
		Parent: "counter",
		Props:  []PropSpec{{Name: "limit", Kind: value.KindInt, Default: value.Int(10)}},
	})
	require.NoError(t, err)

	// Inherited spec visible on the child
	spec, ok := child.PropSpec("value")
	require.True(t, ok)
	assert.Equal(t, value.KindInt, spec.Kind)

	// Declaration order is root-first
	assert.Equal(t, []string{"value", "name", "limit"}, child.PropNames())
}

func TestResolveShadowing(t *testing.T) {
	reg := newTestRegistry(t)

	child, err := reg.Register(TypeDef{
		Name:   "labeled",
		Parent: "counter",
		Props: []PropSpec{
			// Shadows the parent's nullable string "name"
			{Name: "name", Kind: value.KindString, Default: value.String("anonymous")},
		},
	})
	require.NoError(t, err)

	spec, ok := child.PropSpec("name")
	require.True(t, ok)
	assert.False(t, spec.Nullable)
	assert.Equal(t, value.String("anonymous"), spec.Default)

	// Shadowing keeps the ancestor's position, no duplicate entry
	assert.Equal(t, []string{"value", "name"}, child.PropNames())
}

func TestResolveSignals(t *testing.T) {
	reg := NewRegistry()

	desc, err := reg.Register(TypeDef{
		Name:    "emitter",
		Props:   []PropSpec{{Name: "state", Kind: value.KindString}},
		Signals: []string{"fired"},
	})
	require.NoError(t, err)

	// Declared signal plus implicit per-property changed signal
	assert.True(t, desc.HasSignal("fired"))
	assert.True(t, desc.HasSignal("state-changed"))
	assert.False(t, desc.HasSignal("nope"))

	_, err = reg.Register(TypeDef{Name: "sub-emitter", Parent: "emitter"})
	require.NoError(t, err)
	sub, err := reg.Lookup("sub-emitter")
	require.NoError(t, err)

	// Inherited signals resolve on descendants
	assert.True(t, sub.HasSignal("fired"))
	assert.True(t, sub.HasSignal("state-changed"))
}

func TestConstructDefaults(t *testing.T) {
	reg := newTestRegistry(t)

	obj, err := reg.Construct("counter", nil)
	require.NoError(t, err)

	v, err := obj.Get("value")
	require.NoError(t, err)
	assert.Equal(t, value.Int(0), v)

	// Nullable string defaults to Null
	name, err := obj.Get("name")
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, name)

	assert.Equal(t, 1, obj.RefCount())
	assert.NotEmpty(t, obj.ID())
}

func TestConstructWithInitial(t *testing.T) {
	reg := newTestRegistry(t)

	obj, err := reg.Construct("counter", map[string]value.Value{
		"value": value.Int(42),
		"name":  value.String("answer"),
	})
	require.NoError(t, err)

	v, err := obj.Get("value")
	require.NoError(t, err)
	assert.Equal(t, value.Int(42), v)

	name, err := obj.Get("name")
	require.NoError(t, err)
	assert.Equal(t, value.String("answer"), name)
}

func TestConstructUnknownProperty(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Construct("counter", map[string]value.Value{"bogus": value.Int(1)})
	require.Error(t, err)
	assert.True(t, IsUnknownProperty(err))
}

func TestConstructTypeMismatch(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Construct("counter", map[string]value.Value{"value": value.String("ten")})
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
}

func TestConstructUnknownType(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Construct("ghost", nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownType, CodeOf(err))
}

func TestConstructEmitsNoSignals(t *testing.T) {
	reg := newTestRegistry(t)

	// A construct with a non-default value must not fire value-changed:
	// construct a probe first, then verify the journal path by counting
	// on a second instance's subscribers (construction has no instance to
	// subscribe to yet, so assert via a fresh subscriber count of zero
	// fires after construction).
	obj, err := reg.Construct("counter", map[string]value.Value{"value": value.Int(5)})
	require.NoError(t, err)

	fired := 0
	_, err = obj.Connect("value-changed", func(_ *Instance, _ []value.Value) error {
		fired++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 0, fired)

	v, err := obj.Get("value")
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), v)
}

func TestIsAReflexiveAndTransitive(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Register(TypeDef{Name: "limited", Parent: "counter"})
	require.NoError(t, err)
	_, err = reg.Register(TypeDef{Name: "clamped", Parent: "limited"})
	require.NoError(t, err)

	obj, err := reg.Construct("clamped", nil)
	require.NoError(t, err)

	assert.True(t, obj.IsA("clamped"))
	assert.True(t, obj.IsA("limited"))
	assert.True(t, obj.IsA("counter"))
	assert.False(t, obj.IsA("unrelated"))
}

func TestInheritedPropertyAccess(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Register(TypeDef{
		Name:   "limited",
		Parent: "counter",
		Props:  []PropSpec{{Name: "limit", Kind: value.KindInt, Default: value.Int(10)}},
	})
	require.NoError(t, err)

	obj, err := reg.Construct("limited", nil)
	require.NoError(t, err)

	// Ancestor-declared property usable on the subtype
	require.NoError(t, obj.Set("value", value.Int(7)))
	v, err := obj.Get("value")
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), v)

	// UNKNOWN_PROPERTY only for names absent from the entire chain
	_, err = obj.Get("absent")
	assert.True(t, IsUnknownProperty(err))
}
