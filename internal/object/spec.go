package object

import (
	"slices"

	"github.com/roach88/quark/internal/value"
)

// Access is a property's read/write capability flag set.
type Access int

const (
	// Readable allows Get on the property.
	Readable Access = 1 << iota
	// Writable allows Set on the property.
	Writable

	// ReadWrite allows both Get and Set.
	ReadWrite = Readable | Writable
)

// PropSpec declares a named, typed property slot.
type PropSpec struct {
	// Name is unique within a type's resolved spec set, inherited specs
	// included - a descendant spec of the same name shadows the ancestor's.
	Name string

	// Kind is the declared value kind. Stored values must match it.
	Kind value.Kind

	// Default is applied to unset properties at construction.
	// A nil Default means the kind's zero value (Null for nullable specs).
	Default value.Value

	// Access controls Get/Set availability. Zero means ReadWrite.
	Access Access

	// Nullable permits Null as a stored value alongside Kind.
	Nullable bool
}

// access normalizes the zero value to ReadWrite.
func (p PropSpec) access() Access {
	if p.Access == 0 {
		return ReadWrite
	}
	return p.Access
}

// defaultValue resolves the spec's effective default.
func (p PropSpec) defaultValue() value.Value {
	if p.Default != nil {
		return p.Default
	}
	if p.Nullable {
		return value.Null{}
	}
	switch p.Kind {
	case value.KindInt:
		return value.Int(0)
	case value.KindString:
		return value.String("")
	case value.KindBool:
		return value.Bool(false)
	case value.KindArray:
		return value.Array{}
	case value.KindObject:
		return value.Object{}
	default:
		return value.Null{}
	}
}

// accepts reports whether v satisfies the spec's kind constraint.
func (p PropSpec) accepts(v value.Value) bool {
	if v == nil {
		return false
	}
	if v.Kind() == value.KindNull {
		return p.Nullable
	}
	return v.Kind() == p.Kind
}

// TypeDef is the registration input for a type.
type TypeDef struct {
	// Name is the unique type name.
	Name string

	// Parent is the parent type's name, empty for root types.
	// The parent must already be registered.
	Parent string

	// Props are the properties declared by this type, in declaration order.
	Props []PropSpec

	// Signals are the signal names declared by this type, beyond the
	// implicit "<property>-changed" signal every property gets.
	Signals []string
}

// ChangedSignal returns the implicit change-notification signal name for a
// property: "<name>-changed".
func ChangedSignal(property string) string {
	return property + "-changed"
}

// TypeDescriptor is the immutable registered metadata for a type.
//
// Resolution is flattened at registration time: the descriptor carries the
// merged property and signal tables of its entire ancestor chain, so
// instance-side lookups never walk the hierarchy.
type TypeDescriptor struct {
	name   string
	parent *TypeDescriptor

	// resolvedProps maps property name to its effective spec
	// (descendant shadows ancestor).
	resolvedProps map[string]PropSpec

	// propOrder lists resolved property names root-first in declaration
	// order, shadowed duplicates collapsed to their first position.
	propOrder []string

	// resolvedSignals is the union of declared signals across the chain
	// plus the implicit per-property changed signals.
	resolvedSignals map[string]struct{}
}

// Name returns the type's registered name.
func (d *TypeDescriptor) Name() string { return d.name }

// Parent returns the parent descriptor, nil for root types.
func (d *TypeDescriptor) Parent() *TypeDescriptor { return d.parent }

// PropSpec returns the resolved spec for a property name.
func (d *TypeDescriptor) PropSpec(name string) (PropSpec, bool) {
	spec, ok := d.resolvedProps[name]
	return spec, ok
}

// PropNames returns resolved property names root-first in declaration order.
func (d *TypeDescriptor) PropNames() []string {
	return slices.Clone(d.propOrder)
}

// HasSignal reports whether the signal is declared for this type,
// inherited and implicit changed signals included.
func (d *TypeDescriptor) HasSignal(name string) bool {
	_, ok := d.resolvedSignals[name]
	return ok
}

// SignalNames returns all resolved signal names, sorted.
func (d *TypeDescriptor) SignalNames() []string {
	names := make([]string, 0, len(d.resolvedSignals))
	for name := range d.resolvedSignals {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// isOrDescendsFrom reports whether d is typeName or has it as an ancestor.
func (d *TypeDescriptor) isOrDescendsFrom(typeName string) bool {
	for cur := d; cur != nil; cur = cur.parent {
		if cur.name == typeName {
			return true
		}
	}
	return false
}
