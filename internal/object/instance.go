package object

import (
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/quark/internal/value"
)

// Instance is a single allocated object of a registered type, with its own
// property values and subscriber lists.
//
// Property and signal state is exclusively owned by the instance and
// guarded by one mutex per instance: no two goroutines can race a Set
// against a concurrent Emit snapshot. Handlers run outside the lock, so a
// handler may freely call back into the same instance.
type Instance struct {
	id   string
	desc *TypeDescriptor
	reg  *Registry

	mu        sync.Mutex
	refs      int
	destroyed bool
	props     map[string]value.Value
	subs      map[string][]subscription
	nextConn  ConnectionID
}

// ID returns the instance's journal/trace identifier.
func (i *Instance) ID() string { return i.id }

// TypeName returns the instance's registered type name.
func (i *Instance) TypeName() string { return i.desc.name }

// Descriptor returns the instance's immutable type descriptor.
func (i *Instance) Descriptor() *TypeDescriptor { return i.desc }

// IsA reports whether the instance's type is typeName or descends from it.
func (i *Instance) IsA(typeName string) bool {
	return i.desc.isOrDescendsFrom(typeName)
}

// Retain increments the reference count and returns the same instance.
// Lifetime extends to the longest holder.
//
// Retaining a destroyed instance is a programmer error and panics, the
// same class of misuse as re-waiting a finished sync.WaitGroup.
func (i *Instance) Retain() *Instance {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		panic(fmt.Sprintf("object: Retain on destroyed %s instance", i.desc.name))
	}
	i.refs++

	if err := i.reg.record(EventRetain, i, "", value.Int(i.refs)); err != nil {
		// Retain has no error return; surface journal faults loudly
		// rather than dropping them.
		panic(fmt.Sprintf("object: journal retain: %v", err))
	}
	return i
}

// Release decrements the reference count. When it reaches zero the
// instance is destroyed: subscribers are cleared before property storage,
// so no signal can fire during teardown. Fails with INVALID_RELEASE when
// the instance is already destroyed.
func (i *Instance) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return newInvalidReleaseError(i.desc.name)
	}

	i.refs--
	if err := i.reg.record(EventRelease, i, "", value.Int(i.refs)); err != nil {
		i.refs++
		return fmt.Errorf("journal release: %w", err)
	}

	if i.refs > 0 {
		return nil
	}

	// Destruction order contract: subscribers first, then properties.
	i.subs = nil
	i.props = nil
	i.destroyed = true

	if err := i.reg.record(EventDestroy, i, "", nil); err != nil {
		return fmt.Errorf("journal destroy: %w", err)
	}
	return nil
}

// RefCount returns the current reference count. Zero means destroyed.
func (i *Instance) RefCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.refs
}

// Get returns the current value of a property.
// Fails with UNKNOWN_PROPERTY for names absent from the resolved spec set
// and NOT_READABLE for write-only properties.
func (i *Instance) Get(name string) (value.Value, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return nil, newInvalidReleaseError(i.desc.name)
	}
	spec, ok := i.desc.PropSpec(name)
	if !ok {
		return nil, newUnknownPropertyError(i.desc.name, name)
	}
	if spec.access()&Readable == 0 {
		return nil, newNotReadableError(i.desc.name, name)
	}
	return i.props[name], nil
}

// Set stores a new property value and, on actual change, emits the
// property's "<name>-changed" signal with the new value.
//
// A Set whose value is structurally equal to the stored value is an
// idempotent no-op: no storage mutation, no journal record, no emission.
// Fails with UNKNOWN_PROPERTY, NOT_WRITABLE, or TYPE_MISMATCH. Handler
// errors raised by the emission propagate to the caller.
func (i *Instance) Set(name string, v value.Value) error {
	i.mu.Lock()

	if i.destroyed {
		i.mu.Unlock()
		return newInvalidReleaseError(i.desc.name)
	}
	spec, ok := i.desc.PropSpec(name)
	if !ok {
		i.mu.Unlock()
		return newUnknownPropertyError(i.desc.name, name)
	}
	if spec.access()&Writable == 0 {
		i.mu.Unlock()
		return newNotWritableError(i.desc.name, name)
	}
	if !spec.accepts(v) {
		got := "nil"
		if v != nil {
			got = v.Kind().String()
		}
		i.mu.Unlock()
		return newTypeMismatchError(i.desc.name, name, spec.Kind.String(), got)
	}

	if value.Equal(i.props[name], v) {
		// Same value, no change: no store, no signal.
		i.mu.Unlock()
		return nil
	}

	i.props[name] = v
	if err := i.reg.record(EventSet, i, name, v); err != nil {
		i.mu.Unlock()
		return fmt.Errorf("journal set: %w", err)
	}
	i.mu.Unlock()

	return i.Emit(ChangedSignal(name), v)
}

// Increment adds one to an int property: Set(name, Get(name)+1).
// Inherits Set's change-detection semantics. Fails with TYPE_MISMATCH on
// non-int properties.
func (i *Instance) Increment(name string) error {
	return i.addToInt(name, 1)
}

// Decrement subtracts one from an int property: Set(name, Get(name)-1).
func (i *Instance) Decrement(name string) error {
	return i.addToInt(name, -1)
}

func (i *Instance) addToInt(name string, delta int64) error {
	cur, err := i.Get(name)
	if err != nil {
		return err
	}
	n, ok := cur.(value.Int)
	if !ok {
		return newTypeMismatchError(i.desc.name, name, value.KindInt.String(), cur.Kind().String())
	}
	return i.Set(name, value.Int(int64(n)+delta))
}

// String renders the instance as "type(prop=value, ...)" over its readable
// properties in declaration order, root-first. Null values are omitted.
func (i *Instance) String() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return fmt.Sprintf("%s(destroyed)", i.desc.name)
	}

	var b strings.Builder
	b.WriteString(i.desc.name)
	b.WriteByte('(')
	first := true
	for _, name := range i.desc.propOrder {
		spec := i.desc.resolvedProps[name]
		if spec.access()&Readable == 0 {
			continue
		}
		v := i.props[name]
		if v == nil || v.Kind() == value.KindNull {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteByte('=')
		switch tv := v.(type) {
		case value.String:
			fmt.Fprintf(&b, "'%s'", string(tv))
		case value.Int:
			fmt.Fprintf(&b, "%d", int64(tv))
		case value.Bool:
			fmt.Fprintf(&b, "%t", bool(tv))
		default:
			if data, err := value.MarshalCanonical(v); err == nil {
				b.Write(data)
			} else {
				b.WriteString("<unprintable>")
			}
		}
	}
	b.WriteByte(')')
	return b.String()
}
