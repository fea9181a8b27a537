package object

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/quark/internal/value"
)

// Registry is the process-wide type registry.
//
// Types are expected to be registered up front, before instances are
// constructed. TypeDescriptors are immutable once registered and safely
// shared by reference. The RWMutex is the minimal protocol that makes
// concurrent Lookup/Construct against a populated registry safe; no two
// goroutines should race Register against each other.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*TypeDescriptor

	clock   *Clock
	idGen   IDGenerator
	journal Journal
}

// Option configures a Registry.
type Option func(*Registry)

// WithJournal attaches an event journal. Lifecycle and change events are
// recorded through it; a nil journal disables recording.
func WithJournal(j Journal) Option {
	return func(r *Registry) { r.journal = j }
}

// WithIDGenerator overrides the instance id generator (for deterministic
// tests and scenario runs). The default is UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Registry) { r.idGen = g }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		types: make(map[string]*TypeDescriptor),
		clock: NewClock(),
		idGen: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clock returns the registry's logical clock.
func (r *Registry) Clock() *Clock { return r.clock }

// Register adds a type and returns its immutable descriptor.
//
// Fails with DUPLICATE_TYPE if the name is taken, UNKNOWN_PARENT if a
// parent is named but not registered, and INVALID_SPEC for malformed
// inputs (empty names, duplicate property declarations, defaults that
// disagree with the declared kind).
func (r *Registry) Register(def TypeDef) (*TypeDescriptor, error) {
	if def.Name == "" {
		return nil, newInvalidSpecError(def.Name, "type name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[def.Name]; exists {
		return nil, newDuplicateTypeError(def.Name)
	}

	var parent *TypeDescriptor
	if def.Parent != "" {
		p, ok := r.types[def.Parent]
		if !ok {
			return nil, newUnknownParentError(def.Name, def.Parent)
		}
		parent = p
	}

	desc, err := resolve(def, parent)
	if err != nil {
		return nil, err
	}

	r.types[def.Name] = desc
	return desc, nil
}

// resolve flattens a definition against its parent's resolved tables.
func resolve(def TypeDef, parent *TypeDescriptor) (*TypeDescriptor, error) {
	desc := &TypeDescriptor{
		name:            def.Name,
		parent:          parent,
		resolvedProps:   make(map[string]PropSpec),
		resolvedSignals: make(map[string]struct{}),
	}

	if parent != nil {
		for name, spec := range parent.resolvedProps {
			desc.resolvedProps[name] = spec
		}
		desc.propOrder = slices.Clone(parent.propOrder)
		for name := range parent.resolvedSignals {
			desc.resolvedSignals[name] = struct{}{}
		}
	}

	seen := make(map[string]bool, len(def.Props))
	for _, spec := range def.Props {
		if spec.Name == "" {
			return nil, newInvalidSpecError(def.Name, "property name must not be empty")
		}
		if seen[spec.Name] {
			return nil, newInvalidSpecError(def.Name,
				fmt.Sprintf("property %q declared twice", spec.Name))
		}
		seen[spec.Name] = true

		if spec.Kind == value.KindNull {
			return nil, newInvalidSpecError(def.Name,
				fmt.Sprintf("property %q: null is not a declarable kind", spec.Name))
		}
		if spec.Default != nil && !spec.accepts(spec.Default) {
			return nil, newInvalidSpecError(def.Name,
				fmt.Sprintf("property %q: default kind %s disagrees with declared kind %s",
					spec.Name, spec.Default.Kind(), spec.Kind))
		}

		// Same-name descendant spec shadows the ancestor's; order keeps
		// the ancestor's position.
		if _, shadowing := desc.resolvedProps[spec.Name]; !shadowing {
			desc.propOrder = append(desc.propOrder, spec.Name)
		}
		desc.resolvedProps[spec.Name] = spec
		desc.resolvedSignals[ChangedSignal(spec.Name)] = struct{}{}
	}

	for _, sig := range def.Signals {
		if sig == "" {
			return nil, newInvalidSpecError(def.Name, "signal name must not be empty")
		}
		desc.resolvedSignals[sig] = struct{}{}
	}

	return desc, nil
}

// Lookup returns the descriptor for a registered type name.
func (r *Registry) Lookup(name string) (*TypeDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.types[name]
	if !ok {
		return nil, newUnknownTypeError(name)
	}
	return desc, nil
}

// TypeNames returns all registered type names, sorted.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Construct allocates a new instance of a registered type.
//
// The reference count starts at 1. Every key in initial is validated
// against the resolved specs (UNKNOWN_PROPERTY otherwise) and its value
// against the declared kind (TYPE_MISMATCH). Unset properties take their
// defaults. No change signals are emitted during construction; the
// construct event is journaled with the full initial property set.
func (r *Registry) Construct(typeName string, initial map[string]value.Value) (*Instance, error) {
	desc, err := r.Lookup(typeName)
	if err != nil {
		return nil, err
	}

	for name, v := range initial {
		spec, ok := desc.PropSpec(name)
		if !ok {
			return nil, newUnknownPropertyError(typeName, name)
		}
		if !spec.accepts(v) {
			got := "nil"
			if v != nil {
				got = v.Kind().String()
			}
			return nil, newTypeMismatchError(typeName, name, spec.Kind.String(), got)
		}
	}

	props := make(map[string]value.Value, len(desc.resolvedProps))
	for name, spec := range desc.resolvedProps {
		if v, ok := initial[name]; ok {
			props[name] = v
		} else {
			props[name] = spec.defaultValue()
		}
	}

	inst := &Instance{
		id:    r.idGen.Generate(),
		desc:  desc,
		reg:   r,
		refs:  1,
		props: props,
		subs:  make(map[string][]subscription),
	}

	snapshot := make(value.Object, len(props))
	for name, v := range props {
		snapshot[name] = v
	}
	if err := r.record(EventConstruct, inst, "", snapshot); err != nil {
		return nil, fmt.Errorf("journal construct: %w", err)
	}

	return inst, nil
}
