package object

import "github.com/roach88/quark/internal/value"

// EventKind identifies a journal event.
type EventKind string

const (
	// EventConstruct records instance creation with its initial properties.
	EventConstruct EventKind = "construct"

	// EventSet records an actual property change. A Set whose value equals
	// the stored value records nothing.
	EventSet EventKind = "set"

	// EventSignal records a signal emission with its args.
	EventSignal EventKind = "signal"

	// EventRetain records a reference-count increment.
	EventRetain EventKind = "retain"

	// EventRelease records a reference-count decrement.
	EventRelease EventKind = "release"

	// EventDestroy records destruction when the count reaches zero.
	EventDestroy EventKind = "destroy"
)

// Event is a single journal record.
type Event struct {
	// Seq is the registry clock stamp; events are totally ordered by it.
	Seq int64

	// Kind is the event kind.
	Kind EventKind

	// InstanceID is the affected instance's id.
	InstanceID string

	// TypeName is the instance's type name.
	TypeName string

	// Name is the property or signal name, empty for lifecycle events.
	Name string

	// Value carries the event payload: initial properties for construct,
	// the new value for set, the args for signal, the resulting reference
	// count for retain/release. Nil for destroy.
	Value value.Value
}

// Journal receives runtime events. A nil Journal on the registry disables
// recording. Record failures propagate to the caller of the mutating
// operation that produced the event.
type Journal interface {
	Record(ev Event) error
}

// record stamps and writes an event if a journal is attached.
func (r *Registry) record(kind EventKind, inst *Instance, name string, v value.Value) error {
	if r.journal == nil {
		return nil
	}
	return r.journal.Record(Event{
		Seq:        r.clock.Next(),
		Kind:       kind,
		InstanceID: inst.id,
		TypeName:   inst.desc.name,
		Name:       name,
		Value:      v,
	})
}
