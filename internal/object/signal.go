package object

import (
	"slices"

	"github.com/roach88/quark/internal/value"
)

// ConnectionID identifies one subscriber entry on one instance.
// Ids are handed out monotonically per instance, so id order equals
// connection order.
type ConnectionID int64

// Handler is a signal subscriber callback. It receives the emitting
// instance and the emission args.
//
// The dispatcher does not isolate handlers: a returned error aborts the
// emission pass and propagates to the emitter (and through Set to the
// original caller).
type Handler func(obj *Instance, args []value.Value) error

// subscription links a handler to a signal on one instance.
type subscription struct {
	id     ConnectionID
	signal string
	fn     Handler
}

// Connect appends a subscriber to a signal's ordered list and returns its
// connection id. Duplicate handlers are allowed; each connection gets a
// distinct id. Fails with UNKNOWN_SIGNAL for names not declared on the
// instance's type, inherited and implicit changed signals included.
func (i *Instance) Connect(signal string, fn Handler) (ConnectionID, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return 0, newInvalidReleaseError(i.desc.name)
	}
	if !i.desc.HasSignal(signal) {
		return 0, newUnknownSignalError(i.desc.name, signal)
	}

	i.nextConn++
	id := i.nextConn
	i.subs[signal] = append(i.subs[signal], subscription{id: id, signal: signal, fn: fn})
	return id, nil
}

// Disconnect removes exactly one subscriber entry by connection id.
// Fails with UNKNOWN_CONNECTION if no entry has that id.
func (i *Instance) Disconnect(id ConnectionID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return newInvalidReleaseError(i.desc.name)
	}

	for signal, list := range i.subs {
		for idx, sub := range list {
			if sub.id == id {
				i.subs[signal] = append(list[:idx:idx], list[idx+1:]...)
				return nil
			}
		}
	}
	return newUnknownConnectionError(i.desc.name, id)
}

// Emit invokes every current subscriber for a signal in connection order,
// passing the instance and args.
//
// The subscriber list is snapshotted at emission start: a handler that
// connects or disconnects during the pass does not affect the in-flight
// emission. Handler errors are not caught - the first error stops the
// pass and propagates. Fails with UNKNOWN_SIGNAL for undeclared names.
func (i *Instance) Emit(signal string, args ...value.Value) error {
	i.mu.Lock()

	if i.destroyed {
		i.mu.Unlock()
		return newInvalidReleaseError(i.desc.name)
	}
	if !i.desc.HasSignal(signal) {
		i.mu.Unlock()
		return newUnknownSignalError(i.desc.name, signal)
	}

	snapshot := slices.Clone(i.subs[signal])

	if err := i.reg.record(EventSignal, i, signal, value.Array(slices.Clone(args))); err != nil {
		i.mu.Unlock()
		return err
	}
	i.mu.Unlock()

	for _, sub := range snapshot {
		if err := sub.fn(i, args); err != nil {
			return err
		}
	}
	return nil
}

// SubscriberCount returns the number of live subscribers on a signal.
// Fails with UNKNOWN_SIGNAL for undeclared names.
func (i *Instance) SubscriberCount(signal string) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return 0, newInvalidReleaseError(i.desc.name)
	}
	if !i.desc.HasSignal(signal) {
		return 0, newUnknownSignalError(i.desc.name, signal)
	}
	return len(i.subs[signal]), nil
}
