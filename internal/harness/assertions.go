package harness

import (
	"fmt"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/value"
)

// assert evaluates one assertion against the finished run and returns a
// failure description, or "" if it holds.
func (r *runner) assert(a Assertion, trace []object.Event) string {
	switch a.Kind {
	case "property":
		inst, err := r.instance(a.Object)
		if err != nil {
			return err.Error()
		}
		got, err := inst.Get(a.Property)
		if err != nil {
			return err.Error()
		}
		want, err := value.FromGo(a.Equals)
		if err != nil {
			return err.Error()
		}
		if !value.Equal(got, want) {
			return fmt.Sprintf("%s.%s = %v, want %v", a.Object, a.Property, got, want)
		}
		return ""

	case "refcount":
		inst, err := r.instance(a.Object)
		if err != nil {
			return err.Error()
		}
		if got := inst.RefCount(); got != a.Count {
			return fmt.Sprintf("%s refcount = %d, want %d", a.Object, got, a.Count)
		}
		return ""

	case "signal_count":
		conn, ok := r.conns[a.As]
		if !ok {
			return fmt.Sprintf("unknown connection handle %q", a.As)
		}
		if conn.fires != a.Count {
			return fmt.Sprintf("connection %s fired %d times, want %d", a.As, conn.fires, a.Count)
		}
		return ""

	case "trace_order":
		if len(trace) != len(a.Kinds) {
			return fmt.Sprintf("trace has %d events, want %d (%v)", len(trace), len(a.Kinds), traceKinds(trace))
		}
		for i, ev := range trace {
			if string(ev.Kind) != a.Kinds[i] {
				return fmt.Sprintf("trace[%d] = %s, want %s", i, ev.Kind, a.Kinds[i])
			}
		}
		return ""

	case "string":
		inst, err := r.instance(a.Object)
		if err != nil {
			return err.Error()
		}
		want, ok := a.Equals.(string)
		if !ok {
			return fmt.Sprintf("string assertion needs a string equals, got %T", a.Equals)
		}
		if got := inst.String(); got != want {
			return fmt.Sprintf("%s.String() = %q, want %q", a.Object, got, want)
		}
		return ""

	default:
		return fmt.Sprintf("unknown assertion kind %q", a.Kind)
	}
}

func traceKinds(trace []object.Event) []string {
	kinds := make([]string, len(trace))
	for i, ev := range trace {
		kinds[i] = string(ev.Kind)
	}
	return kinds
}
