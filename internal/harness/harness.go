package harness

import (
	"context"
	"fmt"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/quark/internal/journal"
	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/testutil"
	"github.com/roach88/quark/internal/typedef"
	"github.com/roach88/quark/internal/value"
)

// Result is the outcome of one scenario run. Trace is the full journal in
// seq order; Failures holds every step or assertion that did not hold.
type Result struct {
	Scenario string
	Passed   bool
	Failures []string
	Trace    []object.Event
}

// connection is a scenario-local handle created by a connect step.
type connection struct {
	inst  *object.Instance
	id    object.ConnectionID
	fires int
}

// runner holds the live state of one scenario execution.
type runner struct {
	reg     *object.Registry
	objects map[string]*object.Instance
	conns   map[string]*connection
}

type config struct {
	journalPath string
}

// Option adjusts how a scenario run is set up.
type Option func(*config)

// WithJournalPath persists the run's journal to a SQLite file instead of
// the default in-memory database, so `quark trace` can inspect it later.
func WithJournalPath(path string) Option {
	return func(c *config) { c.journalPath = path }
}

// Run executes a scenario against a fresh registry backed by an in-memory
// journal. Instance ids are sequential ("obj-1", "obj-2", ...) so traces
// are reproducible across runs.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Result, error) {
	cfg := config{journalPath: ":memory:"}
	for _, opt := range opts {
		opt(&cfg)
	}

	j, err := journal.Open(cfg.journalPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	reg := object.NewRegistry(
		object.WithJournal(j),
		object.WithIDGenerator(testutil.NewSequentialIDGenerator("obj")),
	)
	if sc.Types != "" {
		root := cuecontext.New().CompileString(sc.Types)
		defs, err := typedef.Compile(root)
		if err != nil {
			return nil, fmt.Errorf("scenario types: %w", err)
		}
		if err := typedef.RegisterAll(reg, defs); err != nil {
			return nil, fmt.Errorf("scenario types: %w", err)
		}
	}

	r := &runner{
		reg:     reg,
		objects: make(map[string]*object.Instance),
		conns:   make(map[string]*connection),
	}
	res := &Result{Scenario: sc.Name}

	for _, decl := range sc.Objects {
		if err := r.construct(decl.Var, decl.Type, decl.With); err != nil {
			return nil, fmt.Errorf("object %s: %w", decl.Var, err)
		}
	}
	for idx, step := range sc.Steps {
		if fail := r.step(step); fail != "" {
			res.Failures = append(res.Failures, fmt.Sprintf("step %d (%s): %s", idx, step.Op, fail))
		}
	}

	res.Trace, err = j.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	for idx, a := range sc.Assertions {
		if fail := r.assert(a, res.Trace); fail != "" {
			res.Failures = append(res.Failures, fmt.Sprintf("assertion %d (%s): %s", idx, a.Kind, fail))
		}
	}
	res.Passed = len(res.Failures) == 0
	return res, nil
}

func (r *runner) construct(varName, typeName string, with map[string]any) error {
	initial, err := convertWith(with)
	if err != nil {
		return err
	}
	inst, err := r.reg.Construct(typeName, initial)
	if err != nil {
		return err
	}
	r.objects[varName] = inst
	return nil
}

// step runs one operation and returns a failure description, or "" on
// success. An error whose code matches ExpectError is a success.
func (r *runner) step(step Step) string {
	err := r.execute(step)
	if step.ExpectError != "" {
		if err == nil {
			return fmt.Sprintf("expected error %s, got none", step.ExpectError)
		}
		if code := object.CodeOf(err); string(code) != step.ExpectError {
			return fmt.Sprintf("expected error %s, got %v", step.ExpectError, err)
		}
		return ""
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func (r *runner) execute(step Step) error {
	switch step.Op {
	case "construct":
		return r.construct(step.Var, step.Type, step.With)

	case "set":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		v, err := value.FromGo(step.Value)
		if err != nil {
			return err
		}
		return inst.Set(step.Property, v)

	case "get":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		_, err = inst.Get(step.Property)
		return err

	case "increment":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		return inst.Increment(step.Property)

	case "decrement":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		return inst.Decrement(step.Property)

	case "connect":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		if step.As == "" {
			return fmt.Errorf("connect needs an `as` handle")
		}
		conn := &connection{inst: inst}
		id, err := inst.Connect(step.Signal, func(_ *object.Instance, _ []value.Value) error {
			conn.fires++
			return nil
		})
		if err != nil {
			return err
		}
		conn.id = id
		r.conns[step.As] = conn
		return nil

	case "disconnect":
		conn, ok := r.conns[step.Connection]
		if !ok {
			return fmt.Errorf("unknown connection handle %q", step.Connection)
		}
		return conn.inst.Disconnect(conn.id)

	case "emit":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		args := make([]value.Value, 0, len(step.Args))
		for _, raw := range step.Args {
			v, err := value.FromGo(raw)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		return inst.Emit(step.Signal, args...)

	case "retain":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		inst.Retain()
		return nil

	case "release":
		inst, err := r.instance(step.Object)
		if err != nil {
			return err
		}
		return inst.Release()

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func (r *runner) instance(varName string) (*object.Instance, error) {
	inst, ok := r.objects[varName]
	if !ok {
		return nil, fmt.Errorf("unknown object var %q", varName)
	}
	return inst, nil
}

func convertWith(with map[string]any) (map[string]value.Value, error) {
	if len(with) == 0 {
		return nil, nil
	}
	initial := make(map[string]value.Value, len(with))
	for name, raw := range with {
		v, err := value.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		initial[name] = v
	}
	return initial, nil
}
