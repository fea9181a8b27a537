package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/value"
)

// Snapshot renders a finished run as canonical JSON, suitable for golden
// comparison. Sequential instance ids and the registry clock make the
// bytes stable across runs.
func Snapshot(res *Result) ([]byte, error) {
	trace := make(value.Array, len(res.Trace))
	for i, ev := range res.Trace {
		trace[i] = eventValue(ev)
	}
	return value.MarshalCanonical(value.Object{
		"scenario_name": value.String(res.Scenario),
		"trace":         trace,
	})
}

func eventValue(ev object.Event) value.Value {
	obj := value.Object{
		"seq":    value.Int(ev.Seq),
		"kind":   value.String(string(ev.Kind)),
		"object": value.String(ev.InstanceID),
		"type":   value.String(ev.TypeName),
	}
	if ev.Name != "" {
		obj["name"] = value.String(ev.Name)
	}
	if ev.Value != nil {
		obj["payload"] = ev.Value
	}
	return obj
}

// RunGolden executes the scenario, requires it to pass, and compares its
// snapshot against testdata/golden/<name>.golden. Refresh fixtures with
// `go test -update`.
func RunGolden(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	res, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run scenario %s: %v", sc.Name, err)
	}
	if !res.Passed {
		t.Fatalf("scenario %s failed: %v", sc.Name, res.Failures)
	}

	snapshot, err := Snapshot(res)
	if err != nil {
		t.Fatalf("snapshot scenario %s: %v", sc.Name, err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, snapshot)
	return res
}
