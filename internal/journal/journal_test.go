package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/testutil"
	"github.com/roach88/quark/internal/value"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenIsIdempotentOnDisk(t *testing.T) {
	path := t.TempDir() + "/journal.db"

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestRecordAndReadAll(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	events := []object.Event{
		{Seq: 1, Kind: object.EventConstruct, InstanceID: "obj-1", TypeName: "counter",
			Value: value.Object{"value": value.Int(0)}},
		{Seq: 2, Kind: object.EventSet, InstanceID: "obj-1", TypeName: "counter",
			Name: "value", Value: value.Int(5)},
		{Seq: 3, Kind: object.EventSignal, InstanceID: "obj-1", TypeName: "counter",
			Name: "value-changed", Value: value.Array{value.Int(5)}},
		{Seq: 4, Kind: object.EventDestroy, InstanceID: "obj-1", TypeName: "counter"},
	}
	for _, ev := range events {
		require.NoError(t, j.Record(ev))
	}

	got, err := j.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, object.EventConstruct, got[0].Kind)
	assert.True(t, value.Equal(value.Object{"value": value.Int(0)}, got[0].Value))

	assert.Equal(t, "value", got[1].Name)
	assert.Equal(t, value.Int(5), got[1].Value)

	assert.Equal(t, "value-changed", got[2].Name)
	assert.True(t, value.Equal(value.Array{value.Int(5)}, got[2].Value))

	// Destroy has no payload
	assert.Nil(t, got[3].Value)
}

func TestReadTraceFiltersByInstance(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(object.Event{Seq: 1, Kind: object.EventConstruct,
		InstanceID: "obj-1", TypeName: "counter", Value: value.Object{}}))
	require.NoError(t, j.Record(object.Event{Seq: 2, Kind: object.EventConstruct,
		InstanceID: "obj-2", TypeName: "counter", Value: value.Object{}}))
	require.NoError(t, j.Record(object.Event{Seq: 3, Kind: object.EventSet,
		InstanceID: "obj-1", TypeName: "counter", Name: "value", Value: value.Int(1)}))

	trace, err := j.ReadTrace(ctx, "obj-1")
	require.NoError(t, err)
	require.Len(t, trace, 2)
	assert.Equal(t, int64(1), trace[0].Seq)
	assert.Equal(t, int64(3), trace[1].Seq)

	empty, err := j.ReadTrace(ctx, "obj-9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRuntimeWritesThroughJournal(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	reg := object.NewRegistry(
		object.WithJournal(j),
		object.WithIDGenerator(testutil.NewSequentialIDGenerator("obj")),
	)
	_, err := reg.Register(object.TypeDef{
		Name: "counter",
		Props: []object.PropSpec{
			{Name: "value", Kind: value.KindInt},
			{Name: "name", Kind: value.KindString, Nullable: true},
		},
	})
	require.NoError(t, err)

	obj, err := reg.Construct("counter", map[string]value.Value{"value": value.Int(10)})
	require.NoError(t, err)

	require.NoError(t, obj.Set("value", value.Int(10))) // no-op, no record
	require.NoError(t, obj.Set("value", value.Int(20)))
	obj.Retain()
	require.NoError(t, obj.Release())
	require.NoError(t, obj.Release())

	trace, err := j.ReadTrace(ctx, "obj-1")
	require.NoError(t, err)

	kinds := make([]object.EventKind, len(trace))
	for i, ev := range trace {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []object.EventKind{
		object.EventConstruct,
		object.EventSet,
		object.EventSignal,
		object.EventRetain,
		object.EventRelease,
		object.EventRelease,
		object.EventDestroy,
	}, kinds)

	// The equal-value Set left no trace; the actual change carries 20
	assert.Equal(t, value.Int(20), trace[1].Value)
}
