package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runScenarioToDB runs the shared-types scenario with a persistent
// journal and returns the database path.
func runScenarioToDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "quark.db")

	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--db", dbPath,
		"--types-dir", filepath.Join("testdata", "types"),
		filepath.Join("testdata", "scenarios", "counter.yaml"),
	})
	require.NoError(t, cmd.Execute())
	return dbPath
}

func TestTraceDumpsPersistedJournal(t *testing.T) {
	dbPath := runScenarioToDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "construct")
	assert.Contains(t, output, "obj-1")
	assert.Contains(t, output, "limited")
	assert.Contains(t, output, "value-changed")
	assert.Contains(t, output, "1 construct")
}

func TestTraceJSONOutput(t *testing.T) {
	dbPath := runScenarioToDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result TraceResult
	require.NoError(t, json.Unmarshal(payload, &result))
	require.NotEmpty(t, result.Events)
	assert.Equal(t, "construct", result.Events[0].Kind)
	assert.Equal(t, int64(1), result.Events[0].Seq)
	assert.Equal(t, 1, result.Stats.Constructs)
	assert.Equal(t, result.Stats.TotalEvents, len(result.Events))
}

func TestTraceObjectFilter(t *testing.T) {
	dbPath := runScenarioToDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--object", "no-such-object"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No events.")
}

func TestTraceEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No events.")

	// Open created the file with the schema applied.
	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}
