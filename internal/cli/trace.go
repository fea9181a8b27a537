package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quark/internal/journal"
	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/value"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Object   string // optional - filter to one instance
}

// TraceLine is one journal event in trace output.
type TraceLine struct {
	Seq     int64           `json:"seq"`
	Kind    string          `json:"kind"`
	Object  string          `json:"object"`
	Type    string          `json:"type"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Events []TraceLine `json:"events"`
	Stats  TraceStats  `json:"stats"`
}

// TraceStats summarizes a trace.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Constructs  int `json:"constructs"`
	Sets        int `json:"sets"`
	Signals     int `json:"signals"`
	Destroys    int `json:"destroys"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Dump the journal from a run",
		Long: `Dump the event journal written by a previous run.

Each line is one event in clock order: construction with initial
properties, property sets, signal emissions, and reference-count
changes down to destruction.

Examples:
  quark trace --db ./quark.db
  quark trace --db ./quark.db --object obj-1
  quark trace --db ./quark.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Object, "object", "", "filter to one instance id")

	return cmd
}

func runTraceDump(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer j.Close()

	var events []object.Event
	if opts.Object != "" {
		events, err = j.ReadTrace(ctx, opts.Object)
	} else {
		events, err = j.ReadAll(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "read journal", err)
	}

	result := TraceResult{Events: make([]TraceLine, 0, len(events))}
	for _, ev := range events {
		line := TraceLine{
			Seq:    ev.Seq,
			Kind:   string(ev.Kind),
			Object: ev.InstanceID,
			Type:   ev.TypeName,
			Name:   ev.Name,
		}
		if ev.Value != nil {
			payload, err := value.MarshalCanonical(ev.Value)
			if err != nil {
				return WrapExitError(ExitCommandError, "marshal payload", err)
			}
			line.Payload = payload
		}
		result.Events = append(result.Events, line)

		switch ev.Kind {
		case object.EventConstruct:
			result.Stats.Constructs++
		case object.EventSet:
			result.Stats.Sets++
		case object.EventSignal:
			result.Stats.Signals++
		case object.EventDestroy:
			result.Stats.Destroys++
		}
	}
	result.Stats.TotalEvents = len(result.Events)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events.")
		return nil
	}
	for _, line := range result.Events {
		fmt.Fprintf(cmd.OutOrStdout(), "%6d  %-9s  %-8s  %s", line.Seq, line.Kind, line.Object, line.Type)
		if line.Name != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s", line.Name)
		}
		if line.Payload != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s", line.Payload)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d event(s): %d construct, %d set, %d signal, %d destroy\n",
		result.Stats.TotalEvents, result.Stats.Constructs, result.Stats.Sets,
		result.Stats.Signals, result.Stats.Destroys)
	return nil
}
