package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quark/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	TypesDir string
	Database string
	Trace    bool
}

// ScenarioReport is the per-scenario entry in run output.
type ScenarioReport struct {
	Scenario string   `json:"scenario"`
	Passed   bool     `json:"passed"`
	Events   int      `json:"events"`
	Failures []string `json:"failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run YAML scenarios against a fresh runtime",
		Long: `Run one or more YAML scenarios, each against a fresh registry.

Every run constructs the declared objects, executes the steps in order,
and checks the assertions. Failures are reported per scenario; any
failing scenario makes the command exit non-zero.

Examples:
  quark run demo/counter.yaml
  quark run --types-dir ./types demo/*.yaml
  quark run --db ./quark.db demo/counter.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TypesDir, "types-dir", "", "directory of CUE type definitions shared by scenarios without inline types")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the journal to this SQLite file (single scenario only)")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print the full journal trace after each run")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	if opts.Database != "" && len(paths) > 1 {
		return NewExitError(ExitCommandError, "--db accepts a single scenario")
	}

	var sharedTypes string
	if opts.TypesDir != "" {
		src, err := readTypesDir(opts.TypesDir)
		if err != nil {
			return WrapExitError(ExitCommandError, "read types dir", err)
		}
		sharedTypes = src
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var reports []ScenarioReport
	failed := 0
	for _, path := range paths {
		sc, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "load scenario", err)
		}
		if sc.Types == "" {
			sc.Types = sharedTypes
		}

		var runOpts []harness.Option
		if opts.Database != "" {
			runOpts = append(runOpts, harness.WithJournalPath(opts.Database))
		}

		logger.Debug("running scenario", "name", sc.Name, "path", path)
		res, err := harness.Run(ctx, sc, runOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("run scenario %s", sc.Name), err)
		}
		logger.Info("scenario finished", "name", sc.Name, "passed", res.Passed, "events", len(res.Trace))

		reports = append(reports, ScenarioReport{
			Scenario: res.Scenario,
			Passed:   res.Passed,
			Events:   len(res.Trace),
			Failures: res.Failures,
		})
		if !res.Passed {
			failed++
		}
		if opts.Trace {
			snapshot, err := harness.Snapshot(res)
			if err != nil {
				return WrapExitError(ExitCommandError, "snapshot trace", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(snapshot))
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			status := "PASS"
			if !rep.Passed {
				status = "FAIL"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%d events)\n", status, rep.Scenario, rep.Events)
			for _, failure := range rep.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", failure)
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", failed, len(paths)))
	}
	return nil
}

// readTypesDir concatenates every .cue file under dir into one source
// blob. Package clauses are stripped so the blob compiles as a single
// unit; CUE unifies the repeated top-level types struct across files.
func readTypesDir(dir string) (string, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no CUE files found in %s", dir)
	}
	var b strings.Builder
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "package ") {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
