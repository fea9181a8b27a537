package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/typedef"
)

// ValidationResult holds the outcome of validating a types directory.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	FileCount int      `json:"file_count"`
	Types     []string `json:"types,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <types-dir>",
		Short: "Validate CUE type definitions",
		Long: `Validate CUE type definitions without running anything.

Compiles every definition and registers them into a scratch registry, so
duplicate names, unknown parents, inheritance cycles, and bad property
specs are all caught.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, typesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, err := LoadTypes(typesDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			if ferr := formatter.Error(loadErr.Code, loadErr.Message, nil); ferr != nil {
				return ferr
			}
			return NewExitError(ExitFailure, loadErr.Error())
		}
		return WrapExitError(ExitCommandError, "load types", err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, typesDir)

	// Registration catches what compilation alone cannot: duplicate type
	// names and parents that no definition provides.
	reg := object.NewRegistry()
	if err := typedef.RegisterAll(reg, loadResult.Defs); err != nil {
		if ferr := formatter.Error(ErrCodeRegister, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, err.Error())
	}

	result := ValidationResult{
		Valid:     true,
		FileCount: loadResult.FileCount,
		Types:     reg.TypeNames(),
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %d type(s) from %d file(s)\n", len(result.Types), result.FileCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Types: %s\n", strings.Join(result.Types, ", "))
	return nil
}
