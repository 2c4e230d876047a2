package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vavavavavavavavava/pubsubtk/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Validate a state snapshot against a CUE schema",
		Long: `Validate a JSON state snapshot against a CUE schema definition.

Reports every violation found with the offending snapshot path, not
just the first.

Exit codes:
  0 - Snapshot is valid
  1 - Snapshot violates the schema
  2 - Command error (missing files, schema does not compile)

Examples:
  pubsubtk validate --schema state.cue snapshot.json
  pubsubtk validate --schema state.cue snapshot.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, schemaPath, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to CUE schema (required)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runValidate(opts *RootOptions, schemaPath, snapshotPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sch, err := schema.CompileFile(schemaPath)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to compile schema", err)
	}

	snapshot, err := os.ReadFile(snapshotPath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read snapshot", err)
	}

	formatter.VerboseLog("Validating %s against %s", snapshotPath, schemaPath)

	errs := sch.ValidateJSON(snapshot)
	if len(errs) > 0 {
		if opts.Format == "json" {
			if err := formatter.Success(ValidationResult{Valid: false, Errors: errs}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %d validation error(s)\n", len(errs))
			for _, e := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e.Error())
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("snapshot invalid: %d error(s)", len(errs)))
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Snapshot valid")
	return nil
}
