package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// GetResult holds the value found at a snapshot path.
type GetResult struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <snapshot.json> <path>",
		Short: "Read the value at a dotted path in a snapshot",
		Long: `Read the value at a dotted path in a JSON state snapshot.

Paths use the same dotted form the store uses: struct fields by JSON
name, list elements by index, dict entries by key.

Exit codes:
  0 - Path found
  1 - Path not present in the snapshot
  2 - Command error (missing file)

Examples:
  pubsubtk get snapshot.json user.profile.name
  pubsubtk get snapshot.json todos.0 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, snapshotPath, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	snapshot, err := os.ReadFile(snapshotPath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read snapshot", err)
	}

	result := gjson.GetBytes(snapshot, path)
	if !result.Exists() {
		msg := fmt.Sprintf("path %q not found in snapshot", path)
		_ = formatter.Error(ErrCodeInvalidPath, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	if opts.Format == "json" {
		return formatter.Success(GetResult{Path: path, Value: json.RawMessage(result.Raw)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Raw)
	return nil
}
