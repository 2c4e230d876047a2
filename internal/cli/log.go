package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vavavavavavavavava/pubsubtk/journal"
	"github.com/vavavavavavavavava/pubsubtk/store"
)

// LogEntry is one journal row in the log listing.
type LogEntry struct {
	Seq   int64           `json:"seq"`
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Key   string          `json:"key,omitempty"`
	Index int             `json:"index,omitempty"`
	Value json.RawMessage `json:"value"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List journaled mutations in order",
		Long: `List every mutation in a journal database in seq order.

Exit codes:
  0 - Journal read successfully
  2 - Command error (journal not found)

Examples:
  pubsubtk log --db ./journal.db
  pubsubtk log --db ./journal.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLog(opts *RootOptions, database string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "journal database not found", err)
	}

	j, err := journal.Open(database)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	records, err := j.Records(context.Background())
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if opts.Format == "json" {
		entries := make([]LogEntry, 0, len(records))
		for _, r := range records {
			entries = append(entries, LogEntry{
				Seq:   r.Seq,
				Op:    string(r.Op),
				Path:  r.Path,
				Key:   r.Key,
				Index: r.Index,
				Value: r.Value,
			})
		}
		return formatter.Success(entries)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Journal is empty.")
		return nil
	}
	for _, r := range records {
		target := r.Path
		switch r.Op {
		case store.OpListAdd:
			target = fmt.Sprintf("%s[%d]", r.Path, r.Index)
		case store.OpDictAdd:
			target = fmt.Sprintf("%s[%s]", r.Path, r.Key)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-9s %-30s %s\n", r.Seq, r.Op, target, string(r.Value))
	}
	return nil
}
