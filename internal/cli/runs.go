package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/stridefix/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in a ledger",
		Long: `List every generate run recorded in a ledger, oldest first.

Examples:
  stridefix runs --db ./stridefix.db
  stridefix runs --db ./stridefix.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(ctx context.Context, opts *RunsOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout())
	return formatter.Result(runs, func(w io.Writer) { printRuns(w, runs) })
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tSTATUS\tINPUT\tOUTPUT\tFAMILIES\tWRITTEN\tDECLINED\tFAILED")
	for _, r := range runs {
		families := strings.Join(r.Families, ",")
		if families == "" {
			families = "all"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.Seq, r.ID, r.Status, r.InputDir, r.OutputDir, families,
			r.Written, r.Declined, r.LoadErrors+r.WriteErrors)
	}
	_ = tw.Flush()
}
