package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/quadify/quadify-setup/pkg/stores"
)

func newRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recorded provisioning runs",
		Long: `Show the history of provisioning runs on this host.

Without arguments the most recent runs are listed. With a run ID the
step-by-step events of that run are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			store, err := stores.NewSQLiteStore(p.StateDB)
			if err != nil {
				return err
			}
			if err := store.Init(cmd.Context()); err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer store.Close()
			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 1 {
				return printStepEvents(cmd, store, args[0])
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	return cmd
}

func printRuns(cmd *cobra.Command, store *stores.SQLiteStore, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tFAILED STEP\tEXPANDER")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.RFC3339),
			r.Status,
			strOrDash(r.FailedStep),
			strOrDash(r.DetectedAddr),
		)
	}
	return w.Flush()
}

func printStepEvents(cmd *cobra.Command, store *stores.SQLiteStore, runID string) error {
	events, err := store.ListStepEvents(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("No step events for run %s.\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTEP\tOUTCOME\tDURATION\tDETAIL")
	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			ev.Ordinal,
			ev.Name,
			ev.Outcome,
			(time.Duration(ev.DurationMS) * time.Millisecond).String(),
			strOrDash(ev.Detail),
		)
	}
	return w.Flush()
}

func strOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
