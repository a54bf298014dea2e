package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samaralitalim/answersheet/internal/results"
	"github.com/spf13/cobra"
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect saved grading results",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "show <file>",
		Short:   "Print a results file written by submit --output or the export endpoint",
		Example: `  answersheet results show result.parquet`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := results.Read(args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SUBMITTED\tCATALOG\tMODE\tSTATE\tRESULT\tATTEMPTS")
			for _, r := range records {
				outcome := r.Error
				switch {
				case r.Graded:
					outcome = r.Score
				case r.State == "done":
					outcome = "ungraded"
				}
				submitted := r.SubmittedAt
				if t, err := time.Parse(time.RFC3339, r.SubmittedAt); err == nil {
					submitted = humanize.Time(t)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\n", submitted, r.CatalogID, r.Mode, r.State, outcome, r.Attempts)
			}
			return tw.Flush()
		},
	})

	return cmd
}
