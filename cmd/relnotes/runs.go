package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper-ld/relnotes/internal/cli"
)

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded release-notes runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(os.Stdout, cli.SubtleStyle.Render("Run history is disabled (database.path is empty)"))
				return nil
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, cli.SubtleStyle.Render("No runs recorded yet"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tINPUT\tTOTAL\tPROCESSED\tUNPROCESSED")
			for _, record := range records {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
					record.ID,
					record.StartedAt.Format(time.DateTime),
					record.InputPath,
					record.Total,
					record.Processed,
					record.Unprocessed)
			}
			return w.Flush()
		},
	}
}
