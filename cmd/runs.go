package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted reconciliation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs yet")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-20s  %8s  %10s\n", "ID", "CREATED", "ROWS", "MISMATCHED")
		for _, r := range runs {
			fmt.Fprintf(out, "%-36s  %-20s  %8d  %10d\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.TotalRows, r.MismatchRows)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
