package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coloop/internal/job"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List demo scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, sc := range job.Scenarios() {
				fmt.Fprintf(w, "%s\t%s\n", sc.Name, sc.Summary)
			}
			return w.Flush()
		},
	}
}
