package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/me/omicron/pkg/model"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var state, dag string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			f := model.RunFilter{State: model.RunState(state), DAGPath: dag, Limit: limit}
			runs, total, err := st.ListRuns(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found.")
				return nil
			}
			const row = "%-40s  %12s  %-10s  %-30s  %s\n"
			fmt.Fprintf(out, row, "ID", "CLUSTER", "STATE", "DAG", "CREATED")
			fmt.Fprintf(out, row, "--", "-------", "-----", "---", "-------")
			for _, r := range runs {
				fmt.Fprintf(out, row, r.ID, humanize.Comma(r.ClusterID), r.State, r.DAGPath, humanize.Time(r.CreatedAt))
			}
			if total > len(runs) {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(runs), total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Only runs in this state")
	cmd.Flags().StringVar(&dag, "dag", "", "Only runs of this DAG")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	return cmd
}
