package cli

import (
	"fmt"

	"github.com/me/omicron/internal/condor"
	"github.com/spf13/cobra"
)

func newRescueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescue <dag>",
		Short: "Print the newest rescue DAG for a DAG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := condor.FindRescueDAG(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
