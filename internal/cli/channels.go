package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels [flag...]",
		Short: "Print the state channel each data-quality flag is derived from",
		Long: "With no arguments, print the whole flag-to-channel table including config " +
			"overrides. Otherwise resolve each flag; unknown flags resolve to themselves.",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := cfg.Channels()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				args = table.Names()
			}
			for _, name := range args {
				fmt.Fprintf(out, "%s %s\n", name, table.Resolve(name))
			}
			return nil
		},
	}
}
