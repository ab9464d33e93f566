package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var image, arguments string

	cmd := &cobra.Command{
		Use:   "submit <dag> <start> <end> [-- extra condor_submit_dag args...]",
		Short: "Patch submit files, submit a DAG and record the run",
		Long: "Patch the configured submit descriptions with the argument and container " +
			"overrides, submit the DAG to HTCondor, and record the output segments the run " +
			"covers in the ledger. Refuses to submit a DAG that is already running.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dag := args[0]
			span, err := parseSpan(args[1:3])
			if err != nil {
				return err
			}
			cfg.SubmitArgs = append(cfg.SubmitArgs, args[3:]...)
			if image != "" {
				cfg.Image = image
			}
			if arguments != "" {
				cfg.Arguments = arguments
			}

			p, closeFn, err := newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			logger.Info("submitting dag", "dag", dag, "start", span.Start, "end", span.End)
			run, err := p.Submit(cmd.Context(), dag, span)
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s to cluster %d (run %s, %s output files)\n",
				dag, run.ClusterID, run.ID, humanize.Comma(int64(len(run.Segments))))
			return nil
		},
	}

	cmd.Flags().StringVar(&image, "singularity-image", "", "Run jobs in this container image (overrides config)")
	cmd.Flags().StringVar(&arguments, "arguments", "", "Prepend to each job's arguments (overrides config)")
	return cmd
}

func newResubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resubmit <dag>",
		Short: "Resubmit a failed DAG from its latest rescue file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			run, err := p.Resubmit(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resubmit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resubmitted %s from %s to cluster %d (run %s)\n",
				run.DAGPath, run.RescuePath, run.ClusterID, run.ID)
			return nil
		},
	}
}
