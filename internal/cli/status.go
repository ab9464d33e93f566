package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/me/omicron/internal/condor"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <cluster_id>",
		Short: "Print the JobStatus of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("cluster id: %w", err)
			}
			status, err := newJobQuery().JobStatus(cmd.Context(), condor.ClusterID(id))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cluster %d: %s (%d)\n", id, status, int(status))
			return nil
		},
	}
}

func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll <run_id>",
		Short: "Check a recorded run once and update the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			run, err := p.Poll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (cluster %d): %s\n", run.ID, run.ClusterID, run.State)
			return nil
		},
	}
}

// parseFilters turns Key=Value arguments into job filters. Integer values
// are compared numerically.
func parseFilters(args []string) (condor.Filters, error) {
	filters := condor.Filters{}
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("filter %q: want Key=Value", arg)
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters[k] = n
		} else {
			filters[k] = strings.Trim(v, `"`)
		}
	}
	return filters, nil
}

func newJobsCmd() *cobra.Command {
	var unique bool

	cmd := &cobra.Command{
		Use:   "jobs [Key=Value...]",
		Short: "List scheduler jobs matching attribute filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(args)
			if err != nil {
				return err
			}
			q := newJobQuery()

			var jobs []condor.JobRecord
			if unique {
				job, err := q.FindJob(cmd.Context(), filters)
				if err != nil {
					return err
				}
				jobs = []condor.JobRecord{job}
			} else if jobs, err = q.FindJobs(cmd.Context(), filters); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, job := range jobs {
				if err := enc.Encode(job); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unique, "one", false, "Require exactly one matching job")
	return cmd
}

func newRunningCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "running <dag>",
		Short: "Report whether a DAG currently holds its lock file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			running := newJobQuery().DAGIsRunning(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), running)
			return nil
		},
	}
}
