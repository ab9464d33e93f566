package condor

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
)

// DefaultSubmitExecutable is the DAG submission command.
const DefaultSubmitExecutable = "condor_submit_dag"

// ClusterID identifies a batch of jobs accepted by the scheduler.
type ClusterID int64

var clusterRe = regexp.MustCompile(`(\d+) job\(s\) submitted to cluster (\d+)`)

// Submitter hands DAG files to the scheduler.
type Submitter struct {
	executable string
	logger     *slog.Logger
	runner     CommandRunner
	lookPath   func(string) (string, error)
}

// NewSubmitter creates a Submitter that invokes executable, resolved on
// PATH at submit time. An empty executable means DefaultSubmitExecutable.
func NewSubmitter(executable string, logger *slog.Logger) *Submitter {
	return newSubmitterWithRunner(executable, logger, osCommandRunner{}, exec.LookPath)
}

// newSubmitterWithRunner is used by tests to inject a mock CommandRunner.
func newSubmitterWithRunner(executable string, logger *slog.Logger, runner CommandRunner, lookPath func(string) (string, error)) *Submitter {
	if executable == "" {
		executable = DefaultSubmitExecutable
	}
	return &Submitter{
		executable: executable,
		logger:     logger.With("component", "submitter"),
		runner:     runner,
		lookPath:   lookPath,
	}
}

// Submit runs "<executable> [extraArgs...] <dagPath>" and returns the
// cluster the DAGMan job was placed in. Nothing is retried.
func (s *Submitter) Submit(ctx context.Context, dagPath string, extraArgs ...string) (ClusterID, error) {
	exe, err := s.lookPath(s.executable)
	if err != nil {
		return 0, fmt.Errorf("locate %s: %w", s.executable, err)
	}

	args := make([]string, 0, len(extraArgs)+1)
	args = append(args, extraArgs...)
	args = append(args, dagPath)

	s.logger.Debug("submitting dag", "executable", exe, "args", args)
	stdout, stderr, exitCode, err := s.runner.Run(ctx, exe, args...)
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", exe, err)
	}
	if exitCode != 0 {
		return 0, fmt.Errorf("%s exited with status %d: %s", exe, exitCode, stderr)
	}

	id, err := ParseClusterID(stdout)
	if err != nil {
		return 0, err
	}
	s.logger.Info("dag submitted", "dag", dagPath, "cluster_id", id)
	return id, nil
}

// ParseClusterID extracts the cluster from "<N> job(s) submitted to cluster <ID>".
func ParseClusterID(output string) (ClusterID, error) {
	m := clusterRe.FindStringSubmatch(output)
	if m == nil {
		return 0, &ParseError{Message: "Failed to extract DAG cluster ID", Output: output}
	}
	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, &ParseError{Message: "Failed to extract DAG cluster ID: " + err.Error(), Output: output}
	}
	return ClusterID(id), nil
}
