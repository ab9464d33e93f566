// Package condor drives an HTCondor-style batch scheduler: it submits DAGs,
// queries the job table, and locates the files DAGMan leaves behind.
package condor

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// osCommandRunner runs commands with os/exec. A non-zero exit status is
// reported through exitCode, not err.
type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	switch e := runErr.(type) {
	case nil:
		return stdoutBuf.String(), stderrBuf.String(), 0, nil
	case *exec.ExitError:
		return stdoutBuf.String(), stderrBuf.String(), e.ExitCode(), nil
	default:
		return stdoutBuf.String(), stderrBuf.String(), -1, runErr
	}
}

// DefaultRunner returns the os/exec backed CommandRunner.
func DefaultRunner() CommandRunner {
	return osCommandRunner{}
}
