package condor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockRunner records calls and returns canned responses.
type mockRunner struct {
	calls   []mockCall
	results []mockResult
	callIdx int
}

type mockCall struct {
	name string
	args []string
}

type mockResult struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) (string, string, int, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.callIdx >= len(m.results) {
		return "", "", -1, fmt.Errorf("unexpected call %d", m.callIdx)
	}
	r := m.results[m.callIdx]
	m.callIdx++
	return r.stdout, r.stderr, r.exitCode, r.err
}

// staticSchedd ignores the constraint and returns every job it holds,
// so JobQuery's own filtering is what the tests observe.
type staticSchedd struct {
	jobs        []JobRecord
	constraints []string
	err         error
}

func (s *staticSchedd) Query(_ context.Context, constraint string) ([]JobRecord, error) {
	s.constraints = append(s.constraints, constraint)
	if s.err != nil {
		return nil, s.err
	}
	return s.jobs, nil
}

func fakeLookPath(path string) func(string) (string, error) {
	return func(string) (string, error) { return path, nil }
}
