package condor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// DefaultQueryExecutable lists jobs in the scheduler queue.
const DefaultQueryExecutable = "condor_q"

// JobRecord maps job attribute names to values as reported by the scheduler.
type JobRecord map[string]any

// Filters are attribute equality constraints; a job matches when every
// attribute equals the given value.
type Filters map[string]any

// Schedd is the scheduler's job table.
type Schedd interface {
	// Query returns jobs matching constraint, a ClassAd expression.
	// An empty constraint selects every job.
	Query(ctx context.Context, constraint string) ([]JobRecord, error)
}

// CondorSchedd queries the local schedd through the condor_q command.
type CondorSchedd struct {
	executable string
	logger     *slog.Logger
	runner     CommandRunner
}

// NewCondorSchedd creates a CondorSchedd. An empty executable means
// DefaultQueryExecutable.
func NewCondorSchedd(executable string, logger *slog.Logger) *CondorSchedd {
	return newCondorScheddWithRunner(executable, logger, osCommandRunner{})
}

func newCondorScheddWithRunner(executable string, logger *slog.Logger, runner CommandRunner) *CondorSchedd {
	if executable == "" {
		executable = DefaultQueryExecutable
	}
	return &CondorSchedd{
		executable: executable,
		logger:     logger.With("component", "schedd"),
		runner:     runner,
	}
}

// Query implements Schedd.
func (s *CondorSchedd) Query(ctx context.Context, constraint string) ([]JobRecord, error) {
	args := []string{"-json"}
	if constraint != "" {
		args = append(args, "-constraint", constraint)
	}
	s.logger.Debug("querying schedd", "args", args)

	stdout, stderr, exitCode, err := s.runner.Run(ctx, s.executable, args...)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", s.executable, err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("%s exited with status %d: %s", s.executable, exitCode, stderr)
	}
	if strings.TrimSpace(stdout) == "" {
		return nil, nil
	}

	var jobs []JobRecord
	if err := json.Unmarshal([]byte(stdout), &jobs); err != nil {
		return nil, &ParseError{Message: "Failed to decode job table: " + err.Error()}
	}
	return jobs, nil
}

// Constraint renders filters as a ClassAd expression, clauses in attribute
// name order.
func Constraint(filters Filters) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		var lit string
		switch v := filters[k].(type) {
		case string:
			lit = strconv.Quote(v)
		case bool:
			lit = strconv.FormatBool(v)
		default:
			if f, ok := toFloat(v); ok {
				lit = strconv.FormatFloat(f, 'f', -1, 64)
			} else {
				lit = fmt.Sprint(v)
			}
		}
		clauses = append(clauses, k+" == "+lit)
	}
	return strings.Join(clauses, " && ")
}

// JobQuery answers questions about jobs and DAGs. Results are fetched
// fresh on every call.
type JobQuery struct {
	schedd Schedd
	logger *slog.Logger
	isFile func(string) bool
}

// NewJobQuery creates a JobQuery over schedd.
func NewJobQuery(schedd Schedd, logger *slog.Logger) *JobQuery {
	return &JobQuery{
		schedd: schedd,
		logger: logger.With("component", "job-query"),
		isFile: isRegularFile,
	}
}

// FindJobs returns every job matching all filters, in scheduler order.
// No filters returns every job.
func (q *JobQuery) FindJobs(ctx context.Context, filters Filters) ([]JobRecord, error) {
	jobs, err := q.schedd.Query(ctx, Constraint(filters))
	if err != nil {
		return nil, err
	}
	out := make([]JobRecord, 0, len(jobs))
	for _, job := range jobs {
		if matches(job, filters) {
			out = append(out, job)
		}
	}
	q.logger.Debug("found jobs", "filters", filters, "count", len(out))
	return out, nil
}

// FindJob returns the single job matching filters.
func (q *JobQuery) FindJob(ctx context.Context, filters Filters) (JobRecord, error) {
	jobs, err := q.FindJobs(ctx, filters)
	if err != nil {
		return nil, err
	}
	switch len(jobs) {
	case 0:
		return nil, &NotFoundError{Message: fmt.Sprintf("No jobs found matching %s", describe(filters))}
	case 1:
		return jobs[0], nil
	default:
		return nil, &AmbiguousResultError{
			Message: fmt.Sprintf("Multiple jobs found matching %s (%d)", describe(filters), len(jobs)),
			Count:   len(jobs),
		}
	}
}

// JobStatus returns the JobStatus attribute of the job in cluster id.
func (q *JobQuery) JobStatus(ctx context.Context, id ClusterID) (JobStatus, error) {
	job, err := q.FindJob(ctx, Filters{"ClusterId": id})
	if err != nil {
		return 0, err
	}
	raw, ok := job["JobStatus"]
	if !ok {
		return 0, &ParseError{Message: fmt.Sprintf("job %d has no JobStatus attribute", id)}
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, &ParseError{Message: fmt.Sprintf("job %d has non-numeric JobStatus %v", id, raw)}
	}
	return JobStatus(f), nil
}

// DAGIsRunning reports whether DAGMan currently holds the lock file for
// dagPath. The job table is not consulted.
func (q *JobQuery) DAGIsRunning(dagPath string) bool {
	return q.isFile(LockFile(dagPath))
}

// LockFile returns the path of the lock file DAGMan keeps while dagPath runs.
func LockFile(dagPath string) string {
	return dagPath + ".lock"
}

func isRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func matches(job JobRecord, filters Filters) bool {
	for k, want := range filters {
		got, ok := job[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func describe(filters Filters) string {
	if len(filters) == 0 {
		return "no constraint"
	}
	return Constraint(filters)
}
