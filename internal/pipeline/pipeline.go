// Package pipeline ties tiling, submission, status polling and the run
// ledger together. Every operation is a single synchronous step; callers
// own any polling loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/me/omicron/internal/condor"
	"github.com/me/omicron/internal/config"
	"github.com/me/omicron/internal/segments"
	"github.com/me/omicron/internal/store"
	"github.com/me/omicron/internal/subfile"
	"github.com/me/omicron/pkg/model"
)

// ErrDAGRunning is returned when submitting a DAG whose lock file exists.
var ErrDAGRunning = errors.New("dag is already running")

// Submitter hands a DAG to the scheduler.
type Submitter interface {
	Submit(ctx context.Context, dagPath string, extraArgs ...string) (condor.ClusterID, error)
}

// Querier answers job and DAG state questions.
type Querier interface {
	JobStatus(ctx context.Context, id condor.ClusterID) (condor.JobStatus, error)
	DAGIsRunning(dagPath string) bool
}

// Pipeline runs one configured analysis against the scheduler.
type Pipeline struct {
	cfg        config.PipelineConfig
	submitter  Submitter
	query      Querier
	store      store.Store
	logger     *slog.Logger
	now        func() time.Time
	findRescue func(string) (string, error)
}

// New creates a Pipeline.
func New(cfg config.PipelineConfig, sub Submitter, q Querier, st store.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		submitter:  sub,
		query:      q,
		store:      st,
		logger:     logger.With("component", "pipeline"),
		now:        func() time.Time { return time.Now().UTC() },
		findRescue: condor.FindRescueDAG,
	}
}

// Plan returns the output files a job over [start, end) will write.
func (p *Pipeline) Plan(start, end int64) segments.List[int64] {
	return segments.IntegerOutputSegments(segments.Tiling{
		Start:   float64(start),
		End:     float64(end),
		Chunk:   p.cfg.Chunk,
		Segment: p.cfg.Segment,
		Overlap: p.cfg.Overlap,
	})
}

// Outstanding returns the parts of span not yet recorded in the
// configured segment file. A missing file means nothing is processed.
func (p *Pipeline) Outstanding(span segments.Segment[int64]) (segments.List[int64], error) {
	done, err := p.processed()
	if err != nil {
		return nil, err
	}
	return segments.Difference(segments.List[int64]{span}, done), nil
}

// Submit patches the configured submit descriptions, submits dagPath and
// records a run covering the output files of span.
func (p *Pipeline) Submit(ctx context.Context, dagPath string, span segments.Segment[int64]) (*model.Run, error) {
	if p.query.DAGIsRunning(dagPath) {
		return nil, fmt.Errorf("%s: %w", dagPath, ErrDAGRunning)
	}

	overrides := subfile.Overrides{Arguments: p.cfg.Arguments, SingularityImage: p.cfg.Image}
	for _, sub := range p.cfg.SubFiles {
		if err := subfile.Repatch(sub, overrides); err != nil {
			return nil, fmt.Errorf("patch %s: %w", sub, err)
		}
		p.logger.Debug("patched submit file", "path", sub, "image", overrides.SingularityImage)
	}

	id, err := p.submitter.Submit(ctx, dagPath, p.cfg.SubmitArgs...)
	if err != nil {
		return nil, err
	}
	return p.record(ctx, dagPath, id, "", p.Plan(span.Start, span.End))
}

// Resubmit resumes dagPath after a failure. The scheduler applies the
// newest rescue file itself; it is looked up here so a DAG without one is
// rejected and so the ledger can name it.
func (p *Pipeline) Resubmit(ctx context.Context, dagPath string) (*model.Run, error) {
	if p.query.DAGIsRunning(dagPath) {
		return nil, fmt.Errorf("%s: %w", dagPath, ErrDAGRunning)
	}
	rescue, err := p.findRescue(dagPath)
	if err != nil {
		return nil, err
	}
	p.logger.Info("resubmitting from rescue dag", "dag", dagPath, "rescue", rescue)

	segs, err := p.lastSegments(ctx, dagPath)
	if err != nil {
		return nil, err
	}

	id, err := p.submitter.Submit(ctx, dagPath, p.cfg.SubmitArgs...)
	if err != nil {
		return nil, err
	}
	return p.record(ctx, dagPath, id, rescue, segs)
}

// Poll checks the scheduler once for run id and stores the result. When
// the run has completed and a segment file is configured, the run's
// segments are merged into it. A run already COMPLETED or REMOVED is
// returned as stored without asking the scheduler.
func (p *Pipeline) Poll(ctx context.Context, id string) (*model.Run, error) {
	run, err := p.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, &condor.NotFoundError{Message: fmt.Sprintf("No run found with id %s", id)}
	}

	if run.State.IsTerminal() {
		return run, nil
	}

	state := model.RunStateUnknown
	status, err := p.query.JobStatus(ctx, condor.ClusterID(run.ClusterID))
	switch {
	case err == nil:
		state = StateFor(status)
	case errors.Is(err, condor.ErrNotFound):
		// Finished DAGMan jobs leave the queue.
		p.logger.Debug("cluster not in queue", "run_id", id, "cluster_id", run.ClusterID)
	default:
		return nil, err
	}

	if state != run.State {
		if err := p.store.UpdateRunState(ctx, id, state); err != nil {
			return nil, err
		}
		p.logger.Info("run state changed", "run_id", id, "from", run.State, "to", state)
		run.State = state
	}

	if state == model.RunStateCompleted && p.cfg.SegmentFile != "" {
		if err := p.markProcessed(run.Segments); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// StateFor maps a scheduler JobStatus onto the ledger's RunState.
func StateFor(s condor.JobStatus) model.RunState {
	switch s {
	case condor.StatusIdle:
		return model.RunStateQueued
	case condor.StatusRunning, condor.StatusTransferringOutput, condor.StatusSuspended:
		return model.RunStateRunning
	case condor.StatusHeld:
		return model.RunStateHeld
	case condor.StatusCompleted:
		return model.RunStateCompleted
	case condor.StatusRemoved:
		return model.RunStateRemoved
	default:
		return model.RunStateUnknown
	}
}

func (p *Pipeline) record(ctx context.Context, dagPath string, id condor.ClusterID, rescue string, segs segments.List[int64]) (*model.Run, error) {
	now := p.now()
	run := &model.Run{
		ID:         "run_" + uuid.New().String(),
		DAGPath:    dagPath,
		ClusterID:  int64(id),
		RescuePath: rescue,
		State:      model.RunStateSubmitted,
		Segments:   segs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	p.logger.Info("run recorded", "run_id", run.ID, "cluster_id", id, "segments", len(segs))
	return run, nil
}

// lastSegments returns the segments of the newest run of dagPath, or an
// empty list when the ledger has none.
func (p *Pipeline) lastSegments(ctx context.Context, dagPath string) (segments.List[int64], error) {
	runs, _, err := p.store.ListRuns(ctx, model.RunFilter{DAGPath: dagPath, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return segments.List[int64]{}, nil
	}
	return p.store.RunSegments(ctx, runs[0].ID)
}

func (p *Pipeline) processed() (segments.List[int64], error) {
	if p.cfg.SegmentFile == "" {
		return segments.List[int64]{}, nil
	}
	done, err := segments.Read(p.cfg.SegmentFile)
	if errors.Is(err, os.ErrNotExist) {
		return segments.List[int64]{}, nil
	}
	return done, err
}

func (p *Pipeline) markProcessed(segs segments.List[int64]) error {
	done, err := p.processed()
	if err != nil {
		return err
	}
	return segments.Write(segments.Union(done, segs), p.cfg.SegmentFile)
}
