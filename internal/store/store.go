package store

import (
	"context"
	"errors"

	"github.com/me/omicron/internal/segments"
	"github.com/me/omicron/pkg/model"
)

// Store is the run ledger: which DAGs were submitted, to which cluster, and
// which output segments each submission was expected to produce.
type Store interface {
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, f model.RunFilter) ([]*model.Run, int, error)
	UpdateRunState(ctx context.Context, id string, state model.RunState) error
	RunSegments(ctx context.Context, id string) (segments.List[int64], error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}

// ErrNotFound is returned by updates addressing an unknown run.
var ErrNotFound = errors.New("not found")
