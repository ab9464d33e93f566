package model

import (
	"time"

	"github.com/me/omicron/internal/segments"
)

// RunState is the ledger's view of a submitted DAG.
type RunState string

const (
	RunStateSubmitted RunState = "SUBMITTED"
	RunStateQueued    RunState = "QUEUED"
	RunStateRunning   RunState = "RUNNING"
	RunStateHeld      RunState = "HELD"
	RunStateCompleted RunState = "COMPLETED"
	RunStateRemoved   RunState = "REMOVED"
	RunStateUnknown   RunState = "UNKNOWN"
)

// IsTerminal reports whether the run will make no further progress on its own.
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateRemoved
}

// Run records one submission of a DAG to the scheduler.
type Run struct {
	ID         string               `json:"id"`
	DAGPath    string               `json:"dag_path"`
	ClusterID  int64                `json:"cluster_id"`
	RescuePath string               `json:"rescue_path,omitempty"`
	State      RunState             `json:"state"`
	Segments   segments.List[int64] `json:"segments,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
