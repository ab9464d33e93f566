package condor

import "fmt"

// JobStatus is the scheduler's numeric JobStatus attribute.
type JobStatus int

const (
	StatusIdle               JobStatus = 1
	StatusRunning            JobStatus = 2
	StatusRemoved            JobStatus = 3
	StatusCompleted          JobStatus = 4
	StatusHeld               JobStatus = 5
	StatusTransferringOutput JobStatus = 6
	StatusSuspended          JobStatus = 7
)

var statusNames = map[JobStatus]string{
	StatusIdle:               "Idle",
	StatusRunning:            "Running",
	StatusRemoved:            "Removed",
	StatusCompleted:          "Completed",
	StatusHeld:               "Held",
	StatusTransferringOutput: "TransferringOutput",
	StatusSuspended:          "Suspended",
}

func (s JobStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("JobStatus(%d)", int(s))
}

// IsTerminal reports whether a job in this state will not run again
// without intervention.
func (s JobStatus) IsTerminal() bool {
	return s == StatusRemoved || s == StatusCompleted
}
