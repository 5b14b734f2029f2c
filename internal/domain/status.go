package domain

// Status is the lifecycle state of a workflow request or node execution.
// Values the server adds later are carried through unchanged.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusStopped    Status = "stopped"
)

// Terminal reports whether no further status transitions are expected.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }
