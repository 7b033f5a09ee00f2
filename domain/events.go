package domain

const (
	TaskCreated     = "task-created"
	TaskUpdated     = "task-updated"
	TaskMoved       = "task-moved"
	TaskDeleted     = "task-deleted"
	BoardReset      = "board-reset"
	ActivityCleared = "activity-cleared"
)

// BoardEvent notifies live clients that the board changed.
type BoardEvent struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId,omitempty"`
	Task   *Task  `json:"task,omitempty"`
	Time   int64  `json:"time"`
}
