package domain

import "time"

// ActivityAction names the kind of change recorded in the activity log.
type ActivityAction string

const (
	ActionCreated ActivityAction = "created"
	ActionUpdated ActivityAction = "updated"
	ActionMoved   ActivityAction = "moved"
	ActionDeleted ActivityAction = "deleted"
)

// ActivityLogEntry records one board change.
type ActivityLogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	TaskID    string         `json:"taskId"`
	TaskTitle string         `json:"taskTitle"`
	Action    ActivityAction `json:"action"`
	Details   string         `json:"details"`
}

// User is the signed in board owner.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
