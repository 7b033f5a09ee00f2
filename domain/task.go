package domain

import (
	"strings"
	"time"
)

// Status identifies the column a task belongs to.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Valid reports whether s is one of the fixed column ids.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// Task represents a single card on the board.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	DueDate     string    `json:"dueDate,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      Status    `json:"status"`
}

// Due parses the due date. Tasks without a parsable date report false.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	return c
}

// TaskInput carries the fields a client supplies when creating a task.
type TaskInput struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Description string   `json:"description,omitempty" validate:"max=4000"`
	Priority    Priority `json:"priority" validate:"omitempty,priority"`
	DueDate     string   `json:"dueDate,omitempty" validate:"omitempty,date"`
	Tags        []string `json:"tags,omitempty" validate:"max=32,dive,max=64"`
	Status      Status   `json:"status,omitempty" validate:"omitempty,status"`
}

// TaskPatch carries optional field updates. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	Priority    *Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate     *string   `json:"dueDate,omitempty" validate:"omitempty,date"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=32,dive,max=64"`
	Status      *Status   `json:"status,omitempty" validate:"omitempty,status"`
}

// Empty reports whether the patch carries no changes.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.Tags == nil && p.Status == nil
}

// NormalizeDueDate strips a time component from an ISO timestamp so that
// "2024-01-05T00:00:00Z" and "2024-01-05" compare equal.
func NormalizeDueDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return s
}

// NormalizeTags trims every tag and drops empty ones.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Column is one of the three fixed board columns.
type Column struct {
	ID    Status `json:"id"`
	Title string `json:"title"`
}

// Columns returns the fixed board columns in display order.
func Columns() []Column {
	return []Column{
		{ID: StatusTodo, Title: "Todo"},
		{ID: StatusDoing, Title: "Doing"},
		{ID: StatusDone, Title: "Done"},
	}
}
