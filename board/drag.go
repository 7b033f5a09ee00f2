package board

import (
	"errors"

	"github.com/Abhijadhav03/momentum/domain"
)

// ItemType tags a draggable or droppable element.
type ItemType string

const (
	ItemTask   ItemType = "Task"
	ItemColumn ItemType = "Column"
)

// Item references an element taking part in a drag gesture.
type Item struct {
	Type ItemType `json:"type"`
	ID   string   `json:"id"`
}

// DragState is the phase of the current gesture.
type DragState string

const (
	Idle     DragState = "idle"
	Dragging DragState = "dragging"
)

// DropResult describes how a gesture ended.
type DropResult string

const (
	DroppedOnColumn DropResult = "column"
	DroppedOnTask   DropResult = "task"
	DroppedOutside  DropResult = "outside"
)

var (
	ErrNotDraggable = errors.New("only tasks can be dragged")
	ErrUnknownTask  = errors.New("unknown task")
)

// TaskLookup resolves task ids against the source of truth.
type TaskLookup interface {
	Task(id string) (domain.Task, bool)
}

// Drop is the outcome of ending a gesture. Move is true only when the dragged
// task has to change column; Target is then the column it moves to.
type Drop struct {
	Result DropResult    `json:"result"`
	Task   *domain.Task  `json:"task,omitempty"`
	From   domain.Status `json:"from,omitempty"`
	Target domain.Status `json:"target,omitempty"`
	Move   bool          `json:"move"`
}

// Reconciler tracks one drag gesture at a time and decides what a drop means.
// It never mutates the store; callers apply the returned Drop.
type Reconciler struct {
	state  DragState
	active *domain.Task
}

func NewReconciler() *Reconciler {
	return &Reconciler{state: Idle}
}

func (r *Reconciler) State() DragState { return r.state }

// Active returns the snapshot of the dragged task used for the overlay.
func (r *Reconciler) Active() (domain.Task, bool) {
	if r.active == nil {
		return domain.Task{}, false
	}
	return r.active.Clone(), true
}

// Start begins a gesture. A new Start replaces any gesture in progress.
func (r *Reconciler) Start(src Item, tasks TaskLookup) (domain.Task, error) {
	if src.Type != ItemTask {
		return domain.Task{}, ErrNotDraggable
	}
	t, ok := tasks.Task(src.ID)
	if !ok {
		return domain.Task{}, ErrUnknownTask
	}
	r.state = Dragging
	r.active = &t
	return t.Clone(), nil
}

// Over reports the column a drop on the given target would land in. It
// commits nothing.
func (r *Reconciler) Over(over *Item, tasks TaskLookup) (domain.Status, bool) {
	if r.state != Dragging || over == nil {
		return "", false
	}
	if over.Type == ItemTask && over.ID == r.active.ID {
		return "", false
	}
	return targetColumn(over, tasks)
}

// End finishes the gesture and returns to Idle. Dropping on a column targets
// that column; dropping on a task targets the task's column; dropping on
// nothing is a no-op. Same-column drops are accepted without reordering.
func (r *Reconciler) End(over *Item, tasks TaskLookup) Drop {
	active := r.active
	r.state = Idle
	r.active = nil

	if active == nil || over == nil {
		return Drop{Result: DroppedOutside}
	}
	result := DroppedOnColumn
	if over.Type == ItemTask {
		result = DroppedOnTask
	}
	// The snapshot may be stale if the task changed mid-gesture.
	current, ok := tasks.Task(active.ID)
	if !ok {
		return Drop{Result: DroppedOutside}
	}
	target, ok := targetColumn(over, tasks)
	if !ok {
		return Drop{Result: DroppedOutside}
	}
	return Drop{
		Result: result,
		Task:   &current,
		From:   current.Status,
		Target: target,
		Move:   current.Status != target,
	}
}

func targetColumn(over *Item, tasks TaskLookup) (domain.Status, bool) {
	switch over.Type {
	case ItemColumn:
		s := domain.Status(over.ID)
		return s, s.Valid()
	case ItemTask:
		t, ok := tasks.Task(over.ID)
		if !ok {
			return "", false
		}
		return t.Status, true
	}
	return "", false
}
