// Package board holds the task store, the derived board view and the drag
// and drop reconciliation of the kanban board.
package board

import (
	"time"

	"github.com/google/uuid"

	"github.com/Abhijadhav03/momentum/domain"
)

// Snapshot is the persisted form of the store.
type Snapshot struct {
	Tasks          []domain.Task         `json:"tasks"`
	Columns        []domain.Column       `json:"columns"`
	SearchQuery    string                `json:"searchQuery"`
	FilterPriority domain.PriorityFilter `json:"filterPriority"`
	SortBy         domain.SortBy         `json:"sortBy"`
}

// Store owns the task list and the view parameters. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	tasks []domain.Task
	view  domain.ViewParams

	newID func() string
	now   func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// NewStore returns an empty store with default view parameters.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks: []domain.Task{},
		view:  domain.DefaultViewParams(),
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddTask appends a new task with a fresh id. Status defaults to todo.
func (s *Store) AddTask(in domain.TaskInput) domain.Task {
	status := in.Status
	if !status.Valid() {
		status = domain.StatusTodo
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	t := domain.Task{
		ID:          s.uniqueID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Tags:        append([]string{}, tags...),
		CreatedAt:   s.now().UTC(),
		Status:      status,
	}
	s.tasks = append(s.tasks, t)
	return t.Clone()
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// UpdateTask merges the set fields of p into the task with the given id.
// It reports whether the task exists; an unknown id changes nothing.
func (s *Store) UpdateTask(id string, p domain.TaskPatch) (domain.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, false
	}
	t := &s.tasks[i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Status != nil && p.Status.Valid() {
		t.Status = *p.Status
	}
	return t.Clone(), true
}

// DeleteTask removes the task with the given id and returns it.
func (s *Store) DeleteTask(id string) (domain.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, false
	}
	t := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return t, true
}

// MoveTask sets the status of a task. Sibling order is not maintained.
func (s *Store) MoveTask(id string, status domain.Status) (domain.Task, bool) {
	if !status.Valid() {
		return domain.Task{}, false
	}
	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, false
	}
	s.tasks[i].Status = status
	return s.tasks[i].Clone(), true
}

func (s *Store) SetSearchQuery(q string) { s.view.SearchQuery = q }

// SetFilterPriority ignores values outside All/Low/Medium/High.
func (s *Store) SetFilterPriority(f domain.PriorityFilter) {
	if f.Valid() {
		s.view.FilterPriority = f
	}
}

func (s *Store) SetSortBy(by domain.SortBy) {
	if by.Valid() {
		s.view.SortBy = by
	}
}

// ResetBoard clears all tasks and restores the default view.
func (s *Store) ResetBoard() {
	s.tasks = []domain.Task{}
	s.view = domain.DefaultViewParams()
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(id string) (domain.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []domain.Task {
	out := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) Columns() []domain.Column { return domain.Columns() }

func (s *Store) View() domain.ViewParams { return s.view }

// Snapshot captures the whole store for persistence.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Tasks:          s.Tasks(),
		Columns:        domain.Columns(),
		SearchQuery:    s.view.SearchQuery,
		FilterPriority: s.view.FilterPriority,
		SortBy:         s.view.SortBy,
	}
}

// Restore replaces the store contents with snap. Tasks with an unknown status
// or an id already seen are dropped; invalid view values fall back to defaults.
func (s *Store) Restore(snap Snapshot) {
	seen := make(map[string]struct{}, len(snap.Tasks))
	tasks := make([]domain.Task, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.ID == "" || !t.Status.Valid() {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		tasks = append(tasks, t.Clone())
	}
	s.tasks = tasks

	s.view = domain.DefaultViewParams()
	s.view.SearchQuery = snap.SearchQuery
	s.SetFilterPriority(snap.FilterPriority)
	s.SetSortBy(snap.SortBy)
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
