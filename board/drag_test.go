package board

import (
	"errors"
	"testing"

	"github.com/Abhijadhav03/momentum/domain"
)

func newDragFixture(t *testing.T) (*Store, domain.Task, domain.Task) {
	t.Helper()
	s := NewStore(WithIDGenerator(sequentialIDs()))
	todo := s.AddTask(domain.TaskInput{Title: "todo task"})
	doing := s.AddTask(domain.TaskInput{Title: "doing task", Status: domain.StatusDoing})
	return s, todo, doing
}

func TestDragStartRequiresTask(t *testing.T) {
	s, _, _ := newDragFixture(t)
	r := NewReconciler()

	if _, err := r.Start(Item{Type: ItemColumn, ID: "todo"}, s); !errors.Is(err, ErrNotDraggable) {
		t.Fatalf("expected ErrNotDraggable, got %v", err)
	}
	if _, err := r.Start(Item{Type: ItemTask, ID: "missing"}, s); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if r.State() != Idle {
		t.Fatalf("failed start should stay idle, got %q", r.State())
	}
}

func TestDragStartCapturesSnapshot(t *testing.T) {
	s, todo, _ := newDragFixture(t)
	r := NewReconciler()

	if _, err := r.Start(Item{Type: ItemTask, ID: todo.ID}, s); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.State() != Dragging {
		t.Fatalf("expected dragging, got %q", r.State())
	}
	active, ok := r.Active()
	if !ok || active.ID != todo.ID {
		t.Fatalf("unexpected active task %#v", active)
	}
}

func TestDragEndOverColumn(t *testing.T) {
	s, todo, _ := newDragFixture(t)
	r := NewReconciler()
	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)

	drop := r.End(&Item{Type: ItemColumn, ID: "done"}, s)

	if drop.Result != DroppedOnColumn || !drop.Move {
		t.Fatalf("unexpected drop %#v", drop)
	}
	if drop.From != domain.StatusTodo || drop.Target != domain.StatusDone {
		t.Fatalf("unexpected from/target %q -> %q", drop.From, drop.Target)
	}
	if r.State() != Idle {
		t.Fatalf("expected idle after end")
	}
	if got, _ := s.Task(todo.ID); got.Status != domain.StatusTodo {
		t.Fatalf("reconciler must not mutate the store")
	}
}

func TestDragEndOverSameColumnIsNoOp(t *testing.T) {
	s, todo, _ := newDragFixture(t)
	r := NewReconciler()
	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)

	drop := r.End(&Item{Type: ItemColumn, ID: "todo"}, s)
	if drop.Move {
		t.Fatalf("drop on own column should not move: %#v", drop)
	}
}

func TestDragEndOverTaskInOtherColumn(t *testing.T) {
	s, todo, doing := newDragFixture(t)
	r := NewReconciler()
	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)

	drop := r.End(&Item{Type: ItemTask, ID: doing.ID}, s)
	if drop.Result != DroppedOnTask || !drop.Move || drop.Target != domain.StatusDoing {
		t.Fatalf("unexpected drop %#v", drop)
	}
}

func TestDragEndOverTaskInSameColumnDoesNotReorder(t *testing.T) {
	s, todo, _ := newDragFixture(t)
	other := s.AddTask(domain.TaskInput{Title: "another todo"})
	r := NewReconciler()
	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)

	drop := r.End(&Item{Type: ItemTask, ID: other.ID}, s)
	if drop.Result != DroppedOnTask || drop.Move {
		t.Fatalf("same column drop should be accepted without move: %#v", drop)
	}
}

func TestDragEndOutside(t *testing.T) {
	s, todo, _ := newDragFixture(t)
	r := NewReconciler()
	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)

	drop := r.End(nil, s)
	if drop.Result != DroppedOutside || drop.Move {
		t.Fatalf("unexpected drop %#v", drop)
	}
	if r.State() != Idle {
		t.Fatalf("expected idle")
	}
}

func TestDragEndWithoutStart(t *testing.T) {
	s, _, _ := newDragFixture(t)
	r := NewReconciler()
	drop := r.End(&Item{Type: ItemColumn, ID: "done"}, s)
	if drop.Result != DroppedOutside || drop.Move {
		t.Fatalf("unexpected drop %#v", drop)
	}
}

func TestDragEndUsesCurrentStatus(t *testing.T) {
	s, todo, _ := newDragFixture(t)
	r := NewReconciler()
	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)
	s.MoveTask(todo.ID, domain.StatusDone)

	drop := r.End(&Item{Type: ItemColumn, ID: "done"}, s)
	if drop.Move {
		t.Fatalf("task already in target column should not move: %#v", drop)
	}
}

func TestDragOverPreviewsTarget(t *testing.T) {
	s, todo, doing := newDragFixture(t)
	r := NewReconciler()

	if _, ok := r.Over(&Item{Type: ItemColumn, ID: "done"}, s); ok {
		t.Fatalf("over while idle should report nothing")
	}

	_, _ = r.Start(Item{Type: ItemTask, ID: todo.ID}, s)
	if col, ok := r.Over(&Item{Type: ItemTask, ID: doing.ID}, s); !ok || col != domain.StatusDoing {
		t.Fatalf("unexpected preview %q %v", col, ok)
	}
	if _, ok := r.Over(&Item{Type: ItemTask, ID: todo.ID}, s); ok {
		t.Fatalf("over self should report nothing")
	}
	if _, ok := r.Over(&Item{Type: ItemColumn, ID: "archive"}, s); ok {
		t.Fatalf("unknown column should report nothing")
	}
	if r.State() != Dragging {
		t.Fatalf("over must not end the gesture")
	}
	if got, _ := s.Task(todo.ID); got.Status != domain.StatusTodo {
		t.Fatalf("over must not commit")
	}
}
