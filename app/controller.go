// Package app couples the board, the activity log, toasts, auth and
// persistence behind a single serialized write path.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/Abhijadhav03/momentum/activity"
	"github.com/Abhijadhav03/momentum/auth"
	"github.com/Abhijadhav03/momentum/board"
	"github.com/Abhijadhav03/momentum/domain"
	"github.com/Abhijadhav03/momentum/notify"
	"github.com/Abhijadhav03/momentum/storage"
	"github.com/Abhijadhav03/momentum/toast"
)

// ErrTaskNotFound is returned for ids that are not on the board.
var ErrTaskNotFound = errors.New("task not found")

// Saver schedules a snapshot write. storage.Saver implements it.
type Saver interface {
	Save(key string, state any)
}

// Config wires the controller's collaborators. KV, Saver, Auth and Logger are
// required.
type Config struct {
	KV        storage.KV
	Saver     Saver
	Auth      *auth.Auth
	Toaster   *toast.Toaster
	Publisher notify.Publisher
	Logger    *log.Logger
	// Registerer receives the mutation counter when set.
	Registerer   prometheus.Registerer
	StoreOptions []board.Option
	// PublishTimeout bounds each background event delivery. Zero selects
	// the default.
	PublishTimeout time.Duration
}

// Controller is the application state object. Every mutation runs to
// completion under one lock, queues its board event and schedules saves.
type Controller struct {
	mu       sync.Mutex
	store    *board.Store
	activity *activity.Log
	drag     *board.Reconciler

	kv        storage.KV
	saver     Saver
	auth      *auth.Auth
	toasts    *toast.Toaster
	events    *notify.Dispatcher
	logger    *log.Logger
	mutations *prometheus.CounterVec
	now       func() time.Time
}

func New(cfg Config) (*Controller, error) {
	if cfg.KV == nil || cfg.Saver == nil || cfg.Auth == nil || cfg.Logger == nil {
		return nil, errors.New("app: kv, saver, auth and logger are required")
	}
	c := &Controller{
		store:     board.NewStore(cfg.StoreOptions...),
		activity:  activity.NewLog(),
		drag:      board.NewReconciler(),
		kv:        cfg.KV,
		saver:     cfg.Saver,
		auth:      cfg.Auth,
		toasts:    cfg.Toaster,
		events:    notify.NewDispatcher(cfg.Publisher, cfg.Logger, cfg.PublishTimeout),
		logger:    cfg.Logger,
		now:       time.Now,
	}
	if c.toasts == nil {
		c.toasts = toast.New(toast.DefaultTTL)
	}
	c.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "momentum",
		Name:      "board_mutations_total",
		Help:      "Board mutations applied, by operation.",
	}, []string{"op"})
	if cfg.Registerer != nil {
		if err := cfg.Registerer.Register(c.mutations); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// Load rehydrates the board, the activity log and the session. Missing or
// malformed blobs leave the defaults in place.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var tasks board.Snapshot
	if ok, err := c.load(ctx, storage.TasksKey, &tasks); err != nil {
		return err
	} else if ok {
		c.store.Restore(tasks)
	}
	var logs activity.Snapshot
	if ok, err := c.load(ctx, storage.ActivityKey, &logs); err != nil {
		return err
	} else if ok {
		c.activity.Restore(logs)
	}
	var session auth.Session
	if ok, err := c.load(ctx, storage.AuthKey, &session); err != nil {
		return err
	} else if ok {
		c.auth.Restore(session)
	}
	c.logger.WithFields(log.Fields{
		"tasks":    c.store.Len(),
		"activity": c.activity.Len(),
	}).Info("board state loaded")
	return nil
}

func (c *Controller) load(ctx context.Context, key string, dst any) (bool, error) {
	err := storage.Load(ctx, c.kv, key, dst)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	case errors.Is(err, storage.ErrCorrupt):
		c.logger.WithError(err).WithField("key", key).Warn("discarding malformed snapshot")
		return false, nil
	}
	return false, fmt.Errorf("load %s: %w", key, err)
}

// CreateTask validates and adds a task.
func (c *Controller) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	in = in.Normalize()
	if err := domain.Validate(in); err != nil {
		return domain.Task{}, err
	}

	c.mu.Lock()
	t := c.store.AddTask(in)
	c.activity.Add(domain.ActionCreated, t.ID, t.Title, "Created")
	c.toasts.Show("Task created", fmt.Sprintf(`"%s" has been created`, t.Title), toast.VariantSuccess)
	c.saveBoard()
	c.saveActivity()
	ev := c.event(domain.TaskCreated, &t)
	c.publish(ctx, ev)
	c.mu.Unlock()

	c.mutations.WithLabelValues("create").Inc()
	c.logger.WithField("taskId", t.ID).Debug("task created")
	return t, nil
}

// UpdateTask merges patch into the task.
func (c *Controller) UpdateTask(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	p = p.Normalize()
	if err := domain.Validate(p); err != nil {
		return domain.Task{}, err
	}

	c.mu.Lock()
	t, ok := c.store.UpdateTask(id, p)
	if !ok {
		c.mu.Unlock()
		return domain.Task{}, ErrTaskNotFound
	}
	c.activity.Add(domain.ActionUpdated, t.ID, t.Title, "Updated")
	c.toasts.Show("Task updated", fmt.Sprintf(`"%s" has been updated`, t.Title), toast.VariantSuccess)
	c.saveBoard()
	c.saveActivity()
	ev := c.event(domain.TaskUpdated, &t)
	c.publish(ctx, ev)
	c.mu.Unlock()

	c.mutations.WithLabelValues("update").Inc()
	c.logger.WithField("taskId", t.ID).Debug("task updated")
	return t, nil
}

// DeleteTask removes the task. The deletion is logged with the task's last
// title.
func (c *Controller) DeleteTask(ctx context.Context, id string) (domain.Task, error) {
	c.mu.Lock()
	t, ok := c.store.Task(id)
	if !ok {
		c.mu.Unlock()
		return domain.Task{}, ErrTaskNotFound
	}
	c.activity.Add(domain.ActionDeleted, t.ID, t.Title, "Deleted")
	c.store.DeleteTask(id)
	c.toasts.Show("Task deleted", fmt.Sprintf(`"%s" has been deleted`, t.Title), toast.VariantSuccess)
	c.saveBoard()
	c.saveActivity()
	ev := c.event(domain.TaskDeleted, nil)
	ev.TaskID = t.ID
	c.publish(ctx, ev)
	c.mu.Unlock()

	c.mutations.WithLabelValues("delete").Inc()
	c.logger.WithField("taskId", t.ID).Debug("task deleted")
	return t, nil
}

// MoveTask sets the task's column. Moving to the current column changes
// nothing and records nothing.
func (c *Controller) MoveTask(ctx context.Context, id string, status domain.Status) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}

	c.mu.Lock()
	t, ok := c.store.Task(id)
	if !ok {
		c.mu.Unlock()
		return domain.Task{}, ErrTaskNotFound
	}
	if t.Status == status {
		c.mu.Unlock()
		return t, nil
	}
	t, ev := c.move(t, status)
	c.publish(ctx, ev)
	c.mu.Unlock()
	return t, nil
}

// move commits a column change. Callers hold c.mu.
func (c *Controller) move(t domain.Task, status domain.Status) (domain.Task, domain.BoardEvent) {
	moved, _ := c.store.MoveTask(t.ID, status)
	c.activity.Add(domain.ActionMoved, moved.ID, moved.Title, "to "+string(status))
	c.saveBoard()
	c.saveActivity()
	c.mutations.WithLabelValues("move").Inc()
	c.logger.WithFields(log.Fields{"taskId": moved.ID, "from": t.Status, "to": status}).Debug("task moved")
	return moved, c.event(domain.TaskMoved, &moved)
}

// SetView applies the non-nil view parameters. Invalid values are rejected
// as a whole.
func (c *Controller) SetView(ctx context.Context, p domain.ViewPatch) (domain.ViewParams, error) {
	if p.FilterPriority != nil && !p.FilterPriority.Valid() {
		return domain.ViewParams{}, fmt.Errorf("%w: filterPriority %q", domain.ErrInvalidInput, *p.FilterPriority)
	}
	if p.SortBy != nil && !p.SortBy.Valid() {
		return domain.ViewParams{}, fmt.Errorf("%w: sortBy %q", domain.ErrInvalidInput, *p.SortBy)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p.SearchQuery != nil {
		c.store.SetSearchQuery(*p.SearchQuery)
	}
	if p.FilterPriority != nil {
		c.store.SetFilterPriority(*p.FilterPriority)
	}
	if p.SortBy != nil {
		c.store.SetSortBy(*p.SortBy)
	}
	c.saveBoard()
	return c.store.View(), nil
}

// ResetBoard clears all tasks and view parameters. The activity log is kept.
func (c *Controller) ResetBoard(ctx context.Context) {
	c.mu.Lock()
	c.store.ResetBoard()
	c.toasts.Show("Board reset", "All tasks have been cleared", toast.VariantWarning)
	c.saveBoard()
	ev := c.event(domain.BoardReset, nil)
	c.publish(ctx, ev)
	c.mu.Unlock()

	c.mutations.WithLabelValues("reset").Inc()
	c.logger.Info("board reset")
}

func (c *Controller) ClearActivity(ctx context.Context) {
	c.mu.Lock()
	c.activity.Clear()
	c.saveActivity()
	ev := c.event(domain.ActivityCleared, nil)
	c.publish(ctx, ev)
	c.mu.Unlock()

	c.mutations.WithLabelValues("clear-activity").Inc()
}

// DragStart begins a gesture on a task.
func (c *Controller) DragStart(src board.Item) (domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.drag.Start(src, c.store)
	if errors.Is(err, board.ErrUnknownTask) {
		return domain.Task{}, ErrTaskNotFound
	}
	return t, err
}

// DragOver previews the column a drop on over would land in.
func (c *Controller) DragOver(over *board.Item) (domain.Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag.Over(over, c.store)
}

// DragEnd finishes the gesture and commits a column change when needed.
func (c *Controller) DragEnd(ctx context.Context, over *board.Item) board.Drop {
	c.mu.Lock()
	drop := c.drag.End(over, c.store)
	if !drop.Move {
		c.mu.Unlock()
		return drop
	}
	moved, ev := c.move(*drop.Task, drop.Target)
	drop.Task = &moved
	c.publish(ctx, ev)
	c.mu.Unlock()
	return drop
}

// DragState reports the gesture phase and the dragged task, if any.
func (c *Controller) DragState() (board.DragState, *domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.drag.Active(); ok {
		return c.drag.State(), &t
	}
	return c.drag.State(), nil
}

func (c *Controller) Board() board.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Derive()
}

func (c *Controller) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Tasks()
}

func (c *Controller) Task(id string) (domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Task(id)
}

func (c *Controller) View() domain.ViewParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.View()
}

// Activity returns the log, newest first.
func (c *Controller) Activity() []domain.ActivityLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activity.Entries()
}

func (c *Controller) Toasts() []toast.Toast { return c.toasts.Active() }

func (c *Controller) DismissToast(id string) bool { return c.toasts.Dismiss(id) }

// Login authenticates the demo user and persists the session.
func (c *Controller) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, user, err := c.auth.Login(email, password)
	if err != nil {
		c.toasts.Show("Login failed", "Invalid email or password", toast.VariantError)
		c.logger.WithField("email", email).Warn("login failed")
		return "", domain.User{}, err
	}
	c.toasts.Show("Welcome back!", "Successfully logged in to Momentum", toast.VariantSuccess)
	c.saver.Save(storage.AuthKey, c.auth.Snapshot())
	c.logger.WithField("userId", user.ID).Info("user logged in")
	return token, user, nil
}

func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth.Logout()
	c.toasts.Show("Logged out", "You have been successfully logged out", toast.VariantSuccess)
	c.saver.Save(storage.AuthKey, c.auth.Snapshot())
}

// CurrentUser returns the logged in user.
func (c *Controller) CurrentUser() (domain.User, bool) { return c.auth.Current() }

func (c *Controller) saveBoard()    { c.saver.Save(storage.TasksKey, c.store.Snapshot()) }
func (c *Controller) saveActivity() { c.saver.Save(storage.ActivityKey, c.activity.Snapshot()) }

func (c *Controller) event(typ string, t *domain.Task) domain.BoardEvent {
	ev := domain.BoardEvent{Type: typ, Time: c.now().UnixMilli()}
	if t != nil {
		cp := t.Clone()
		ev.Task = &cp
		ev.TaskID = t.ID
	}
	return ev
}

// publish queues ev for background delivery. Callers hold c.mu so events
// leave in the order the store applied them.
func (c *Controller) publish(ctx context.Context, ev domain.BoardEvent) {
	_ = c.events.Publish(ctx, ev)
}

// FlushEvents waits until every queued board event is delivered.
func (c *Controller) FlushEvents(ctx context.Context) error {
	return c.events.Flush(ctx)
}

// Close delivers queued board events and stops the event worker.
func (c *Controller) Close() {
	c.events.Close()
}
