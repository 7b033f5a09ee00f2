package board

import (
	"sort"
	"strings"

	"github.com/Abhijadhav03/momentum/domain"
)

// ColumnView is one column of the derived board.
type ColumnView struct {
	domain.Column
	Tasks []domain.Task `json:"tasks"`
}

// View is the filtered, sorted and partitioned board.
type View struct {
	Params     domain.ViewParams `json:"view"`
	Columns    []ColumnView      `json:"columns"`
	TotalTasks int               `json:"totalTasks"`
	Visible    int               `json:"visibleTasks"`
}

// Filter keeps tasks whose title contains the search query (case-insensitive)
// and, unless the filter is All, whose priority matches.
func Filter(tasks []domain.Task, p domain.ViewParams) []domain.Task {
	q := strings.ToLower(p.SearchQuery)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		if p.FilterPriority != "" && p.FilterPriority != domain.FilterAll && domain.Priority(p.FilterPriority) != t.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortByDueDate stable-sorts tasks ascending by due date in place. Tasks
// without a parsable due date go after every dated task.
func SortByDueDate(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, okI := tasks[i].Due()
		dj, okJ := tasks[j].Due()
		switch {
		case okI && okJ:
			return di.Before(dj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// Derive runs filter, sort and column partitioning over tasks. The input
// slice is not modified.
func Derive(tasks []domain.Task, p domain.ViewParams) View {
	visible := Filter(tasks, p)
	if p.SortBy == domain.SortDate {
		SortByDueDate(visible)
	}

	cols := domain.Columns()
	byStatus := make(map[domain.Status]int, len(cols))
	out := make([]ColumnView, len(cols))
	for i, c := range cols {
		out[i] = ColumnView{Column: c, Tasks: []domain.Task{}}
		byStatus[c.ID] = i
	}
	for _, t := range visible {
		if i, ok := byStatus[t.Status]; ok {
			out[i].Tasks = append(out[i].Tasks, t)
		}
	}

	return View{
		Params:     p,
		Columns:    out,
		TotalTasks: len(tasks),
		Visible:    len(visible),
	}
}

// Derive returns the board view of the store's current state.
func (s *Store) Derive() View {
	return Derive(s.Tasks(), s.view)
}
