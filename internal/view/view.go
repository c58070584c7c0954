// Package view derives what the dashboard renders from store state. Every
// function is pure: inputs are never modified.
package view

import (
	"slices"
	"strings"
	"time"

	"github.com/taskdash/taskdash-go/internal/model"
)

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 10

// Page is one page of a task table.
type Page struct {
	Items        []model.Task `json:"items"`
	Page         int          `json:"page"`
	PageSize     int          `json:"pageSize"`
	TotalResults int          `json:"totalResults"`
	TotalPages   int          `json:"totalPages"`
}

// Filter keeps the tasks whose title, priority or status contains query,
// ignoring case. A blank query keeps everything.
func Filter(tasks []model.Task, query string) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(string(t.Priority)), q) ||
			strings.Contains(strings.ToLower(string(t.Status)), q) {
			out = append(out, t)
		}
	}
	return out
}

// Paginate returns the 1-indexed page of tasks. Pages outside the collection
// are empty. A size below 1 selects DefaultPageSize.
func Paginate(tasks []model.Task, page, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	n := len(tasks)
	totalPages := n / size
	if n%size != 0 {
		totalPages++
	}
	p := Page{
		Items:        []model.Task{},
		Page:         page,
		PageSize:     size,
		TotalResults: n,
		TotalPages:   totalPages,
	}
	if page < 1 || page > totalPages {
		return p
	}

	start := (page - 1) * size
	end := start + min(size, n-start)
	p.Items = append(p.Items, tasks[start:end]...)
	return p
}

// SortByID returns a copy of tasks ordered by ascending id.
func SortByID(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Table applies the table pipeline: filter by query, sort by id, paginate.
func Table(tasks []model.Task, query string, page, size int) Page {
	return Paginate(SortByID(Filter(tasks, query)), page, size)
}

// Summary holds the dashboard card counts.
type Summary struct {
	TotalUsers   int                  `json:"totalUsers"`
	TotalTasks   int                  `json:"totalTasks"`
	DueNext7Days int                  `json:"dueNext7Days"`
	HighPriority int                  `json:"highPriority"`
	ByStatus     map[model.Status]int `json:"byStatus"`
}

// Summarize counts tasks for the dashboard cards relative to now.
func Summarize(tasks []model.Task, users []model.User, now time.Time) Summary {
	s := Summary{
		TotalUsers: len(users),
		TotalTasks: len(tasks),
		ByStatus:   make(map[model.Status]int),
	}

	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := startOfDay.AddDate(0, 0, 7)

	for _, t := range tasks {
		if t.Priority == model.PriorityHigh {
			s.HighPriority++
		}
		s.ByStatus[t.Status]++

		d := t.Deadline.Time.UTC()
		if !t.Deadline.IsZero() && !d.Before(startOfDay) && d.Before(windowEnd) {
			s.DueNext7Days++
		}
	}
	return s
}
