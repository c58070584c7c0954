package view

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/taskdash/taskdash-go/internal/model"
)

func makeTasks(n int) []model.Task {
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{ID: int64(i + 1), Title: fmt.Sprintf("task %d", i+1)}
	}
	return tasks
}

func TestPaginate(t *testing.T) {
	tasks := makeTasks(23)

	tests := []struct {
		name      string
		page      int
		size      int
		wantFirst int64
		wantLen   int
	}{
		{name: "first page", page: 1, size: 10, wantFirst: 1, wantLen: 10},
		{name: "middle page", page: 2, size: 10, wantFirst: 11, wantLen: 10},
		{name: "last partial page", page: 3, size: 10, wantFirst: 21, wantLen: 3},
		{name: "past the end", page: 4, size: 10, wantLen: 0},
		{name: "zero page", page: 0, size: 10, wantLen: 0},
		{name: "negative page", page: -2, size: 10, wantLen: 0},
		{name: "default size", page: 1, size: 0, wantFirst: 1, wantLen: DefaultPageSize},
		{name: "huge page", page: 1<<62 + 1, size: 4, wantLen: 0},
		{name: "max page", page: math.MaxInt, size: 10, wantLen: 0},
		{name: "max size", page: 1, size: math.MaxInt, wantFirst: 1, wantLen: 23},
		{name: "max size second page", page: 2, size: math.MaxInt, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tasks, tt.page, tt.size)
			if len(p.Items) != tt.wantLen {
				t.Fatalf("len(Items) = %d, want %d", len(p.Items), tt.wantLen)
			}
			if p.Items == nil {
				t.Error("Items should be an empty slice, not nil")
			}
			if tt.wantLen > 0 && p.Items[0].ID != tt.wantFirst {
				t.Errorf("first id = %d, want %d", p.Items[0].ID, tt.wantFirst)
			}
			if p.TotalResults != 23 {
				t.Errorf("TotalResults = %d, want 23", p.TotalResults)
			}
		})
	}
}

func TestPaginate_TotalPages(t *testing.T) {
	if got := Paginate(makeTasks(20), 1, 10).TotalPages; got != 2 {
		t.Errorf("TotalPages = %d, want 2", got)
	}
	if got := Paginate(nil, 1, 10).TotalPages; got != 0 {
		t.Errorf("TotalPages = %d, want 0", got)
	}
	if got := Paginate(makeTasks(3), 1, math.MaxInt).TotalPages; got != 1 {
		t.Errorf("TotalPages = %d, want 1", got)
	}
}

func TestFilter(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "Write Report", Priority: model.PriorityHigh, Status: model.StatusTodo},
		{ID: 2, Title: "review pr", Priority: model.PriorityLow, Status: model.StatusInProgress},
		{ID: 3, Title: "deploy", Priority: model.PriorityMedium, Status: model.StatusCompleted},
	}

	tests := []struct {
		query string
		want  []int64
	}{
		{query: "", want: []int64{1, 2, 3}},
		{query: "   ", want: []int64{1, 2, 3}},
		{query: "REPORT", want: []int64{1}},
		{query: "high", want: []int64{1}},
		{query: "progress", want: []int64{2}},
		{query: "re", want: []int64{1, 2}},
		{query: "completed", want: []int64{3}},
		{query: "nothing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(tasks, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) returned %d tasks, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Filter(%q)[%d].ID = %d, want %d", tt.query, i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSortByID_DoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{{ID: 3}, {ID: 1}, {ID: 2}}
	sorted := SortByID(tasks)

	for i, want := range []int64{1, 2, 3} {
		if sorted[i].ID != want {
			t.Errorf("sorted[%d].ID = %d, want %d", i, sorted[i].ID, want)
		}
	}
	if tasks[0].ID != 3 {
		t.Error("SortByID modified its input")
	}
}

func TestTable(t *testing.T) {
	tasks := []model.Task{
		{ID: 12, Title: "b"}, {ID: 2, Title: "a"}, {ID: 7, Title: "skip", Status: model.StatusCompleted},
	}
	p := Table(tasks, "", 1, 2)
	if len(p.Items) != 2 || p.Items[0].ID != 2 || p.Items[1].ID != 7 {
		t.Errorf("unexpected page: %+v", p.Items)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	at := func(d time.Duration) model.LocalTime { return model.LocalTime{Time: now.Add(d)} }
	tasks := []model.Task{
		{ID: 1, Priority: model.PriorityHigh, Status: model.StatusTodo, Deadline: at(-2 * time.Hour)},
		{ID: 2, Priority: model.PriorityHigh, Status: model.StatusCompleted, Deadline: at(6 * 24 * time.Hour)},
		{ID: 3, Priority: model.PriorityLow, Status: model.StatusTodo, Deadline: at(10 * 24 * time.Hour)},
		{ID: 4, Priority: model.PriorityMedium, Status: model.StatusPending},
	}
	users := []model.User{{ID: 1}, {ID: 2}}

	s := Summarize(tasks, users, now)
	if s.TotalUsers != 2 || s.TotalTasks != 4 {
		t.Errorf("unexpected totals: %+v", s)
	}
	if s.HighPriority != 2 {
		t.Errorf("HighPriority = %d, want 2", s.HighPriority)
	}
	if s.DueNext7Days != 2 {
		t.Errorf("DueNext7Days = %d, want 2", s.DueNext7Days)
	}
	if s.ByStatus[model.StatusTodo] != 2 || s.ByStatus[model.StatusCompleted] != 1 {
		t.Errorf("unexpected status counts: %v", s.ByStatus)
	}
}
