// Package tasks reads and patches the agent's markdown task files.
//
// A task file groups checkbox items under "## YYYY-MM-DD" headings:
//
//	## 2026-10-14
//	- [ ] [high] [work] Write report | id:task_007
//	- [-] Review draft
//	- [x] [low] Call dentist
//
// Exactly one file is authoritative per read: the first non-empty candidate
// in ReadCandidates. Files are never merged.
package tasks

import "errors"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	DefaultPriority = PriorityMedium
	DefaultCategory = "general"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrInvalidTask = errors.New("invalid task")
)

// ReadCandidates is the lookup order for parsing and status patches.
var ReadCandidates = []string{"notes/tasks.md", "tasks.md", "TASKS.md", "notes/todo.md"}

// WriteCandidates is the lookup order for new tasks; todo.md is never written.
var WriteCandidates = []string{"notes/tasks.md", "tasks.md", "TASKS.md"}

const (
	defaultTaskFile   = "notes/tasks.md"
	defaultTaskHeader = "# Tasks\n\n"
)

type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   Status `json:"status"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// NewTask carries the caller-supplied fields of a task to create.
type NewTask struct {
	Title    string `json:"title"`
	Date     string `json:"date,omitempty"`
	Priority string `json:"priority,omitempty"`
	Category string `json:"category,omitempty"`
}

// Filter is applied after parsing; empty fields match everything.
// From and To are inclusive.
type Filter struct {
	Status Status
	Date   string
	From   string
	To     string
}

func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	if f.From != "" && t.Date < f.From {
		return false
	}
	if f.To != "" && t.Date > f.To {
		return false
	}
	return true
}

func Apply(list []Task, f Filter) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// MarkerFor maps a status to its checkbox character.
func MarkerFor(s Status) byte {
	switch s {
	case StatusDone:
		return 'x'
	case StatusInProgress:
		return '-'
	default:
		return ' '
	}
}

func StatusFromMarker(m byte) Status {
	switch m {
	case 'x':
		return StatusDone
	case '-':
		return StatusInProgress
	default:
		return StatusOpen
	}
}
