// Package store defines the narrow task-store interface the recurrence
// core reads and writes through. Backends own persistence and date
// serialization; the core never touches storage directly.
package store

import (
	"errors"
	"slices"

	"matrixtask/task"
)

// Store connects a backing task store (in-memory, embedded database) with
// the generator and the CLI. Implementations should use the error values
// provided here.
type Store interface {
	// ListTasks returns all tasks matching the filter. A nil filter
	// returns every task.
	ListTasks(filter *Filter) ([]*task.Task, error)
	// GetTask retrieves a single task by id.
	GetTask(id string) (*task.Task, error)
	// CreateTask persists a new task and returns its id. A missing id is
	// assigned; missing timestamps are set to the current time.
	CreateTask(t *task.Task) (string, error)
	// UpdateTask replaces an existing task.
	UpdateTask(t *task.Task) error
	// DeleteTask removes a task by id.
	DeleteTask(id string) error
	// Close releases backend resources.
	Close() error
}

var (
	// ErrNotFound is returned when a requested task doesn't exist.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidInput is returned when a task fails validation.
	ErrInvalidInput = errors.New("invalid task")
	// ErrConflict is returned when a task id already exists.
	ErrConflict = errors.New("task already exists")
)

// Filter narrows a task listing. Zero fields match everything.
type Filter struct {
	// ParentID matches tasks whose parentTaskId equals the given id.
	ParentID string
	// Types matches tasks whose type is one of the given values.
	Types []task.Type
}

// Match reports whether t passes the filter.
func (f *Filter) Match(t *task.Task) bool {
	if f == nil {
		return true
	}
	if f.ParentID != "" && t.ParentID != f.ParentID {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, t.Type) {
		return false
	}
	return true
}
