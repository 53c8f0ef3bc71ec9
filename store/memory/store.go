// Package memory implements the task store with in-memory maps, for tests
// and ephemeral runs.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"matrixtask/store"
	"matrixtask/task"
)

// Store implements store.Store backed by a map. Tasks are copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{tasks: make(map[string]*task.Task)}
}

func (s *Store) ListTasks(filter *store.Filter) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*task.Task
	for _, t := range s.tasks {
		if filter.Match(t) {
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func (s *Store) GetTask(id string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return copyTask(t), nil
}

func (s *Store) CreateTask(t *task.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return "", fmt.Errorf("%w: %s", store.ErrConflict, t.ID)
	}
	s.tasks[t.ID] = copyTask(t)
	return t.ID, nil
}

func (s *Store) UpdateTask(t *task.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; !exists {
		return fmt.Errorf("%w: %s", store.ErrNotFound, t.ID)
	}
	t.UpdatedAt = time.Now()
	s.tasks[t.ID] = copyTask(t)
	return nil
}

func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; !exists {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) Close() error { return nil }

func copyTask(t *task.Task) *task.Task {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	c.People = append([]string(nil), t.People...)
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.Recurrence != nil {
		rule := *t.Recurrence
		c.Recurrence = &rule
	}
	return &c
}
