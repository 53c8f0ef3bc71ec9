// Package task defines the task entity shared by the store, the recurring
// instance generator and the CLI.
package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"matrixtask/recurrence"
)

// Type distinguishes the four kinds of task record. Templates generate
// Instances; Subtasks hang off either a Template (structure to copy) or an
// Instance (the copy).
type Type string

const (
	TypeStandard Type = "standard"
	TypeTemplate Type = "template"
	TypeInstance Type = "instance"
	TypeSubtask  Type = "subtask"
)

// Quadrant places a task in the urgency/importance matrix.
type Quadrant string

const (
	QuadrantDo        Quadrant = "do"        // urgent and important
	QuadrantSchedule  Quadrant = "schedule"  // important, not urgent
	QuadrantDelegate  Quadrant = "delegate"  // urgent, not important
	QuadrantEliminate Quadrant = "eliminate" // neither
)

// Task is the persisted task record. Dates serialize as ISO-8601; the
// recurrence rule rides along as part of the record shape.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Quadrant    Quadrant `json:"quadrant,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	People      []string `json:"people,omitempty"`
	Starred     bool     `json:"starred,omitempty"`
	Completed   bool     `json:"completed"`

	DueDate  *time.Time `json:"dueDate,omitempty"`
	Type     Type       `json:"taskType"`
	ParentID string     `json:"parentTaskId,omitempty"`

	// Templates only.
	Recurrence *recurrence.Rule `json:"recurrence,omitempty"`
	Paused     bool             `json:"isPaused,omitempty"`

	Order     int       `json:"order,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates a standard task.
func New(title string) *Task {
	return &Task{
		ID:       uuid.NewString(),
		Title:    title,
		Quadrant: QuadrantSchedule,
		Type:     TypeStandard,
	}
}

// NewTemplate creates a recurring template carrying the given rule.
func NewTemplate(title string, rule recurrence.Rule) *Task {
	t := New(title)
	t.Type = TypeTemplate
	t.Recurrence = &rule
	return t
}

// IsRecurring reports whether the task generates instances. Only templates
// with a rule recur; instances are never recurring themselves.
func (t *Task) IsRecurring() bool {
	return t.Type == TypeTemplate && t.Recurrence != nil
}

// Validate rejects combinations the type system cannot rule out, such as a
// recurring instance or a template without a rule.
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title must not be empty")
	}
	switch t.Type {
	case TypeStandard:
		if t.Recurrence != nil {
			return fmt.Errorf("standard task must not carry a recurrence rule")
		}
	case TypeTemplate:
		if t.Recurrence == nil {
			return fmt.Errorf("template must carry a recurrence rule")
		}
		if err := t.Recurrence.Validate(); err != nil {
			return fmt.Errorf("template recurrence rule: %w", err)
		}
	case TypeInstance, TypeSubtask:
		if t.ParentID == "" {
			return fmt.Errorf("%s must reference a parent task", t.Type)
		}
		if t.Recurrence != nil {
			return fmt.Errorf("%s must not carry a recurrence rule", t.Type)
		}
	default:
		return fmt.Errorf("unknown task type %q", t.Type)
	}
	if t.Paused && t.Type != TypeTemplate {
		return fmt.Errorf("only templates can be paused")
	}
	return nil
}

// Instantiate snapshots a template into a fresh, non-recurring instance.
// The new task gets its own identity and starts uncompleted.
func Instantiate(tpl *Task, dueDate *time.Time) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Title:       tpl.Title,
		Description: tpl.Description,
		Quadrant:    tpl.Quadrant,
		Tags:        slices.Clone(tpl.Tags),
		People:      slices.Clone(tpl.People),
		Starred:     tpl.Starred,
		Completed:   false,
		DueDate:     dueDate,
		Type:        TypeInstance,
		ParentID:    tpl.ID,
	}
}

// CloneSubtask copies a template's subtask onto a new parent. The clone
// gets a fresh identity and is reset to uncompleted regardless of the
// original's state; title, tags, people, order, star and due date carry
// over.
func CloneSubtask(sub *Task, parentID string) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Title:       sub.Title,
		Description: sub.Description,
		Quadrant:    sub.Quadrant,
		Tags:        slices.Clone(sub.Tags),
		People:      slices.Clone(sub.People),
		Starred:     sub.Starred,
		Completed:   false,
		DueDate:     sub.DueDate,
		Type:        TypeSubtask,
		ParentID:    parentID,
		Order:       sub.Order,
	}
}
