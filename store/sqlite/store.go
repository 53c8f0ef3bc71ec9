// Package sqlite implements the task store on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"matrixtask/recurrence"
	"matrixtask/store"
	"matrixtask/task"
)

// Store implements store.Store on a single-file SQLite database. Dates are
// stored as RFC3339 text; tags, people and the recurrence rule as JSON.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at dbPath and ensures the schema.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	quadrant TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	people TEXT NOT NULL DEFAULT '[]',
	starred INTEGER NOT NULL DEFAULT 0,
	completed INTEGER NOT NULL DEFAULT 0,
	due TEXT DEFAULT NULL,
	task_type TEXT NOT NULL,
	parent_id TEXT NOT NULL DEFAULT '',
	recurrence TEXT DEFAULT NULL,
	paused INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) ListTasks(filter *store.Filter) ([]*task.Task, error) {
	rows, err := s.db.Query(selectColumns + ` FROM tasks ORDER BY created_at, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if filter.Match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(id string) (*task.Task, error) {
	row := s.db.QueryRow(selectColumns+` FROM tasks WHERE id = ?;`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return t, err
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

	args, err := taskArgs(t)
	if err != nil {
		return "", err
	}
	_, err = s.db.Exec(`INSERT INTO tasks
	(id, title, description, quadrant, tags, people, starred, completed, due, task_type, parent_id, recurrence, paused, sort_order, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return "", fmt.Errorf("%w: %s", store.ErrConflict, t.ID)
		}
		return "", err
	}
	return t.ID, nil
}

func (s *Store) UpdateTask(t *task.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	t.UpdatedAt = time.Now()

	args, err := taskArgs(t)
	if err != nil {
		return err
	}
	// taskArgs puts id first; move it to the WHERE position.
	args = append(args[1:], args[0])
	res, err := s.db.Exec(`UPDATE tasks SET
	title = ?, description = ?, quadrant = ?, tags = ?, people = ?, starred = ?, completed = ?, due = ?, task_type = ?, parent_id = ?, recurrence = ?, paused = ?, sort_order = ?, created_at = ?, updated_at = ?
	WHERE id = ?;`, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, t.ID)
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, title, description, quadrant, tags, people, starred, completed, due, task_type, parent_id, recurrence, paused, sort_order, created_at, updated_at`

func taskArgs(t *task.Task) ([]any, error) {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return nil, err
	}
	people, err := json.Marshal(t.People)
	if err != nil {
		return nil, err
	}
	due := sql.NullString{}
	if t.DueDate != nil {
		due = sql.NullString{String: t.DueDate.UTC().Format(time.RFC3339), Valid: true}
	}
	rule := sql.NullString{}
	if t.Recurrence != nil {
		data, err := json.Marshal(t.Recurrence)
		if err != nil {
			return nil, err
		}
		rule = sql.NullString{String: string(data), Valid: true}
	}
	return []any{
		t.ID, t.Title, t.Description, string(t.Quadrant), string(tags), string(people),
		boolInt(t.Starred), boolInt(t.Completed), due, string(t.Type), t.ParentID,
		rule, boolInt(t.Paused), t.Order,
		t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var tags, people, quadrant, taskType, createdStr, updatedStr string
	var starred, completed, paused int
	var dueStr, ruleStr sql.NullString

	err := row.Scan(&t.ID, &t.Title, &t.Description, &quadrant, &tags, &people,
		&starred, &completed, &dueStr, &taskType, &t.ParentID,
		&ruleStr, &paused, &t.Order, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}
	t.Quadrant = task.Quadrant(quadrant)
	t.Type = task.Type(taskType)
	t.Starred = starred == 1
	t.Completed = completed == 1
	t.Paused = paused == 1
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("task %s: parse tags: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(people), &t.People); err != nil {
		return nil, fmt.Errorf("task %s: parse people: %w", t.ID, err)
	}
	if dueStr.Valid {
		due, err := time.Parse(time.RFC3339, dueStr.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: parse due date: %w", t.ID, err)
		}
		t.DueDate = &due
	}
	if ruleStr.Valid {
		var rule recurrence.Rule
		if err := json.Unmarshal([]byte(ruleStr.String), &rule); err != nil {
			return nil, fmt.Errorf("task %s: parse recurrence rule: %w", t.ID, err)
		}
		t.Recurrence = &rule
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("task %s: parse created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return nil, fmt.Errorf("task %s: parse updated_at: %w", t.ID, err)
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
