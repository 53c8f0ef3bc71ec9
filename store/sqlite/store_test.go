package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixtask/recurrence"
	"matrixtask/store"
	"matrixtask/task"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	due := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	tpl := task.NewTemplate("pay rent", recurrence.Rule{
		Pattern:    recurrence.PatternMonthly,
		Interval:   1,
		DayOfMonth: 1,
		EndDate:    &end,
	})
	tpl.Description = "first of the month"
	tpl.Quadrant = task.QuadrantDo
	tpl.Tags = []string{"finance", "home"}
	tpl.People = []string{"alex"}
	tpl.Starred = true
	tpl.DueDate = &due

	id, err := s.CreateTask(tpl)
	require.NoError(t, err)

	got, err := s.GetTask(id)
	require.NoError(t, err)
	assert.Equal(t, tpl.Title, got.Title)
	assert.Equal(t, tpl.Quadrant, got.Quadrant)
	assert.Equal(t, tpl.Tags, got.Tags)
	assert.Equal(t, tpl.People, got.People)
	assert.True(t, got.Starred)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	require.NotNil(t, got.Recurrence, "recurrence rule survives persistence")
	assert.Equal(t, *tpl.Recurrence, *got.Recurrence)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_ListTasksFilters(t *testing.T) {
	s := openTestStore(t)

	tpl := task.NewTemplate("standup", recurrence.Rule{Pattern: recurrence.PatternDaily, Interval: 1})
	_, err := s.CreateTask(tpl)
	require.NoError(t, err)
	_, err = s.CreateTask(task.Instantiate(tpl, nil))
	require.NoError(t, err)
	_, err = s.CreateTask(task.New("unrelated"))
	require.NoError(t, err)

	all, err := s.ListTasks(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	instances, err := s.ListTasks(&store.Filter{ParentID: tpl.ID, Types: []task.Type{task.TypeInstance}})
	require.NoError(t, err)
	assert.Len(t, instances, 1)
}

func TestStore_CreateConflictAndValidation(t *testing.T) {
	s := openTestStore(t)

	created := task.New("once")
	_, err := s.CreateTask(created)
	require.NoError(t, err)

	_, err = s.CreateTask(created)
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.CreateTask(&task.Task{Title: "bad", Type: task.TypeTemplate})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	s := openTestStore(t)

	created := task.New("draft")
	_, err := s.CreateTask(created)
	require.NoError(t, err)

	created.Title = "final"
	created.Completed = true
	require.NoError(t, s.UpdateTask(created))

	got, err := s.GetTask(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.True(t, got.Completed)

	require.NoError(t, s.DeleteTask(created.ID))
	_, err = s.GetTask(created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTask(created.ID), store.ErrNotFound)

	missing := task.New("ghost")
	assert.ErrorIs(t, s.UpdateTask(missing), store.ErrNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	s, err := Open(path)
	require.NoError(t, err)
	created := task.New("durable")
	_, err = s.CreateTask(created)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetTask(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Title)
}
