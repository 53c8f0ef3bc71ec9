// Package generator materializes recurring task templates into concrete
// instances. It is the only component with side effects and the only
// consumer of a clock: on a fixed cadence it scans all templates, asks the
// recurrence engine which are due, and creates one new instance (plus
// cloned subtasks) per due template per pass.
package generator

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/mo"

	"matrixtask/recurrence"
	"matrixtask/store"
	"matrixtask/task"
)

// DefaultPollInterval is how often the generator re-scans templates. Each
// pass creates at most one instance per template, so a poll interval much
// longer than a template's recurrence interval under-generates rather than
// catching up.
const DefaultPollInterval = 60 * time.Second

// Config configures a Generator. Store is required; everything else has a
// default.
type Config struct {
	// Store is the task store to scan and write to.
	Store store.Store
	// Clock supplies "now". Defaults to time.Now; override in tests.
	Clock func() time.Time
	// Logger receives per-template diagnostics. Defaults to discard.
	Logger *slog.Logger
	// PollInterval is the scan cadence. Defaults to DefaultPollInterval.
	PollInterval time.Duration
}

// Generator runs the instance materialization loop.
type Generator struct {
	store    store.Store
	engine   *recurrence.Engine
	clock    func() time.Time
	logger   *slog.Logger
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a Generator from the given configuration.
func New(cfg Config) *Generator {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Generator{
		store:    cfg.Store,
		engine:   recurrence.NewEngine(cfg.Logger),
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		interval: cfg.PollInterval,
	}
}

// Start launches the polling loop: one pass immediately, then one per poll
// interval. Calling Start on a running generator is a no-op.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop != nil {
		return
	}
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	go g.loop(g.stop, g.done)
}

// Stop halts the polling loop and waits for an in-flight pass to finish.
func (g *Generator) Stop() {
	g.mu.Lock()
	stop, done := g.stop, g.done
	g.stop, g.done = nil, nil
	g.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (g *Generator) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	g.runLogged()
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.runLogged()
		}
	}
}

func (g *Generator) runLogged() {
	if _, err := g.RunOnce(); err != nil {
		g.logger.Error("generation pass failed", "error", err)
	}
}

// RunOnce performs a single materialization pass and returns how many
// instances it created. Template failures are logged and skipped so one
// malformed rule cannot block the rest; the returned error covers only the
// template scan itself.
func (g *Generator) RunOnce() (int, error) {
	templates, err := g.store.ListTasks(&store.Filter{Types: []task.Type{task.TypeTemplate}})
	if err != nil {
		return 0, fmt.Errorf("list templates: %w", err)
	}

	created := 0
	for _, tpl := range templates {
		if tpl.Paused || !tpl.IsRecurring() {
			continue
		}
		ok, err := g.materialize(tpl)
		if err != nil {
			// Skip this template for the tick; state is re-read from the
			// store next pass, so a failed write is retried naturally.
			g.logger.Warn("skipping template", "template_id", tpl.ID, "error", err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (g *Generator) materialize(tpl *task.Task) (bool, error) {
	if err := tpl.Recurrence.Validate(); err != nil {
		return false, fmt.Errorf("recurrence rule: %w", err)
	}

	instances, err := g.store.ListTasks(&store.Filter{
		ParentID: tpl.ID,
		Types:    []task.Type{task.TypeInstance},
	})
	if err != nil {
		return false, fmt.Errorf("list instances: %w", err)
	}

	var newest *task.Task
	for _, inst := range instances {
		if newest == nil || inst.CreatedAt.After(newest.CreatedAt) {
			newest = inst
		}
	}
	last := mo.None[time.Time]()
	if newest != nil {
		last = mo.Some(newest.CreatedAt)
	}

	now := g.clock()
	due, err := g.engine.IsDue(last, *tpl.Recurrence, now, len(instances))
	if err != nil {
		return false, fmt.Errorf("due check: %w", err)
	}
	if !due {
		return false, nil
	}

	dueDate, err := g.nextDueDate(tpl, newest)
	if err != nil {
		return false, fmt.Errorf("compute due date: %w", err)
	}

	inst := task.Instantiate(tpl, dueDate)
	inst.CreatedAt = now
	inst.UpdatedAt = now
	instID, err := g.store.CreateTask(inst)
	if err != nil {
		return false, fmt.Errorf("create instance: %w", err)
	}

	if err := g.cloneSubtasks(tpl, instID, now); err != nil {
		// The instance itself exists; report the partial failure but count
		// the creation so the due-check sees it next pass.
		g.logger.Warn("instance created with incomplete subtasks",
			"template_id", tpl.ID, "instance_id", instID, "error", err)
	}

	// slog panics calling MarshalText on a nil *time.Time, so only
	// dereference when the due date is set.
	var dueAttr any
	if dueDate != nil {
		dueAttr = *dueDate
	}
	g.logger.Info("created recurring instance",
		"template_id", tpl.ID, "instance_id", instID, "due", dueAttr)
	return true, nil
}

// nextDueDate seeds the new instance's due date from the last instance's
// due date, falling back to the template's own, and leaves it unset when
// neither exists.
func (g *Generator) nextDueDate(tpl, newest *task.Task) (*time.Time, error) {
	var seed *time.Time
	if newest != nil && newest.DueDate != nil {
		seed = newest.DueDate
	} else if tpl.DueDate != nil {
		seed = tpl.DueDate
	}
	if seed == nil {
		return nil, nil
	}
	next, err := g.engine.NextOccurrence(*seed, *tpl.Recurrence)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (g *Generator) cloneSubtasks(tpl *task.Task, instID string, now time.Time) error {
	subs, err := g.store.ListTasks(&store.Filter{
		ParentID: tpl.ID,
		Types:    []task.Type{task.TypeSubtask},
	})
	if err != nil {
		return fmt.Errorf("list subtasks: %w", err)
	}
	slices.SortFunc(subs, func(a, b *task.Task) int { return a.Order - b.Order })

	for _, sub := range subs {
		clone := task.CloneSubtask(sub, instID)
		clone.CreatedAt = now
		clone.UpdatedAt = now
		if _, err := g.store.CreateTask(clone); err != nil {
			return fmt.Errorf("clone subtask %s: %w", sub.ID, err)
		}
	}
	return nil
}
