// Package service coordinates board commands end to end: each command
// loads the board file, applies the mutation, saves the result, and
// records the mutation in the event log. A process-wide mutex plus an
// advisory file lock serialize access, so exactly one command at a
// time touches the board file even when several processes share it.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/internal/observability"
	"github.com/gb2b/prodboard/internal/storage"
	"github.com/gb2b/prodboard/pkg/models"
)

// Service executes board commands against a persistent board file.
// Event logging is best-effort: a failed event write never fails the
// command that triggered it. events may be nil to disable logging.
type Service struct {
	mu     sync.Mutex
	store  storage.BoardStore
	events observability.EventLog
	opts   core.Options
}

// New creates a Service over the given store and event log.
func New(store storage.BoardStore, events observability.EventLog, opts core.Options) *Service {
	return &Service{store: store, events: events, opts: opts}
}

// Path returns the board file path.
func (s *Service) Path() string {
	return s.store.Path()
}

// Exists reports whether the board file is present.
func (s *Service) Exists() bool {
	return s.store.Exists()
}

// Init creates a fresh board file with the given sectors. It fails if
// the board file already exists.
func (s *Service) Init(sectors []models.Sector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := lockBoard(s.store.Path())
	if err != nil {
		return fmt.Errorf("initializing board: %w", err)
	}
	defer func() { _ = unlock() }()

	if s.store.Exists() {
		return fmt.Errorf("board file already exists at %s", s.store.Path())
	}
	b, err := core.NewBoard(sectors, s.opts)
	if err != nil {
		return fmt.Errorf("initializing board: %w", err)
	}
	if err := s.store.Save(b.Snapshot()); err != nil {
		return fmt.Errorf("initializing board: %w", err)
	}

	ids := make([]string, 0, len(sectors))
	for _, sector := range sectors {
		ids = append(ids, sector.ID)
	}
	s.logEvent(observability.EventBoardCreated, s.opts.Actor, "", map[string]any{"sectors": ids})
	return nil
}

// AddTask creates a task in the given sector.
func (s *Service) AddTask(sectorID, title string, opts core.AddTaskOpts) (*core.Result, error) {
	res, err := s.mutate("adding task", func(b core.Board) (*core.Result, error) {
		return b.AddTask(sectorID, title, opts)
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(observability.EventTaskCreated, lastEntry(res.Task).Actor, res.Task.ID, map[string]any{
		"sector":   res.Task.Sector,
		"title":    res.Task.Title,
		"priority": string(res.Task.Priority),
	})
	return res, nil
}

// AddSubtask creates a task nested under parentID.
func (s *Service) AddSubtask(parentID, title string, opts core.AddTaskOpts) (*core.Result, error) {
	res, err := s.mutate("adding subtask", func(b core.Board) (*core.Result, error) {
		return b.AddSubtask(parentID, title, opts)
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(observability.EventTaskCreated, lastEntry(res.Task).Actor, res.Task.ID, map[string]any{
		"sector":   res.Task.Sector,
		"title":    res.Task.Title,
		"priority": string(res.Task.Priority),
		"parent":   parentID,
	})
	return res, nil
}

// StartTask moves a ready task to in_progress.
func (s *Service) StartTask(id, actor string) (*core.Result, error) {
	res, err := s.mutate("starting task", func(b core.Board) (*core.Result, error) {
		return b.StartTask(id, actor)
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(observability.EventTaskStarted, lastEntry(res.Task).Actor, res.Task.ID, nil)
	return res, nil
}

// CompleteTask moves a task to done and unlocks dependents whose
// requirements are now all met.
func (s *Service) CompleteTask(id, actor string) (*core.Result, error) {
	res, err := s.mutate("completing task", func(b core.Board) (*core.Result, error) {
		return b.CompleteTask(id, actor)
	})
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if len(res.Affected) > 0 {
		data = map[string]any{"unlocked": taskIDs(res.Affected)}
	}
	s.logEvent(observability.EventTaskCompleted, lastEntry(res.Task).Actor, res.Task.ID, data)
	return res, nil
}

// ReopenTask moves a done task back into the derived pool and relocks
// ready dependents.
func (s *Service) ReopenTask(id, actor string) (*core.Result, error) {
	res, err := s.mutate("reopening task", func(b core.Board) (*core.Result, error) {
		return b.ReopenTask(id, actor)
	})
	if err != nil {
		return nil, err
	}
	data := map[string]any{"iteration": res.Task.Iteration}
	if len(res.Affected) > 0 {
		data["relocked"] = taskIDs(res.Affected)
	}
	s.logEvent(observability.EventTaskReopened, lastEntry(res.Task).Actor, res.Task.ID, data)
	return res, nil
}

// MoveTask reassigns a task to another sector.
func (s *Service) MoveTask(id, sectorID, actor string) (*core.Result, error) {
	res, err := s.mutate("moving task", func(b core.Board) (*core.Result, error) {
		return b.MoveTask(id, sectorID, actor)
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(observability.EventTaskMoved, lastEntry(res.Task).Actor, res.Task.ID, map[string]any{
		"sector": sectorID,
	})
	return res, nil
}

// UpdateTask edits a task's descriptive fields.
func (s *Service) UpdateTask(id string, update core.TaskUpdate) (*core.Result, error) {
	res, err := s.mutate("updating task", func(b core.Board) (*core.Result, error) {
		return b.UpdateTask(id, update)
	})
	if err != nil {
		return nil, err
	}
	entry := lastEntry(res.Task)
	s.logEvent(observability.EventTaskUpdated, entry.Actor, res.Task.ID, map[string]any{
		"note": entry.Note,
	})
	return res, nil
}

// AddDependency records that task id requires requiresID.
func (s *Service) AddDependency(id, requiresID, actor string) (*core.Result, error) {
	res, err := s.mutate("adding dependency", func(b core.Board) (*core.Result, error) {
		return b.AddDependency(id, requiresID, actor)
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(observability.EventDependencyAdded, lastEntry(res.Task).Actor, res.Task.ID, map[string]any{
		"requires": requiresID,
	})
	return res, nil
}

// RemoveDependency removes requiresID from task id's requirements.
func (s *Service) RemoveDependency(id, requiresID, actor string) (*core.Result, error) {
	res, err := s.mutate("removing dependency", func(b core.Board) (*core.Result, error) {
		return b.RemoveDependency(id, requiresID, actor)
	})
	if err != nil {
		return nil, err
	}
	s.logEvent(observability.EventDependencyRemoved, lastEntry(res.Task).Actor, res.Task.ID, map[string]any{
		"requires": requiresID,
	})
	return res, nil
}

// RemoveTask deletes a task and its subtasks.
func (s *Service) RemoveTask(id string) (*core.Result, error) {
	res, err := s.mutate("removing task", func(b core.Board) (*core.Result, error) {
		return b.RemoveTask(id)
	})
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"removed": append([]string{res.Task.ID}, res.Removed...),
	}
	if len(res.Affected) > 0 {
		data["unlocked"] = taskIDs(res.Affected)
	}
	s.logEvent(observability.EventTaskRemoved, s.opts.Actor, res.Task.ID, data)
	return res, nil
}

// ReorderQueue rewrites the order of a sector's ready queue.
func (s *Service) ReorderQueue(sectorID string, ids []string) error {
	_, err := s.mutate("reordering queue", func(b core.Board) (*core.Result, error) {
		if err := b.ReorderQueue(sectorID, ids); err != nil {
			return nil, err
		}
		return &core.Result{}, nil
	})
	if err != nil {
		return err
	}
	s.logEvent(observability.EventQueueReordered, s.opts.Actor, "", map[string]any{
		"sector": sectorID,
		"order":  ids,
	})
	return nil
}

// AddSector registers a new sector on the board.
func (s *Service) AddSector(sector models.Sector) error {
	_, err := s.mutate("adding sector", func(b core.Board) (*core.Result, error) {
		if err := b.AddSector(sector); err != nil {
			return nil, err
		}
		return &core.Result{}, nil
	})
	if err != nil {
		return err
	}
	s.logEvent(observability.EventSectorAdded, s.opts.Actor, "", map[string]any{
		"sector": sector.ID,
	})
	return nil
}

// Task returns the task with the given id.
func (s *Service) Task(id string) (*models.Task, error) {
	b, err := s.loadBoard("reading task")
	if err != nil {
		return nil, err
	}
	return b.Task(id)
}

// Tasks returns all tasks in board order.
func (s *Service) Tasks() ([]*models.Task, error) {
	b, err := s.loadBoard("listing tasks")
	if err != nil {
		return nil, err
	}
	return b.Tasks(), nil
}

// TasksBySector returns the sector's tasks in board order.
func (s *Service) TasksBySector(sectorID string) ([]*models.Task, error) {
	b, err := s.loadBoard("listing tasks")
	if err != nil {
		return nil, err
	}
	return b.TasksBySector(sectorID)
}

// ReadyQueue returns the sector's ready tasks in pickup order.
func (s *Service) ReadyQueue(sectorID string) ([]*models.Task, error) {
	b, err := s.loadBoard("reading queue")
	if err != nil {
		return nil, err
	}
	return b.ReadyQueue(sectorID)
}

// Dependents returns the tasks that directly require id.
func (s *Service) Dependents(id string) ([]*models.Task, error) {
	b, err := s.loadBoard("reading dependents")
	if err != nil {
		return nil, err
	}
	return b.Dependents(id)
}

// Sectors returns the board's sectors in registration order.
func (s *Service) Sectors() ([]models.Sector, error) {
	b, err := s.loadBoard("listing sectors")
	if err != nil {
		return nil, err
	}
	return b.Sectors(), nil
}

// Suggest picks the next task to work on.
func (s *Service) Suggest(maxAlternatives int) (*core.Suggestion, error) {
	b, err := s.loadBoard("suggesting task")
	if err != nil {
		return nil, err
	}
	return b.SuggestedTask(maxAlternatives)
}

// Snapshot returns the board file as persisted, without re-deriving
// statuses. Health checks inspect this raw form so inconsistencies
// the engine would silently repair on load still surface.
func (s *Service) Snapshot() (*models.BoardSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := lockBoard(s.store.Path())
	if err != nil {
		return nil, fmt.Errorf("reading board: %w", err)
	}
	defer func() { _ = unlock() }()

	snap, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("reading board: %w", err)
	}
	return snap, nil
}

// mutate runs fn against a freshly loaded board and persists the
// result. It holds both the process mutex and the board file lock for
// the whole load-apply-save window.
func (s *Service) mutate(action string, fn func(core.Board) (*core.Result, error)) (*core.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := lockBoard(s.store.Path())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer func() { _ = unlock() }()

	b, err := s.loadLocked()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	res, err := fn(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if err := s.store.Save(b.Snapshot()); err != nil {
		return nil, fmt.Errorf("%s: saving board: %w", action, err)
	}
	return res, nil
}

// loadBoard loads a detached board for queries, holding the lock only
// while reading the file.
func (s *Service) loadBoard(action string) (core.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := lockBoard(s.store.Path())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer func() { _ = unlock() }()

	b, err := s.loadLocked()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return b, nil
}

// loadLocked reads the board file and reconstructs the engine; callers
// hold the lock.
func (s *Service) loadLocked() (core.Board, error) {
	snap, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	b, err := core.NewBoardFromSnapshot(snap, s.opts)
	if err != nil {
		return nil, fmt.Errorf("restoring board: %w", err)
	}
	return b, nil
}

// logEvent appends an event to the log. Failures are swallowed: the
// audit trail is best-effort and never blocks a completed command.
func (s *Service) logEvent(eventType, actor, taskID string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.Write(observability.Event{
		Time:  time.Now().UTC(),
		Type:  eventType,
		Actor: actor,
		Task:  taskID,
		Data:  data,
	})
}

// lastEntry returns the most recent history entry of a task.
func lastEntry(t *models.Task) models.HistoryEntry {
	if t == nil || len(t.History) == 0 {
		return models.HistoryEntry{}
	}
	return t.History[len(t.History)-1]
}

// taskIDs extracts the ids of the given tasks.
func taskIDs(tasks []*models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
