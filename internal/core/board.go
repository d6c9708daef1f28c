// Package core contains the business logic for the production board,
// including the task dependency engine, status derivation, queue
// ordering, next-task suggestion, and board configuration.
package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gb2b/prodboard/pkg/models"
)

// Result reports the outcome of a board command: Task is the task the
// command acted on, and Affected lists any other tasks whose state
// changed as a consequence, such as dependents unlocked by a
// completion or a parent marked by a new subtask. Both carry deep
// copies detached from board state. Removed is only set by RemoveTask
// and lists subtask ids deleted along with the task.
type Result struct {
	Task     *models.Task
	Affected []*models.Task
	Removed  []string
}

// AddTaskOpts carries the optional attributes of a new task. An empty
// Priority defaults to medium; Requires may reference ids that are not
// on the board yet.
type AddTaskOpts struct {
	Description string
	Priority    models.Priority
	Requires    []string
	Agent       string
	Actor       string
}

// TaskUpdate describes edits to a task's descriptive fields. Empty
// fields are left unchanged; an update with no fields set is rejected.
type TaskUpdate struct {
	Title       string
	Description string
	Priority    models.Priority
	Agent       string
	Actor       string
}

// Options configures board construction.
type Options struct {
	// IDPrefix is the prefix for generated task ids (default "TASK").
	IDPrefix string
	// IDPadWidth is the zero-pad width of the numeric suffix (default 5).
	IDPadWidth int
	// Actor is recorded in history entries when a command does not name
	// one explicitly.
	Actor string
}

// Board is the task dependency engine. Commands are all-or-nothing:
// arguments are validated before any state changes, and a returned
// error means the board is untouched. Every state-changing command
// appends a history entry to the task it acts on; availability flips
// on dependents happen silently and are reported via Result.Affected.
//
// Board is not safe for concurrent use; callers serialize access.
type Board interface {
	AddTask(sectorID, title string, opts AddTaskOpts) (*Result, error)
	AddSubtask(parentID, title string, opts AddTaskOpts) (*Result, error)
	StartTask(id, actor string) (*Result, error)
	CompleteTask(id, actor string) (*Result, error)
	ReopenTask(id, actor string) (*Result, error)
	MoveTask(id, sectorID, actor string) (*Result, error)
	UpdateTask(id string, update TaskUpdate) (*Result, error)
	AddDependency(id, requiresID, actor string) (*Result, error)
	RemoveDependency(id, requiresID, actor string) (*Result, error)
	RemoveTask(id string) (*Result, error)
	ReorderQueue(sectorID string, ids []string) error
	AddSector(sector models.Sector) error

	Task(id string) (*models.Task, error)
	Tasks() []*models.Task
	TasksBySector(sectorID string) ([]*models.Task, error)
	ReadyQueue(sectorID string) ([]*models.Task, error)
	Dependents(id string) ([]*models.Task, error)
	Sectors() []models.Sector
	SectorByID(id string) (models.Sector, error)
	SuggestedTask(maxAlternatives int) (*Suggestion, error)
	Snapshot() *models.BoardSnapshot
}

// board implements Board. Tasks live in a map keyed by id; order keeps
// the board insertion order, which is what snapshots persist and what
// explicit queue reordering rewrites.
type board struct {
	sectors     map[string]models.Sector
	sectorOrder []string
	tasks       map[string]*models.Task
	order       []string
	ids         *taskIDGenerator
	actor       string
}

// NewBoard creates an empty board with the given sectors.
func NewBoard(sectors []models.Sector, opts Options) (Board, error) {
	b := &board{
		sectors: make(map[string]models.Sector),
		tasks:   make(map[string]*models.Task),
		ids:     newTaskIDGenerator(opts.IDPrefix, opts.IDPadWidth),
		actor:   opts.Actor,
	}
	if len(sectors) == 0 {
		return nil, fmt.Errorf("%w: at least one sector is required", ErrValidation)
	}
	for _, s := range sectors {
		if err := b.AddSector(s); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// NewBoardFromSnapshot restores a board from a saved snapshot. Task
// ids are validated for uniqueness and sector membership, the id
// counter is seeded past every existing id, and availability is
// re-derived for every task that is not in progress or done. Tasks
// persisted with an explicit in_progress or done status keep it.
func NewBoardFromSnapshot(snap *models.BoardSnapshot, opts Options) (Board, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is nil", ErrValidation)
	}
	bi, err := NewBoard(snap.Sectors, opts)
	if err != nil {
		return nil, err
	}
	b := bi.(*board)

	for i := range snap.Tasks {
		t := snap.Tasks[i].Clone()
		if t.ID == "" {
			return nil, fmt.Errorf("%w: task %d has no id", ErrValidation, i)
		}
		if _, exists := b.tasks[t.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate task id %s", ErrValidation, t.ID)
		}
		if _, ok := b.sectors[t.Sector]; !ok {
			return nil, fmt.Errorf("%w: task %s references sector %q", ErrUnknownSector, t.ID, t.Sector)
		}
		if t.Status != "" && !t.Status.Valid() {
			return nil, fmt.Errorf("%w: task %s has status %q", ErrValidation, t.ID, t.Status)
		}
		if t.Priority == "" {
			t.Priority = models.PriorityMedium
		} else if !t.Priority.Valid() {
			return nil, fmt.Errorf("%w: task %s has priority %q", ErrValidation, t.ID, t.Priority)
		}
		b.ids.observe(t.ID)
		b.tasks[t.ID] = t
		b.order = append(b.order, t.ID)
	}

	// Availability is derived state: recompute it for every task that
	// has not been started, after the whole snapshot is in place so
	// forward references resolve.
	for _, id := range b.order {
		t := b.tasks[id]
		switch t.Status {
		case models.StatusInProgress, models.StatusDone:
		default:
			t.Status = b.derivedStatus(t)
		}
	}
	return b, nil
}

// AddSector registers a new sector. Sector ids are unique and both id
// and name are required.
func (b *board) AddSector(sector models.Sector) error {
	if strings.TrimSpace(sector.ID) == "" {
		return fmt.Errorf("%w: sector id must not be empty", ErrValidation)
	}
	if strings.TrimSpace(sector.Name) == "" {
		return fmt.Errorf("%w: sector %s has no name", ErrValidation, sector.ID)
	}
	if _, exists := b.sectors[sector.ID]; exists {
		return fmt.Errorf("%w: duplicate sector id %s", ErrValidation, sector.ID)
	}
	b.sectors[sector.ID] = sector
	b.sectorOrder = append(b.sectorOrder, sector.ID)
	return nil
}

// AddTask creates a task in the given sector. The task's initial
// status is derived from its dependencies: locked if any required task
// on the board is not done, ready otherwise. Required ids that are not
// on the board do not block.
func (b *board) AddTask(sectorID, title string, opts AddTaskOpts) (*Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if _, ok := b.sectors[sectorID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sectorID)
	}
	priority, err := normalizePriority(opts.Priority)
	if err != nil {
		return nil, err
	}
	requires, err := normalizeRequires(opts.Requires)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          b.ids.next(),
		Title:       title,
		Description: strings.TrimSpace(opts.Description),
		Sector:      sectorID,
		Priority:    priority,
		Requires:    requires,
		Agent:       opts.Agent,
		Created:     now,
		History: []models.HistoryEntry{{
			Action: models.ActionCreated,
			At:     now,
			Actor:  b.actorOr(opts.Actor),
		}},
	}
	task.Status = b.derivedStatus(task)

	b.tasks[task.ID] = task
	b.order = append(b.order, task.ID)
	return &Result{Task: task.Clone()}, nil
}

// AddSubtask creates a task nested under parentID. The subtask lives
// in the parent's sector and inherits the parent's priority unless one
// is given. The parent is marked as a parent and receives a history
// entry naming the new subtask.
func (b *board) AddSubtask(parentID, title string, opts AddTaskOpts) (*Result, error) {
	parent, ok := b.tasks[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	if opts.Priority == "" {
		opts.Priority = parent.Priority
	}
	res, err := b.AddTask(parent.Sector, title, opts)
	if err != nil {
		return nil, err
	}
	task := b.tasks[res.Task.ID]
	task.ParentID = parentID

	parent.IsParent = true
	parent.History = append(parent.History, models.HistoryEntry{
		Action: models.ActionSubtaskAdded,
		At:     time.Now().UTC(),
		Actor:  b.actorOr(opts.Actor),
		Note:   task.ID,
	})
	return &Result{Task: task.Clone(), Affected: []*models.Task{parent.Clone()}}, nil
}

// MoveTask reassigns a task to another sector. Moving a task to the
// sector it is already in is allowed and still recorded.
func (b *board) MoveTask(id, sectorID, actor string) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, ok := b.sectors[sectorID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sectorID)
	}
	task.Sector = sectorID
	task.History = append(task.History, models.HistoryEntry{
		Action:   models.ActionMoved,
		At:       time.Now().UTC(),
		Actor:    b.actorOr(actor),
		ToSector: sectorID,
	})
	return &Result{Task: task.Clone()}, nil
}

// UpdateTask edits a task's descriptive fields. Empty update fields
// are left unchanged; the history entry notes which fields changed.
func (b *board) UpdateTask(id string, update TaskUpdate) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if update.Priority != "" && !update.Priority.Valid() {
		return nil, fmt.Errorf("%w: priority %q is invalid", ErrValidation, update.Priority)
	}

	var changed []string
	if t := strings.TrimSpace(update.Title); t != "" {
		task.Title = t
		changed = append(changed, "title")
	}
	if d := strings.TrimSpace(update.Description); d != "" {
		task.Description = d
		changed = append(changed, "description")
	}
	if update.Priority != "" {
		task.Priority = update.Priority
		changed = append(changed, "priority")
	}
	if update.Agent != "" {
		task.Agent = update.Agent
		changed = append(changed, "agent")
	}
	if len(changed) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	task.History = append(task.History, models.HistoryEntry{
		Action: models.ActionUpdated,
		At:     time.Now().UTC(),
		Actor:  b.actorOr(update.Actor),
		Note:   "updated " + strings.Join(changed, ", "),
	})
	return &Result{Task: task.Clone()}, nil
}

// AddDependency records that task id requires requiresID to be done.
// Both tasks must exist; self-dependencies and duplicates are
// rejected. Cycles are not: the board tolerates dependency cycles and
// leaves surfacing them to health checks and the layout engine. The
// task's availability is re-derived, so a ready task gaining an unmet
// dependency locks again.
func (b *board) AddDependency(id, requiresID, actor string) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, ok := b.tasks[requiresID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, requiresID)
	}
	if id == requiresID {
		return nil, fmt.Errorf("%w: %s cannot require itself", ErrValidation, id)
	}
	if task.RequiresID(requiresID) {
		return nil, fmt.Errorf("%w: %s already requires %s", ErrValidation, id, requiresID)
	}

	task.Requires = append(task.Requires, requiresID)
	task.History = append(task.History, models.HistoryEntry{
		Action: models.ActionDependencyAdded,
		At:     time.Now().UTC(),
		Actor:  b.actorOr(actor),
		Note:   requiresID,
	})
	b.rederiveAvailability(task)
	return &Result{Task: task.Clone()}, nil
}

// RemoveDependency removes requiresID from task id's requirements.
// requiresID does not need to exist on the board, which is how
// dangling requirements left by task removal are cleaned up.
func (b *board) RemoveDependency(id, requiresID, actor string) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !task.RequiresID(requiresID) {
		return nil, fmt.Errorf("%w: %s does not require %s", ErrValidation, id, requiresID)
	}

	kept := task.Requires[:0]
	for _, r := range task.Requires {
		if r != requiresID {
			kept = append(kept, r)
		}
	}
	task.Requires = kept
	task.History = append(task.History, models.HistoryEntry{
		Action: models.ActionDependencyRemoved,
		At:     time.Now().UTC(),
		Actor:  b.actorOr(actor),
		Note:   requiresID,
	})
	b.rederiveAvailability(task)
	return &Result{Task: task.Clone()}, nil
}

// RemoveTask deletes a task and, recursively, all of its subtasks.
// Other tasks' requirements are left untouched and may dangle, but
// any survivor that was locked solely on removed tasks unlocks.
// Result.Task is the removed task, Removed the deleted subtask ids,
// and Affected the unlocked survivors.
func (b *board) RemoveTask(id string) (*Result, error) {
	root, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := map[string]bool{id: true}
	queue := []string{id}
	var subtaskIDs []string
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]
		for _, tid := range b.order {
			t := b.tasks[tid]
			if t.ParentID == parentID && !removed[tid] {
				removed[tid] = true
				queue = append(queue, tid)
				subtaskIDs = append(subtaskIDs, tid)
			}
		}
	}

	result := &Result{Task: root.Clone(), Removed: subtaskIDs}

	var kept []string
	for _, tid := range b.order {
		if removed[tid] {
			delete(b.tasks, tid)
		} else {
			kept = append(kept, tid)
		}
	}
	b.order = kept

	// Survivors that required a removed task may have just lost their
	// last unmet dependency.
	for _, tid := range b.order {
		t := b.tasks[tid]
		if t.Status != models.StatusLocked {
			continue
		}
		for rid := range removed {
			if t.RequiresID(rid) {
				if b.unmetRequires(t) == 0 {
					t.Status = models.StatusReady
					result.Affected = append(result.Affected, t.Clone())
				}
				break
			}
		}
	}
	return result, nil
}

// ReorderQueue rewrites the order of a sector's ready queue. ids must
// be an exact permutation of the sector's ready tasks. Reordering is
// presentational: it changes board order only, appends no history, and
// touches no status.
func (b *board) ReorderQueue(sectorID string, ids []string) error {
	if _, ok := b.sectors[sectorID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSector, sectorID)
	}

	ready := make(map[string]bool)
	var slots []int
	for i, tid := range b.order {
		t := b.tasks[tid]
		if t.Sector == sectorID && t.Status == models.StatusReady {
			ready[tid] = true
			slots = append(slots, i)
		}
	}

	if len(ids) != len(ready) {
		return fmt.Errorf("%w: got %d ids, sector %s has %d ready tasks", ErrValidation, len(ids), sectorID, len(ready))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %s", ErrValidation, id)
		}
		seen[id] = true
		if !ready[id] {
			return fmt.Errorf("%w: %s is not in the ready queue of sector %s", ErrValidation, id, sectorID)
		}
	}

	for i, id := range ids {
		b.order[slots[i]] = id
	}
	return nil
}

// Task returns a copy of the task with the given id.
func (b *board) Task(id string) (*models.Task, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return task.Clone(), nil
}

// Tasks returns copies of all tasks in board order.
func (b *board) Tasks() []*models.Task {
	out := make([]*models.Task, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.tasks[id].Clone())
	}
	return out
}

// TasksBySector returns copies of the sector's tasks in board order.
func (b *board) TasksBySector(sectorID string) ([]*models.Task, error) {
	if _, ok := b.sectors[sectorID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sectorID)
	}
	var out []*models.Task
	for _, id := range b.order {
		if t := b.tasks[id]; t.Sector == sectorID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// ReadyQueue returns the sector's ready tasks ordered for pickup:
// priority provides the order, and within equal priority the board
// order set by explicit reordering is preserved.
func (b *board) ReadyQueue(sectorID string) ([]*models.Task, error) {
	if _, ok := b.sectors[sectorID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSector, sectorID)
	}
	var out []*models.Task
	for _, id := range b.order {
		if t := b.tasks[id]; t.Sector == sectorID && t.Status == models.StatusReady {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out, nil
}

// Dependents returns copies of the tasks that directly require id, in
// board order.
func (b *board) Dependents(id string) ([]*models.Task, error) {
	if _, ok := b.tasks[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var out []*models.Task
	for _, tid := range b.order {
		if t := b.tasks[tid]; t.RequiresID(id) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// Sectors returns the registered sectors in registration order.
func (b *board) Sectors() []models.Sector {
	out := make([]models.Sector, 0, len(b.sectorOrder))
	for _, id := range b.sectorOrder {
		out = append(out, b.sectors[id])
	}
	return out
}

// SectorByID returns the sector with the given id.
func (b *board) SectorByID(id string) (models.Sector, error) {
	s, ok := b.sectors[id]
	if !ok {
		return models.Sector{}, fmt.Errorf("%w: %s", ErrUnknownSector, id)
	}
	return s, nil
}

// Snapshot returns a lossless copy of the board: sectors in
// registration order and tasks in board order, with history, statuses,
// and timestamps intact. Restoring the snapshot reproduces the board.
func (b *board) Snapshot() *models.BoardSnapshot {
	snap := &models.BoardSnapshot{
		Version: models.SnapshotVersion,
		Sectors: b.Sectors(),
		Tasks:   make([]models.Task, 0, len(b.order)),
	}
	for _, id := range b.order {
		snap.Tasks = append(snap.Tasks, *b.tasks[id].Clone())
	}
	return snap
}

// actorOr returns actor, falling back to the board's configured actor.
func (b *board) actorOr(actor string) string {
	if actor != "" {
		return actor
	}
	return b.actor
}

func normalizePriority(p models.Priority) (models.Priority, error) {
	if p == "" {
		return models.PriorityMedium, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: priority %q is invalid", ErrValidation, p)
	}
	return p, nil
}

// normalizeRequires trims and deduplicates a requirement list,
// preserving first-occurrence order.
func normalizeRequires(requires []string) ([]string, error) {
	if len(requires) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(requires))
	out := make([]string, 0, len(requires))
	for _, id := range requires {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty dependency id", ErrValidation)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
