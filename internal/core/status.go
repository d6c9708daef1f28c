package core

import (
	"fmt"
	"time"

	"github.com/gb2b/prodboard/pkg/models"
)

// Task status is split in two: locked and ready are derived from
// dependencies and never set directly, while in_progress and done are
// reached only through the lifecycle commands below.
//
//	locked  -> ready        when the last unmet requirement completes
//	ready   -> in_progress  StartTask
//	ready   -> done         CompleteTask (skipping start is allowed)
//	in_progress -> done     CompleteTask
//	done    -> ready        ReopenTask
//	ready   -> locked       when a required task reopens or a new unmet
//	                        requirement is added

// unmetRequires counts the task's requirements that are on the board
// and not done. Requirements naming absent ids do not block.
func (b *board) unmetRequires(t *models.Task) int {
	n := 0
	for _, id := range t.Requires {
		if dep, ok := b.tasks[id]; ok && dep.Status != models.StatusDone {
			n++
		}
	}
	return n
}

// derivedStatus returns the availability a not-yet-started task should
// have given the current board.
func (b *board) derivedStatus(t *models.Task) models.TaskStatus {
	if b.unmetRequires(t) > 0 {
		return models.StatusLocked
	}
	return models.StatusReady
}

// rederiveAvailability recomputes a task's availability after its
// requirement list changed. Started and finished tasks keep their
// status.
func (b *board) rederiveAvailability(t *models.Task) {
	switch t.Status {
	case models.StatusInProgress, models.StatusDone:
		return
	}
	t.Status = b.derivedStatus(t)
}

// StartTask moves a ready task to in_progress and stamps StartedAt.
// Locked tasks cannot be started; completing their requirements is the
// only way to unlock them.
func (b *board) StartTask(id, actor string) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if task.Status != models.StatusReady {
		return nil, fmt.Errorf("%w: cannot start %s task %s", ErrInvalidTransition, task.Status, id)
	}

	now := time.Now().UTC()
	task.Status = models.StatusInProgress
	task.StartedAt = &now
	task.History = append(task.History, models.HistoryEntry{
		Action: models.ActionStarted,
		At:     now,
		Actor:  b.actorOr(actor),
	})
	return &Result{Task: task.Clone()}, nil
}

// CompleteTask moves a ready or in_progress task to done, stamps
// CompletedAt, and unlocks every direct dependent whose requirements
// are now all met. Unlocked dependents are returned in Affected in
// board order; their history is untouched.
func (b *board) CompleteTask(id, actor string) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	switch task.Status {
	case models.StatusReady, models.StatusInProgress:
	default:
		return nil, fmt.Errorf("%w: cannot complete %s task %s", ErrInvalidTransition, task.Status, id)
	}

	now := time.Now().UTC()
	task.Status = models.StatusDone
	task.CompletedAt = &now
	task.History = append(task.History, models.HistoryEntry{
		Action: models.ActionDone,
		At:     now,
		Actor:  b.actorOr(actor),
	})

	result := &Result{Task: task.Clone()}
	for _, tid := range b.order {
		t := b.tasks[tid]
		if t.Status == models.StatusLocked && t.RequiresID(id) && b.unmetRequires(t) == 0 {
			t.Status = models.StatusReady
			result.Affected = append(result.Affected, t.Clone())
		}
	}
	return result, nil
}

// ReopenTask moves a done task back into the derived pool and bumps
// its iteration counter: it becomes ready again, or locked if one of
// its own requirements has been reopened in the meantime. CompletedAt
// is cleared; StartedAt is kept as a record of the first run. Direct
// dependents that were ready lock again, since one of their
// requirements is no longer done. Dependents already in progress or
// done are left alone.
func (b *board) ReopenTask(id, actor string) (*Result, error) {
	task, ok := b.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if task.Status != models.StatusDone {
		return nil, fmt.Errorf("%w: cannot reopen %s task %s", ErrInvalidTransition, task.Status, id)
	}

	now := time.Now().UTC()
	task.CompletedAt = nil
	task.Iteration++
	task.Status = b.derivedStatus(task)
	task.History = append(task.History, models.HistoryEntry{
		Action: models.ActionReopened,
		At:     now,
		Actor:  b.actorOr(actor),
	})

	result := &Result{Task: task.Clone()}
	for _, tid := range b.order {
		t := b.tasks[tid]
		if t.Status == models.StatusReady && t.RequiresID(id) {
			t.Status = models.StatusLocked
			result.Affected = append(result.Affected, t.Clone())
		}
	}
	return result, nil
}
