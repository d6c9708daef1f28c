package core

import (
	"errors"
	"testing"

	"github.com/gb2b/prodboard/pkg/models"
)

func TestSuggestedTask_OnlyReadyTask(t *testing.T) {
	b := newTestBoard(t)
	task := mustAdd(t, b, "gameplay", "Design enemy AI", AddTaskOpts{Priority: models.PriorityHigh})

	s, err := b.SuggestedTask(3)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if s.Task.ID != task.ID {
		t.Errorf("expected %s, got %s", task.ID, s.Task.ID)
	}
	if len(s.Alternatives) != 0 {
		t.Errorf("expected no alternatives, got %d", len(s.Alternatives))
	}
}

func TestSuggestedTask_NoneReady(t *testing.T) {
	b := newTestBoard(t)
	a := mustAdd(t, b, "gameplay", "A", AddTaskOpts{})
	mustAdd(t, b, "gameplay", "B", AddTaskOpts{Requires: []string{a.ID}})
	if _, err := b.StartTask(a.ID, ""); err != nil {
		t.Fatalf("starting: %v", err)
	}

	// A is in progress, B is locked: nothing is ready.
	if _, err := b.SuggestedTask(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSuggestedTask_HighestPriorityWins(t *testing.T) {
	b := newTestBoard(t)
	mustAdd(t, b, "gameplay", "low", AddTaskOpts{Priority: models.PriorityLow})
	crit := mustAdd(t, b, "qa", "critical", AddTaskOpts{Priority: models.PriorityCritical})
	mustAdd(t, b, "design", "high", AddTaskOpts{Priority: models.PriorityHigh})

	s, err := b.SuggestedTask(3)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if s.Task.ID != crit.ID {
		t.Errorf("expected the critical task, got %s (%s)", s.Task.ID, s.Task.Priority)
	}
}

func TestSuggestedTask_TieBreakByCreation(t *testing.T) {
	b := newTestBoard(t)
	first := mustAdd(t, b, "gameplay", "first", AddTaskOpts{Priority: models.PriorityHigh})
	mustAdd(t, b, "gameplay", "second", AddTaskOpts{Priority: models.PriorityHigh})

	s, err := b.SuggestedTask(3)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if s.Task.ID != first.ID {
		t.Errorf("expected the earliest-created task, got %s", s.Task.ID)
	}
}

func TestSuggestedTask_AlternativesAdjacentPriorityOnly(t *testing.T) {
	b := newTestBoard(t)
	crit := mustAdd(t, b, "gameplay", "critical", AddTaskOpts{Priority: models.PriorityCritical})
	high := mustAdd(t, b, "gameplay", "high", AddTaskOpts{Priority: models.PriorityHigh})
	mustAdd(t, b, "gameplay", "medium", AddTaskOpts{})
	mustAdd(t, b, "gameplay", "low", AddTaskOpts{Priority: models.PriorityLow})

	s, err := b.SuggestedTask(5)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if s.Task.ID != crit.ID {
		t.Fatalf("expected critical first, got %s", s.Task.ID)
	}
	// Medium and low are more than one rank away from critical.
	if len(s.Alternatives) != 1 || s.Alternatives[0].ID != high.ID {
		t.Errorf("expected only the high task as alternative, got %+v", s.Alternatives)
	}
}

func TestSuggestedTask_AlternativesCapped(t *testing.T) {
	b := newTestBoard(t)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		mustAdd(t, b, "gameplay", title, AddTaskOpts{Priority: models.PriorityHigh})
	}

	s, err := b.SuggestedTask(2)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(s.Alternatives) != 2 {
		t.Errorf("expected 2 alternatives, got %d", len(s.Alternatives))
	}

	s, err = b.SuggestedTask(0)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(s.Alternatives) != 0 {
		t.Errorf("expected no alternatives with a zero cap, got %d", len(s.Alternatives))
	}
}

func TestSuggestedTask_IgnoresNonReadyTasks(t *testing.T) {
	b := newTestBoard(t)
	started := mustAdd(t, b, "gameplay", "started", AddTaskOpts{Priority: models.PriorityCritical})
	if _, err := b.StartTask(started.ID, ""); err != nil {
		t.Fatalf("starting: %v", err)
	}
	finished := mustAdd(t, b, "gameplay", "finished", AddTaskOpts{Priority: models.PriorityCritical})
	if _, err := b.CompleteTask(finished.ID, ""); err != nil {
		t.Fatalf("completing: %v", err)
	}
	ready := mustAdd(t, b, "gameplay", "ready", AddTaskOpts{Priority: models.PriorityLow})

	s, err := b.SuggestedTask(3)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if s.Task.ID != ready.ID {
		t.Errorf("expected the only ready task, got %s", s.Task.ID)
	}
}
