package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/internal/observability"
	"github.com/gb2b/prodboard/internal/storage"
	"github.com/gb2b/prodboard/pkg/models"
)

func newTestService(t *testing.T) (*Service, observability.EventLog) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewBoardStore(filepath.Join(dir, "production.board.yaml"))
	events, err := observability.NewJSONLEventLog(filepath.Join(dir, ".board_events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = events.Close() })

	svc := New(store, events, core.Options{Actor: "producer"})
	if err := svc.Init([]models.Sector{
		{ID: "gameplay", Name: "Gameplay"},
		{ID: "qa", Name: "QA"},
	}); err != nil {
		t.Fatalf("initializing board: %v", err)
	}
	return svc, events
}

func TestService_InitRefusesExistingBoard(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Init([]models.Sector{{ID: "gameplay", Name: "Gameplay"}})
	if err == nil {
		t.Fatal("expected an error for an existing board file")
	}
}

func TestService_CommandsPersistAcrossReloads(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.AddTask("gameplay", "Engine tick", core.AddTaskOpts{Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("adding task: %v", err)
	}
	dep, err := svc.AddTask("gameplay", "Enemy AI", core.AddTaskOpts{Requires: []string{a.Task.ID}})
	if err != nil {
		t.Fatalf("adding dependent: %v", err)
	}
	if dep.Task.Status != models.StatusLocked {
		t.Fatalf("expected dependent locked, got %s", dep.Task.Status)
	}

	if _, err := svc.StartTask(a.Task.ID, "alice"); err != nil {
		t.Fatalf("starting: %v", err)
	}
	res, err := svc.CompleteTask(a.Task.ID, "alice")
	if err != nil {
		t.Fatalf("completing: %v", err)
	}
	if len(res.Affected) != 1 || res.Affected[0].ID != dep.Task.ID {
		t.Fatalf("expected dependent unlocked, got %+v", res.Affected)
	}

	// Every command goes through a fresh load of the board file, so a
	// read after the fact sees the persisted state.
	got, err := svc.Task(dep.Task.ID)
	if err != nil {
		t.Fatalf("reading task: %v", err)
	}
	if got.Status != models.StatusReady {
		t.Errorf("persisted status = %s, want ready", got.Status)
	}

	gotA, err := svc.Task(a.Task.ID)
	if err != nil {
		t.Fatalf("reading task: %v", err)
	}
	if gotA.Status != models.StatusDone || gotA.CompletedAt == nil {
		t.Errorf("persisted completion lost: %+v", gotA)
	}
	if len(gotA.History) != 3 {
		t.Errorf("expected created/started/done history, got %+v", gotA.History)
	}
}

func TestService_FailedCommandLeavesFileUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	a, err := svc.AddTask("gameplay", "A", core.AddTaskOpts{})
	if err != nil {
		t.Fatalf("adding task: %v", err)
	}
	locked, err := svc.AddTask("gameplay", "B", core.AddTaskOpts{Requires: []string{a.Task.ID}})
	if err != nil {
		t.Fatalf("adding locked task: %v", err)
	}

	if _, err := svc.StartTask(locked.Task.ID, ""); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := svc.Task(locked.Task.ID)
	if err != nil {
		t.Fatalf("reading task: %v", err)
	}
	if got.Status != models.StatusLocked || len(got.History) != 1 {
		t.Errorf("rejected command changed persisted state: %+v", got)
	}
}

func TestService_EventsLogged(t *testing.T) {
	svc, events := newTestService(t)

	a, err := svc.AddTask("gameplay", "A", core.AddTaskOpts{})
	if err != nil {
		t.Fatalf("adding task: %v", err)
	}
	if _, err := svc.CompleteTask(a.Task.ID, "alice"); err != nil {
		t.Fatalf("completing: %v", err)
	}
	if _, err := svc.MoveTask(a.Task.ID, "qa", "bob"); err != nil {
		t.Fatalf("moving: %v", err)
	}

	logged, err := events.Read(observability.EventFilter{Task: a.Task.ID})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	var types []string
	for _, e := range logged {
		types = append(types, e.Type)
	}
	want := []string{
		observability.EventTaskCreated,
		observability.EventTaskCompleted,
		observability.EventTaskMoved,
	}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, types[i], want[i])
		}
	}
	if logged[1].Actor != "alice" {
		t.Errorf("completion actor = %q, want alice", logged[1].Actor)
	}
}

func TestService_NilEventLogIsTolerated(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewBoardStore(filepath.Join(dir, "board.yaml"))
	svc := New(store, nil, core.Options{Actor: "producer"})
	if err := svc.Init([]models.Sector{{ID: "gameplay", Name: "Gameplay"}}); err != nil {
		t.Fatalf("initializing: %v", err)
	}
	if _, err := svc.AddTask("gameplay", "A", core.AddTaskOpts{}); err != nil {
		t.Fatalf("adding task without an event log: %v", err)
	}
}

func TestService_SuggestAndQueue(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Suggest(3); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on an empty board, got %v", err)
	}

	crit, err := svc.AddTask("gameplay", "critical", core.AddTaskOpts{Priority: models.PriorityCritical})
	if err != nil {
		t.Fatalf("adding task: %v", err)
	}
	if _, err := svc.AddTask("gameplay", "low", core.AddTaskOpts{Priority: models.PriorityLow}); err != nil {
		t.Fatalf("adding task: %v", err)
	}

	s, err := svc.Suggest(3)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if s.Task.ID != crit.Task.ID {
		t.Errorf("suggested %s, want %s", s.Task.ID, crit.Task.ID)
	}

	queue, err := svc.ReadyQueue("gameplay")
	if err != nil {
		t.Fatalf("reading queue: %v", err)
	}
	if len(queue) != 2 || queue[0].ID != crit.Task.ID {
		t.Errorf("queue = %+v", queue)
	}
}

func TestService_SnapshotReturnsRawFile(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.AddTask("gameplay", "A", core.AddTaskOpts{}); err != nil {
		t.Fatalf("adding task: %v", err)
	}

	snap, err := svc.Snapshot()
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if len(snap.Sectors) != 2 || len(snap.Tasks) != 1 {
		t.Errorf("snapshot = %d sectors, %d tasks", len(snap.Sectors), len(snap.Tasks))
	}
}
