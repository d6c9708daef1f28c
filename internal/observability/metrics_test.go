package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) EventLog {
	t.Helper()
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestMetrics_Counts(t *testing.T) {
	log := newTestLog(t)
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	events := []Event{
		{Time: base, Type: EventTaskCreated, Task: "TASK-00001", Data: map[string]any{"sector": "gameplay"}},
		{Time: base.Add(time.Minute), Type: EventTaskCreated, Task: "TASK-00002", Data: map[string]any{"sector": "qa"}},
		{Time: base.Add(2 * time.Minute), Type: EventTaskCreated, Task: "TASK-00003", Data: map[string]any{"sector": "gameplay"}},
		{Time: base.Add(time.Hour), Type: EventTaskStarted, Task: "TASK-00001"},
		{Time: base.Add(2 * time.Hour), Type: EventTaskCompleted, Task: "TASK-00001"},
		{Time: base.Add(3 * time.Hour), Type: EventTaskReopened, Task: "TASK-00001"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if m.TasksCreated != 3 {
		t.Errorf("TasksCreated = %d, want 3", m.TasksCreated)
	}
	if m.TasksCompleted != 1 {
		t.Errorf("TasksCompleted = %d, want 1", m.TasksCompleted)
	}
	if m.TasksReopened != 1 {
		t.Errorf("TasksReopened = %d, want 1", m.TasksReopened)
	}
	if m.EventCount != len(events) {
		t.Errorf("EventCount = %d, want %d", m.EventCount, len(events))
	}
	if m.TasksBySector["gameplay"] != 2 || m.TasksBySector["qa"] != 1 {
		t.Errorf("TasksBySector = %v", m.TasksBySector)
	}
	if m.EventsByType[EventTaskCreated] != 3 {
		t.Errorf("EventsByType = %v", m.EventsByType)
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("OldestEvent = %v, want %v", m.OldestEvent, base)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(3*time.Hour)) {
		t.Errorf("NewestEvent = %v, want %v", m.NewestEvent, base.Add(3*time.Hour))
	}
}

func TestMetrics_SinceCutsOffOlderEvents(t *testing.T) {
	log := newTestLog(t)
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	old := Event{Time: base.Add(-48 * time.Hour), Type: EventTaskCreated, Task: "TASK-00001"}
	fresh := Event{Time: base, Type: EventTaskCreated, Task: "TASK-00002"}
	for _, e := range []Event{old, fresh} {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TasksCreated != 1 || m.EventCount != 1 {
		t.Errorf("expected only the fresh event counted, got %+v", m)
	}
}

func TestMetrics_EmptyLog(t *testing.T) {
	log := newTestLog(t)
	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 0 || m.OldestEvent != nil || m.NewestEvent != nil {
		t.Errorf("expected empty metrics, got %+v", m)
	}
}
