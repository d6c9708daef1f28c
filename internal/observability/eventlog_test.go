package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEventLog_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Time:  now,
			Type:  EventTaskCreated,
			Actor: "producer",
			Task:  "TASK-00001",
			Data:  map[string]any{"sector": "gameplay"},
		},
		{
			Time:  now.Add(time.Second),
			Type:  EventTaskStarted,
			Actor: "alice",
			Task:  "TASK-00001",
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	if result[0].Type != EventTaskCreated {
		t.Errorf("expected type %s, got %s", EventTaskCreated, result[0].Type)
	}
	if sector, ok := result[0].Data["sector"].(string); !ok || sector != "gameplay" {
		t.Errorf("event data lost: %+v", result[0].Data)
	}
	if result[1].Actor != "alice" {
		t.Errorf("expected actor alice, got %s", result[1].Actor)
	}
}

func TestEventLog_FilterByTypeAndTask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Type: EventTaskCreated, Task: "TASK-00001"},
		{Time: now.Add(time.Second), Type: EventTaskCompleted, Task: "TASK-00001"},
		{Time: now.Add(2 * time.Second), Type: EventTaskCreated, Task: "TASK-00002"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	byType, err := log.Read(EventFilter{Type: EventTaskCreated})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("expected 2 created events, got %d", len(byType))
	}

	byTask, err := log.Read(EventFilter{Task: "TASK-00001"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(byTask) != 2 {
		t.Fatalf("expected 2 events for TASK-00001, got %d", len(byTask))
	}

	both, err := log.Read(EventFilter{Type: EventTaskCreated, Task: "TASK-00001"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(both) != 1 {
		t.Fatalf("expected 1 event matching both criteria, got %d", len(both))
	}
}

func TestEventLog_FilterByTimeRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		e := Event{Time: base.Add(time.Duration(i) * time.Hour), Type: EventTaskCreated}
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	since := base.Add(30 * time.Minute)
	until := base.Add(150 * time.Minute)
	result, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events in window, got %d", len(result))
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"time":"2026-03-15T10:00:00Z","type":"task.created","task":"TASK-00001"}
this is not json
{"time":"2026-03-15T11:00:00Z","type":"task.completed","task":"TASK-00001"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing log: %v", err)
	}

	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected malformed line skipped, got %d events", len(result))
	}
}

func TestEventLog_AppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	first, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	if err := first.Write(Event{Time: time.Now().UTC(), Type: EventTaskCreated}); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("closing event log: %v", err)
	}

	second, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("reopening event log: %v", err)
	}
	defer second.Close()
	if err := second.Write(Event{Time: time.Now().UTC(), Type: EventTaskCompleted}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := second.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected the log to append, got %d events", len(result))
	}
}
