package observability

import (
	"testing"
	"time"

	"github.com/gb2b/prodboard/pkg/models"
)

func healthSnapshot(tasks ...models.Task) *models.BoardSnapshot {
	return &models.BoardSnapshot{
		Version: models.SnapshotVersion,
		Sectors: []models.Sector{{ID: "gameplay", Name: "Gameplay"}},
		Tasks:   tasks,
	}
}

func findingsByCondition(findings []Finding, condition string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Condition == condition {
			out = append(out, f)
		}
	}
	return out
}

func TestHealth_CleanBoard(t *testing.T) {
	snap := healthSnapshot(
		models.Task{ID: "TASK-00001", Sector: "gameplay", Status: models.StatusDone},
		models.Task{ID: "TASK-00002", Sector: "gameplay", Status: models.StatusReady, Requires: []string{"TASK-00001"}},
	)
	findings, err := NewHealthEngine(DefaultHealthThresholds()).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}

func TestHealth_DetectsTwoCycle(t *testing.T) {
	snap := healthSnapshot(
		models.Task{ID: "A", Sector: "gameplay", Status: models.StatusLocked, Requires: []string{"B"}},
		models.Task{ID: "B", Sector: "gameplay", Status: models.StatusLocked, Requires: []string{"A"}},
	)
	findings, err := NewHealthEngine(HealthThresholds{}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	cycles := findingsByCondition(findings, "dependency_cycle")
	if len(cycles) != 1 {
		t.Fatalf("expected exactly 1 cycle finding, got %+v", findings)
	}
	if cycles[0].Severity != SeverityHigh {
		t.Errorf("cycle severity = %s, want high", cycles[0].Severity)
	}
	if len(cycles[0].Tasks) != 2 {
		t.Errorf("cycle members = %v, want both tasks", cycles[0].Tasks)
	}
}

func TestHealth_ReportsSameCycleOnce(t *testing.T) {
	// Three-task cycle: reachable from multiple entry points, still one
	// finding.
	snap := healthSnapshot(
		models.Task{ID: "A", Sector: "gameplay", Status: models.StatusLocked, Requires: []string{"C"}},
		models.Task{ID: "B", Sector: "gameplay", Status: models.StatusLocked, Requires: []string{"A"}},
		models.Task{ID: "C", Sector: "gameplay", Status: models.StatusLocked, Requires: []string{"B"}},
	)
	findings, err := NewHealthEngine(HealthThresholds{}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	if cycles := findingsByCondition(findings, "dependency_cycle"); len(cycles) != 1 {
		t.Errorf("expected 1 cycle finding, got %d", len(cycles))
	}
}

func TestHealth_DanglingRequires(t *testing.T) {
	snap := healthSnapshot(
		models.Task{ID: "TASK-00001", Sector: "gameplay", Status: models.StatusReady, Requires: []string{"GONE-00001", "GONE-00002"}},
	)
	findings, err := NewHealthEngine(HealthThresholds{}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	dangling := findingsByCondition(findings, "dangling_requires")
	if len(dangling) != 1 {
		t.Fatalf("expected 1 dangling finding, got %+v", findings)
	}
	if dangling[0].Tasks[0] != "TASK-00001" {
		t.Errorf("finding names %v, want TASK-00001", dangling[0].Tasks)
	}
}

func TestHealth_StaleLock(t *testing.T) {
	snap := healthSnapshot(
		models.Task{ID: "TASK-00001", Sector: "gameplay", Status: models.StatusDone},
		models.Task{ID: "TASK-00002", Sector: "gameplay", Status: models.StatusLocked, Requires: []string{"TASK-00001"}},
	)
	findings, err := NewHealthEngine(HealthThresholds{}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	if stale := findingsByCondition(findings, "stale_lock"); len(stale) != 1 {
		t.Fatalf("expected 1 stale lock finding, got %+v", findings)
	}
}

func TestHealth_StaleInProgress(t *testing.T) {
	started := time.Now().UTC().Add(-30 * 24 * time.Hour)
	snap := healthSnapshot(
		models.Task{ID: "TASK-00001", Sector: "gameplay", Status: models.StatusInProgress, StartedAt: &started},
	)
	findings, err := NewHealthEngine(HealthThresholds{StaleDays: 14}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	if stale := findingsByCondition(findings, "stale_in_progress"); len(stale) != 1 {
		t.Fatalf("expected 1 stale finding, got %+v", findings)
	}

	// Zero threshold disables the check.
	findings, err = NewHealthEngine(HealthThresholds{}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	if stale := findingsByCondition(findings, "stale_in_progress"); len(stale) != 0 {
		t.Errorf("expected check disabled, got %+v", stale)
	}
}

func TestHealth_ReadyQueueOverflow(t *testing.T) {
	tasks := []models.Task{}
	for _, id := range []string{"A", "B", "C"} {
		tasks = append(tasks, models.Task{ID: id, Sector: "gameplay", Status: models.StatusReady})
	}
	snap := healthSnapshot(tasks...)

	findings, err := NewHealthEngine(HealthThresholds{MaxReady: 2}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	overflow := findingsByCondition(findings, "ready_queue_overflow")
	if len(overflow) != 1 {
		t.Fatalf("expected 1 overflow finding, got %+v", findings)
	}
	if len(overflow[0].Tasks) != 3 {
		t.Errorf("overflow lists %v, want all 3 ready tasks", overflow[0].Tasks)
	}

	findings, err = NewHealthEngine(HealthThresholds{MaxReady: 3}).Evaluate(snap)
	if err != nil {
		t.Fatalf("evaluating health: %v", err)
	}
	if overflow := findingsByCondition(findings, "ready_queue_overflow"); len(overflow) != 0 {
		t.Errorf("queue at the threshold must not fire, got %+v", overflow)
	}
}

func TestHealth_NilSnapshot(t *testing.T) {
	if _, err := NewHealthEngine(HealthThresholds{}).Evaluate(nil); err == nil {
		t.Fatal("expected an error for a nil snapshot")
	}
}
