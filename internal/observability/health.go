package observability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gb2b/prodboard/pkg/models"
)

// FindingSeverity represents the urgency of a health finding.
type FindingSeverity string

const (
	SeverityHigh   FindingSeverity = "high"
	SeverityMedium FindingSeverity = "medium"
	SeverityLow    FindingSeverity = "low"
)

// Finding represents a triggered health condition on the board.
type Finding struct {
	ID          string          `json:"id"`
	Condition   string          `json:"condition"`
	Severity    FindingSeverity `json:"severity"`
	Message     string          `json:"message"`
	Tasks       []string        `json:"tasks,omitempty"`
	TriggeredAt time.Time       `json:"triggered_at"`
}

// HealthThresholds configures when findings should fire.
type HealthThresholds struct {
	// StaleDays flags in_progress tasks started more than this many
	// days ago. Zero disables the check.
	StaleDays int `yaml:"stale_days" json:"stale_days"`
	// MaxReady flags sectors with more than this many ready tasks.
	// Zero disables the check.
	MaxReady int `yaml:"max_ready" json:"max_ready"`
}

// DefaultHealthThresholds returns sensible defaults for health thresholds.
func DefaultHealthThresholds() HealthThresholds {
	return HealthThresholds{
		StaleDays: 14,
		MaxReady:  10,
	}
}

// HealthEngine evaluates health conditions against a board snapshot.
// The snapshot is inspected as persisted, without re-deriving statuses,
// so conditions like stale locks that the engine would repair on load
// are still surfaced.
type HealthEngine interface {
	Evaluate(snap *models.BoardSnapshot) ([]Finding, error)
}

// healthEngine implements HealthEngine by walking the snapshot's
// dependency graph and checking thresholds.
type healthEngine struct {
	thresholds HealthThresholds
}

// NewHealthEngine creates a new HealthEngine with the given thresholds.
func NewHealthEngine(thresholds HealthThresholds) HealthEngine {
	return &healthEngine{thresholds: thresholds}
}

// Evaluate checks all health conditions, returning triggered findings
// in a stable order: cycles, dangling requirements, stale locks, stale
// in-progress tasks, then overflowing ready queues.
func (he *healthEngine) Evaluate(snap *models.BoardSnapshot) ([]Finding, error) {
	if snap == nil {
		return nil, fmt.Errorf("evaluating board health: snapshot is nil")
	}
	now := time.Now().UTC()

	tasks := make(map[string]*models.Task, len(snap.Tasks))
	order := make([]string, 0, len(snap.Tasks))
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if _, dup := tasks[t.ID]; dup {
			continue
		}
		tasks[t.ID] = t
		order = append(order, t.ID)
	}

	var findings []Finding
	findings = append(findings, he.checkCycles(tasks, order, now)...)
	findings = append(findings, he.checkDanglingRequires(tasks, order, now)...)
	findings = append(findings, he.checkStaleLocks(tasks, order, now)...)
	findings = append(findings, he.checkStaleInProgress(tasks, order, now)...)
	findings = append(findings, he.checkQueueOverflow(snap, now)...)
	return findings, nil
}

// checkCycles finds dependency cycles using DFS with coloring: white
// (unvisited), gray (in progress), black (done). Every back edge
// yields a cycle; cycles over the same member set are reported once.
func (he *healthEngine) checkCycles(tasks map[string]*models.Task, order []string, now time.Time) []Finding {
	adj := make(map[string][]string)
	for _, id := range order {
		for _, req := range tasks[id].Requires {
			if _, ok := tasks[req]; ok {
				adj[req] = append(adj[req], id)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)
	reported := make(map[string]bool)
	var findings []Finding

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, next := range adj[node] {
			if color[next] == gray {
				// Found a cycle: reconstruct it from the parent chain.
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}

				members := cycle[:len(cycle)-1]
				key := canonicalCycleKey(members)
				if !reported[key] {
					reported[key] = true
					findings = append(findings, Finding{
						ID:          "cycle-" + members[0],
						Condition:   "dependency_cycle",
						Severity:    SeverityHigh,
						Message:     fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")),
						Tasks:       append([]string(nil), members...),
						TriggeredAt: now,
					})
				}
				continue
			}
			if color[next] == white {
				parent[next] = node
				dfs(next)
			}
		}
		color[node] = black
	}

	for _, id := range order {
		if color[id] == white {
			dfs(id)
		}
	}
	return findings
}

// canonicalCycleKey builds a membership key so the same cycle entered
// from different nodes is only reported once.
func canonicalCycleKey(members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// checkDanglingRequires looks for tasks whose requirements name ids
// that are not on the board.
func (he *healthEngine) checkDanglingRequires(tasks map[string]*models.Task, order []string, now time.Time) []Finding {
	var findings []Finding
	for _, id := range order {
		var missing []string
		for _, req := range tasks[id].Requires {
			if _, ok := tasks[req]; !ok {
				missing = append(missing, req)
			}
		}
		if len(missing) > 0 {
			findings = append(findings, Finding{
				ID:          "dangling-" + id,
				Condition:   "dangling_requires",
				Severity:    SeverityLow,
				Message:     fmt.Sprintf("task %s has requirements not on the board: %s", id, strings.Join(missing, ", ")),
				Tasks:       []string{id},
				TriggeredAt: now,
			})
		}
	}
	return findings
}

// checkStaleLocks looks for tasks persisted as locked even though all
// of their requirements are met. The engine repairs these on load, so
// a hit means the board file was edited by hand or written by a stale
// process.
func (he *healthEngine) checkStaleLocks(tasks map[string]*models.Task, order []string, now time.Time) []Finding {
	var findings []Finding
	for _, id := range order {
		t := tasks[id]
		if t.Status != models.StatusLocked {
			continue
		}
		unmet := 0
		for _, req := range t.Requires {
			if dep, ok := tasks[req]; ok && dep.Status != models.StatusDone {
				unmet++
			}
		}
		if unmet == 0 {
			findings = append(findings, Finding{
				ID:          "stalelock-" + id,
				Condition:   "stale_lock",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %s is locked but all of its requirements are met", id),
				Tasks:       []string{id},
				TriggeredAt: now,
			})
		}
	}
	return findings
}

// checkStaleInProgress looks for in-progress tasks started longer ago
// than the threshold.
func (he *healthEngine) checkStaleInProgress(tasks map[string]*models.Task, order []string, now time.Time) []Finding {
	if he.thresholds.StaleDays <= 0 {
		return nil
	}
	threshold := time.Duration(he.thresholds.StaleDays) * 24 * time.Hour

	var findings []Finding
	for _, id := range order {
		t := tasks[id]
		if t.Status != models.StatusInProgress {
			continue
		}
		ref := t.Created
		if t.StartedAt != nil {
			ref = *t.StartedAt
		}
		if now.Sub(ref) > threshold {
			findings = append(findings, Finding{
				ID:          "stale-" + id,
				Condition:   "stale_in_progress",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %s has been in progress for more than %d days", id, he.thresholds.StaleDays),
				Tasks:       []string{id},
				TriggeredAt: now,
			})
		}
	}
	return findings
}

// checkQueueOverflow counts ready tasks per sector and flags sectors
// over the threshold.
func (he *healthEngine) checkQueueOverflow(snap *models.BoardSnapshot, now time.Time) []Finding {
	if he.thresholds.MaxReady <= 0 {
		return nil
	}

	readyBySector := make(map[string][]string)
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if t.Status == models.StatusReady {
			readyBySector[t.Sector] = append(readyBySector[t.Sector], t.ID)
		}
	}

	var findings []Finding
	for _, sector := range snap.Sectors {
		ready := readyBySector[sector.ID]
		if len(ready) > he.thresholds.MaxReady {
			findings = append(findings, Finding{
				ID:          "queue-" + sector.ID,
				Condition:   "ready_queue_overflow",
				Severity:    SeverityLow,
				Message:     fmt.Sprintf("sector %s has %d ready tasks, exceeding the maximum of %d", sector.ID, len(ready), he.thresholds.MaxReady),
				Tasks:       ready,
				TriggeredAt: now,
			})
		}
	}
	return findings
}
