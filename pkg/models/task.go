package models

import "time"

// TaskStatus represents the current lifecycle state of a task.
// Tasks move locked -> ready -> in_progress -> done; the only backward
// edge is done -> ready via reopen.
type TaskStatus string

const (
	StatusLocked     TaskStatus = "locked"
	StatusReady      TaskStatus = "ready"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the four lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusLocked, StatusReady, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is one of the four priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the sort rank of a priority: critical is 0 (most urgent),
// low is 3. Unknown priorities rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// HistoryAction identifies the kind of state-affecting action recorded in
// a task's history log.
type HistoryAction string

const (
	ActionCreated           HistoryAction = "created"
	ActionStarted           HistoryAction = "started"
	ActionDone              HistoryAction = "done"
	ActionReopened          HistoryAction = "reopened"
	ActionMoved             HistoryAction = "moved"
	ActionUpdated           HistoryAction = "updated"
	ActionDependencyAdded   HistoryAction = "dependency_added"
	ActionDependencyRemoved HistoryAction = "dependency_removed"
	ActionSubtaskAdded      HistoryAction = "subtask_added"
)

// HistoryEntry is an immutable audit record of one action taken on a task.
// Entries are only ever appended, never edited or removed.
type HistoryEntry struct {
	Action   HistoryAction `yaml:"action"`
	At       time.Time     `yaml:"at"`
	Actor    string        `yaml:"actor"`
	Note     string        `yaml:"note,omitempty"`
	ToSector string        `yaml:"to_sector,omitempty"`
}

// Task represents a unit of production work. Its availability is derived
// from the completion state of the tasks listed in Requires.
type Task struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	Sector      string         `yaml:"sector"`
	Priority    Priority       `yaml:"priority"`
	Status      TaskStatus     `yaml:"status"`
	Requires    []string       `yaml:"requires,omitempty"`
	ParentID    string         `yaml:"parent_id,omitempty"`
	IsParent    bool           `yaml:"is_parent,omitempty"`
	Agent       string         `yaml:"agent,omitempty"`
	History     []HistoryEntry `yaml:"history"`
	Created     time.Time      `yaml:"created"`
	StartedAt   *time.Time     `yaml:"started_at,omitempty"`
	CompletedAt *time.Time     `yaml:"completed_at,omitempty"`
	Iteration   int            `yaml:"iteration"`
}

// Clone returns a deep copy of the task. Mutating the copy (including its
// Requires list and History log) never affects the original.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Requires != nil {
		c.Requires = make([]string, len(t.Requires))
		copy(c.Requires, t.Requires)
	}
	if t.History != nil {
		c.History = make([]HistoryEntry, len(t.History))
		copy(c.History, t.History)
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		c.CompletedAt = &completed
	}
	return &c
}

// RequiresID reports whether id appears in the task's Requires list.
func (t *Task) RequiresID(id string) bool {
	for _, r := range t.Requires {
		if r == id {
			return true
		}
	}
	return false
}
