package models

// SnapshotVersion is the current board snapshot schema version.
const SnapshotVersion = "1"

// BoardSnapshot is the full serializable state of a board: every sector
// and every task with all of its fields. The order of Tasks is the board
// order and carries the ready-queue ordering across round-trips.
type BoardSnapshot struct {
	Version string   `yaml:"version"`
	Sectors []Sector `yaml:"sectors"`
	Tasks   []Task   `yaml:"tasks"`
}

// Clone returns a deep copy of the snapshot.
func (s *BoardSnapshot) Clone() *BoardSnapshot {
	if s == nil {
		return nil
	}
	c := &BoardSnapshot{
		Version: s.Version,
		Sectors: make([]Sector, len(s.Sectors)),
		Tasks:   make([]Task, len(s.Tasks)),
	}
	copy(c.Sectors, s.Sectors)
	for i := range s.Tasks {
		c.Tasks[i] = *s.Tasks[i].Clone()
	}
	return c
}
