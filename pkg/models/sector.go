package models

// Sector is a named work category that partitions the board into queues.
// Sectors are immutable after creation and do not participate in
// dependency resolution.
type Sector struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon,omitempty"`
	Color string `yaml:"color,omitempty"`
}
