// Package storage handles persistence of the production board: a
// single YAML file holding the full board snapshot.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gb2b/prodboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrNoBoard indicates the board file does not exist yet.
var ErrNoBoard = errors.New("no board file")

// BoardStore defines the interface for loading and saving board
// snapshots.
type BoardStore interface {
	// Load reads the board file. The error wraps ErrNoBoard when the
	// file does not exist.
	Load() (*models.BoardSnapshot, error)
	// Save writes the snapshot, creating parent directories as needed.
	Save(snap *models.BoardSnapshot) error
	// Exists reports whether the board file is present.
	Exists() bool
	// Path returns the board file path.
	Path() string
}

// yamlBoardStore implements BoardStore on a single YAML file.
type yamlBoardStore struct {
	path string
}

// NewBoardStore creates a BoardStore backed by the YAML file at path.
func NewBoardStore(path string) BoardStore {
	return &yamlBoardStore{path: path}
}

// Load reads and parses the board file.
func (s *yamlBoardStore) Load() (*models.BoardSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoBoard, s.path)
		}
		return nil, fmt.Errorf("reading board file %s: %w", s.path, err)
	}

	var snap models.BoardSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing board file %s: %w", s.path, err)
	}

	switch snap.Version {
	case "", models.SnapshotVersion:
		snap.Version = models.SnapshotVersion
	default:
		return nil, fmt.Errorf("board file %s has unsupported version %q", s.path, snap.Version)
	}

	return &snap, nil
}

// Save marshals the snapshot and writes it to the board file.
func (s *yamlBoardStore) Save(snap *models.BoardSnapshot) error {
	if snap == nil {
		return fmt.Errorf("saving board file %s: snapshot is nil", s.path)
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling board snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating board directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing board file %s: %w", s.path, err)
	}
	return nil
}

// Exists reports whether the board file is present on disk.
func (s *yamlBoardStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the board file path.
func (s *yamlBoardStore) Path() string {
	return s.path
}
