package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadBoardConfig_Defaults(t *testing.T) {
	cfg, err := LoadBoardConfig(t.TempDir())
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Actor != "producer" {
		t.Errorf("expected default actor producer, got %q", cfg.Actor)
	}
	if cfg.TaskIDPrefix != "TASK" || cfg.TaskIDPadWidth != 5 {
		t.Errorf("expected default id scheme, got %s/%d", cfg.TaskIDPrefix, cfg.TaskIDPadWidth)
	}
	if cfg.BoardFile != "production.board.yaml" {
		t.Errorf("expected default board file, got %q", cfg.BoardFile)
	}
	if len(cfg.Sectors) == 0 {
		t.Error("expected default sectors")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadBoardConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `actor: lead-producer
task_id:
  prefix: GAME
  pad_width: 4
board_file: board.yaml
suggestion:
  alternatives: 5
layout:
  node_width: 30
  gap_x: 10
alerts:
  stale_days: 7
  max_ready: 4
sectors:
  - id: gameplay
    name: Gameplay
    icon: "G"
    color: "10"
  - id: art
    name: Art
`
	if err := os.WriteFile(filepath.Join(dir, ".boardrc.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadBoardConfig(dir)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Actor != "lead-producer" {
		t.Errorf("actor = %q", cfg.Actor)
	}
	if cfg.TaskIDPrefix != "GAME" || cfg.TaskIDPadWidth != 4 {
		t.Errorf("id scheme = %s/%d", cfg.TaskIDPrefix, cfg.TaskIDPadWidth)
	}
	if cfg.BoardFile != "board.yaml" {
		t.Errorf("board_file = %q", cfg.BoardFile)
	}
	if cfg.Alternatives != 5 {
		t.Errorf("alternatives = %d", cfg.Alternatives)
	}
	if cfg.Layout.NodeWidth != 30 || cfg.Layout.GapX != 10 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	// Keys the file omits keep their defaults.
	if cfg.Layout.NodeHeight != 5 {
		t.Errorf("node_height should default to 5, got %d", cfg.Layout.NodeHeight)
	}
	if cfg.Alerts.StaleDays != 7 || cfg.Alerts.MaxReady != 4 {
		t.Errorf("alerts = %+v", cfg.Alerts)
	}
	if len(cfg.Sectors) != 2 {
		t.Fatalf("sectors = %+v", cfg.Sectors)
	}
	if cfg.Sectors[0].ID != "gameplay" || cfg.Sectors[0].Icon != "G" {
		t.Errorf("sector[0] = %+v", cfg.Sectors[0])
	}
}

func TestLoadBoardConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".boardrc.yaml"), []byte("actor: [unclosed"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadBoardConfig(dir); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}

func TestBoardConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *BoardConfig)
		wantMsg string
	}{
		{
			name:    "empty prefix",
			mutate:  func(cfg *BoardConfig) { cfg.TaskIDPrefix = "" },
			wantMsg: "task_id.prefix",
		},
		{
			name:    "lowercase prefix",
			mutate:  func(cfg *BoardConfig) { cfg.TaskIDPrefix = "task" },
			wantMsg: "task_id.prefix",
		},
		{
			name:    "pad width out of range",
			mutate:  func(cfg *BoardConfig) { cfg.TaskIDPadWidth = 11 },
			wantMsg: "pad_width",
		},
		{
			name:    "empty board file",
			mutate:  func(cfg *BoardConfig) { cfg.BoardFile = "" },
			wantMsg: "board_file",
		},
		{
			name:    "negative alternatives",
			mutate:  func(cfg *BoardConfig) { cfg.Alternatives = -1 },
			wantMsg: "alternatives",
		},
		{
			name:    "zero node width",
			mutate:  func(cfg *BoardConfig) { cfg.Layout.NodeWidth = 0 },
			wantMsg: "node dimensions",
		},
		{
			name:    "no sectors",
			mutate:  func(cfg *BoardConfig) { cfg.Sectors = nil },
			wantMsg: "at least one sector",
		},
		{
			name:    "duplicate sector",
			mutate:  func(cfg *BoardConfig) { cfg.Sectors = append(cfg.Sectors, cfg.Sectors[0]) },
			wantMsg: "duplicate sector",
		},
		{
			name: "sector without name",
			mutate: func(cfg *BoardConfig) {
				cfg.Sectors[0].Name = ""
			},
			wantMsg: "has no name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultBoardConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestBoardConfig_ValidateCollectsAllProblems(t *testing.T) {
	cfg := defaultBoardConfig()
	cfg.TaskIDPrefix = ""
	cfg.BoardFile = ""
	cfg.Sectors = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"task_id.prefix", "board_file", "at least one sector"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
