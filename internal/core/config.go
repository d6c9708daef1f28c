package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gb2b/prodboard/pkg/models"
	"github.com/spf13/viper"
)

// validPrefixPattern matches uppercase alphanumeric prefixes between 1 and 10 characters.
var validPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// LayoutConfig holds the cell geometry used when placing tasks on the
// dependency diagram.
type LayoutConfig struct {
	NodeWidth  int
	NodeHeight int
	GapX       int
	GapY       int
}

// AlertsConfig holds the thresholds used by board health checks.
type AlertsConfig struct {
	// StaleDays flags in_progress tasks untouched for this many days.
	// Zero disables the check.
	StaleDays int
	// MaxReady flags sectors whose ready queue exceeds this size.
	// Zero disables the check.
	MaxReady int
	// WebhookURL, when set, is the Slack webhook health findings are
	// posted to.
	WebhookURL string
}

// BoardConfig is the merged configuration for a board workspace, read
// from a .boardrc file next to the board.
type BoardConfig struct {
	Actor          string
	TaskIDPrefix   string
	TaskIDPadWidth int
	BoardFile      string
	Alternatives   int
	Sectors        []models.Sector
	Layout         LayoutConfig
	Alerts         AlertsConfig
}

// DefaultSectors returns the sectors a fresh board is initialized with
// when the configuration does not name any.
func DefaultSectors() []models.Sector {
	return []models.Sector{
		{ID: "design", Name: "Design", Icon: "✏", Color: "12"},
		{ID: "gameplay", Name: "Gameplay", Icon: "🕹", Color: "10"},
		{ID: "art", Name: "Art", Icon: "🎨", Color: "13"},
		{ID: "audio", Name: "Audio", Icon: "🎧", Color: "11"},
		{ID: "qa", Name: "QA", Icon: "🐞", Color: "9"},
	}
}

// defaultBoardConfig returns a BoardConfig populated with sensible defaults.
func defaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Actor:          "producer",
		TaskIDPrefix:   "TASK",
		TaskIDPadWidth: 5,
		BoardFile:      "production.board.yaml",
		Alternatives:   3,
		Sectors:        DefaultSectors(),
		Layout: LayoutConfig{
			NodeWidth:  22,
			NodeHeight: 5,
			GapX:       8,
			GapY:       1,
		},
		Alerts: AlertsConfig{
			StaleDays: 14,
			MaxReady:  10,
		},
	}
}

// LoadBoardConfig reads the .boardrc file from the base path using
// Viper. If the file does not exist, sensible defaults are returned.
func LoadBoardConfig(basePath string) (*BoardConfig, error) {
	cfg := defaultBoardConfig()

	v := viper.New()
	v.SetConfigName(".boardrc")
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("actor", cfg.Actor)
	v.SetDefault("task_id.prefix", cfg.TaskIDPrefix)
	v.SetDefault("task_id.pad_width", cfg.TaskIDPadWidth)
	v.SetDefault("board_file", cfg.BoardFile)
	v.SetDefault("suggestion.alternatives", cfg.Alternatives)
	v.SetDefault("layout.node_width", cfg.Layout.NodeWidth)
	v.SetDefault("layout.node_height", cfg.Layout.NodeHeight)
	v.SetDefault("layout.gap_x", cfg.Layout.GapX)
	v.SetDefault("layout.gap_y", cfg.Layout.GapY)
	v.SetDefault("alerts.stale_days", cfg.Alerts.StaleDays)
	v.SetDefault("alerts.max_ready", cfg.Alerts.MaxReady)
	v.SetDefault("alerts.webhook_url", cfg.Alerts.WebhookURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found: run on defaults.
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .boardrc: %w", err)
	}

	cfg.Actor = v.GetString("actor")
	cfg.TaskIDPrefix = v.GetString("task_id.prefix")
	cfg.BoardFile = v.GetString("board_file")
	cfg.Alternatives = v.GetInt("suggestion.alternatives")
	cfg.Layout.NodeWidth = v.GetInt("layout.node_width")
	cfg.Layout.NodeHeight = v.GetInt("layout.node_height")
	cfg.Layout.GapX = v.GetInt("layout.gap_x")
	cfg.Layout.GapY = v.GetInt("layout.gap_y")
	cfg.Alerts.StaleDays = v.GetInt("alerts.stale_days")
	cfg.Alerts.MaxReady = v.GetInt("alerts.max_ready")
	cfg.Alerts.WebhookURL = v.GetString("alerts.webhook_url")

	// Use IsSet to distinguish "not set" (use default 5) from "explicitly set to 0".
	if v.IsSet("task_id.pad_width") {
		cfg.TaskIDPadWidth = v.GetInt("task_id.pad_width")
	}

	// Parse the sectors section; the defaults apply only when the file
	// names no sectors at all.
	var sectors []models.Sector
	if raw := v.Get("sectors"); raw != nil {
		if rawSlice, ok := raw.([]interface{}); ok {
			for _, item := range rawSlice {
				m, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				sector := models.Sector{}
				if id, ok := m["id"].(string); ok {
					sector.ID = id
				}
				if name, ok := m["name"].(string); ok {
					sector.Name = name
				}
				if icon, ok := m["icon"].(string); ok {
					sector.Icon = icon
				}
				if color, ok := m["color"].(string); ok {
					sector.Color = color
				}
				sectors = append(sectors, sector)
			}
		}
	}
	if len(sectors) > 0 {
		cfg.Sectors = sectors
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cfg *BoardConfig) Validate() error {
	if cfg == nil {
		return fmt.Errorf("board configuration is nil")
	}

	var errs []string

	if cfg.TaskIDPrefix == "" {
		errs = append(errs, "task_id.prefix must not be empty")
	} else if !validPrefixPattern.MatchString(cfg.TaskIDPrefix) {
		errs = append(errs, fmt.Sprintf(
			"task_id.prefix %q is invalid, must match [A-Z0-9]{1,10}",
			cfg.TaskIDPrefix,
		))
	}

	if cfg.TaskIDPadWidth < 0 || cfg.TaskIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"task_id.pad_width %d is invalid, must be between 0 and 10",
			cfg.TaskIDPadWidth,
		))
	}

	if cfg.BoardFile == "" {
		errs = append(errs, "board_file must not be empty")
	}

	if cfg.Alternatives < 0 {
		errs = append(errs, fmt.Sprintf(
			"suggestion.alternatives must be non-negative, got %d",
			cfg.Alternatives,
		))
	}

	if cfg.Layout.NodeWidth <= 0 || cfg.Layout.NodeHeight <= 0 {
		errs = append(errs, "layout node dimensions must be positive")
	}
	if cfg.Layout.GapX < 0 || cfg.Layout.GapY < 0 {
		errs = append(errs, "layout gaps must be non-negative")
	}

	if cfg.Alerts.StaleDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.stale_days must be non-negative, got %d", cfg.Alerts.StaleDays))
	}
	if cfg.Alerts.MaxReady < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_ready must be non-negative, got %d", cfg.Alerts.MaxReady))
	}

	if len(cfg.Sectors) == 0 {
		errs = append(errs, "at least one sector must be configured")
	}
	seen := make(map[string]bool, len(cfg.Sectors))
	for _, s := range cfg.Sectors {
		switch {
		case s.ID == "":
			errs = append(errs, "sectors entries must have an id")
		case seen[s.ID]:
			errs = append(errs, fmt.Sprintf("duplicate sector id %q", s.ID))
		default:
			seen[s.ID] = true
		}
		if s.ID != "" && s.Name == "" {
			errs = append(errs, fmt.Sprintf("sector %q has no name", s.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("board config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
