// Package internal provides the App struct that wires all components of the
// production board together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gb2b/prodboard/internal/cli"
	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/internal/observability"
	"github.com/gb2b/prodboard/internal/service"
	"github.com/gb2b/prodboard/internal/storage"
)

// App holds all service dependencies for the production board.
type App struct {
	BasePath string

	// Configuration
	Config *core.BoardConfig

	// Storage layer
	Store storage.BoardStore

	// Board service
	Svc *service.Service

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Health      observability.HealthEngine
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the production board.
// basePath is the directory holding the board file (typically the
// directory containing .boardrc.yaml, or the current directory).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	cfg, err := core.LoadBoardConfig(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading board config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.Store = storage.NewBoardStore(filepath.Join(basePath, cfg.BoardFile))

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".board_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable the audit trail if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	thresholds := observability.DefaultHealthThresholds()
	if cfg.Alerts.StaleDays > 0 {
		thresholds.StaleDays = cfg.Alerts.StaleDays
	}
	if cfg.Alerts.MaxReady > 0 {
		thresholds.MaxReady = cfg.Alerts.MaxReady
	}
	app.Health = observability.NewHealthEngine(thresholds)
	if cfg.Alerts.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Alerts.WebhookURL)
	}

	// --- Board service ---
	app.Svc = service.New(app.Store, app.EventLog, core.Options{
		IDPrefix:   cfg.TaskIDPrefix,
		IDPadWidth: cfg.TaskIDPadWidth,
		Actor:      cfg.Actor,
	})

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.Svc = app.Svc
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Health = app.Health
	cli.Notify = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory holding the board file.
// It checks the PRODBOARD_HOME env var, then walks up from the current
// directory looking for .boardrc.yaml, and falls back to the current
// directory.
func ResolveBasePath() string {
	if home := os.Getenv("PRODBOARD_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".boardrc.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
