package cli

import (
	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/internal/observability"
	"github.com/gb2b/prodboard/internal/service"
)

// Shared service instances, set during app initialization in app.go.
var (
	// BasePath is the resolved board directory.
	BasePath string

	// Config is the loaded board configuration.
	Config *core.BoardConfig

	// Svc is the board service all commands go through.
	Svc *service.Service
)

// Observability instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Health      observability.HealthEngine
	Notify      observability.Notifier
)
