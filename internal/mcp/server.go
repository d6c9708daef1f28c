// Package mcp provides an MCP (Model Context Protocol) server that
// exposes the production board as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/internal/layout"
	"github.com/gb2b/prodboard/internal/observability"
	"github.com/gb2b/prodboard/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// BoardService is the subset of the service layer the MCP server needs.
// Defining it here keeps the server testable against fakes.
type BoardService interface {
	AddTask(sectorID, title string, opts core.AddTaskOpts) (*core.Result, error)
	AddSubtask(parentID, title string, opts core.AddTaskOpts) (*core.Result, error)
	StartTask(id, actor string) (*core.Result, error)
	CompleteTask(id, actor string) (*core.Result, error)
	ReopenTask(id, actor string) (*core.Result, error)
	MoveTask(id, sectorID, actor string) (*core.Result, error)
	AddDependency(id, requiresID, actor string) (*core.Result, error)
	RemoveDependency(id, requiresID, actor string) (*core.Result, error)
	Task(id string) (*models.Task, error)
	Tasks() ([]*models.Task, error)
	TasksBySector(sectorID string) ([]*models.Task, error)
	Suggest(maxAlternatives int) (*core.Suggestion, error)
	Snapshot() (*models.BoardSnapshot, error)
}

// Config carries presentation settings for the diagram and suggestion
// tools.
type Config struct {
	Layout       layout.Options
	Alternatives int
}

// Server wraps the board service and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	svc         BoardService
	metricsCalc observability.MetricsCalculator
	health      observability.HealthEngine
	cfg         Config
}

// NewServer creates a new MCP server with the given board service
// dependencies. metricsCalc and health may be nil if observability is
// disabled.
func NewServer(svc BoardService, metricsCalc observability.MetricsCalculator, health observability.HealthEngine, cfg Config, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		svc:         svc,
		metricsCalc: metricsCalc,
		health:      health,
		cfg:         cfg,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "prodboard", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type addTaskInput struct {
	Sector      string   `json:"sector,omitempty" jsonschema:"sector id for the new task. Required unless parent is set."`
	Title       string   `json:"title" jsonschema:"required,short title of the task"`
	Description string   `json:"description,omitempty" jsonschema:"longer free-form description"`
	Priority    string   `json:"priority,omitempty" jsonschema:"task priority (critical, high, medium, low). Defaults to medium."`
	Requires    []string `json:"requires,omitempty" jsonschema:"task ids that must be done before this task unlocks"`
	Parent      string   `json:"parent,omitempty" jsonschema:"parent task id; when set the task is created as a subtask in the parent's sector"`
	Agent       string   `json:"agent,omitempty" jsonschema:"agent or team member the task is assigned to"`
	Actor       string   `json:"actor,omitempty" jsonschema:"who performs the action, recorded in task history"`
}

type taskActionInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier (e.g. TASK-00042)"`
	Actor  string `json:"actor,omitempty" jsonschema:"who performs the action, recorded in task history"`
}

type moveTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier (e.g. TASK-00042)"`
	Sector string `json:"sector" jsonschema:"required,the sector id to move the task to"`
	Actor  string `json:"actor,omitempty" jsonschema:"who performs the action, recorded in task history"`
}

type dependencyInput struct {
	TaskID   string `json:"task_id" jsonschema:"required,the dependent task"`
	Requires string `json:"requires" jsonschema:"required,the task that must be done first"`
	Actor    string `json:"actor,omitempty" jsonschema:"who performs the action, recorded in task history"`
}

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier (e.g. TASK-00042)"`
}

type listTasksInput struct {
	Sector string `json:"sector,omitempty" jsonschema:"filter tasks by sector id"`
	Status string `json:"status,omitempty" jsonschema:"filter tasks by status (locked, ready, in_progress, done)"`
}

type suggestTaskInput struct {
	Alternatives int `json:"alternatives,omitempty" jsonschema:"maximum number of alternative picks to return. Defaults to the configured value."`
}

type boardDiagramInput struct{}

type boardHealthInput struct{}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type taskOutput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Sector      string   `json:"sector"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Requires    []string `json:"requires,omitempty"`
	Parent      string   `json:"parent,omitempty"`
	Agent       string   `json:"agent,omitempty"`
	Iteration   int      `json:"iteration,omitempty"`
	Created     string   `json:"created"`
	StartedAt   string   `json:"started_at,omitempty"`
	CompletedAt string   `json:"completed_at,omitempty"`
}

type mutationOutput struct {
	Task     taskOutput   `json:"task"`
	Affected []taskOutput `json:"affected,omitempty"`
	Message  string       `json:"message"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type suggestTaskOutput struct {
	Task         taskOutput   `json:"task"`
	Alternatives []taskOutput `json:"alternatives,omitempty"`
}

type diagramNodeOutput struct {
	TaskID string `json:"task_id"`
	Level  int    `json:"level"`
	Index  int    `json:"index"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type diagramEdgeOutput struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type boardDiagramOutput struct {
	Nodes  []diagramNodeOutput `json:"nodes"`
	Edges  []diagramEdgeOutput `json:"edges"`
	Levels int                 `json:"levels"`
}

type findingOutput struct {
	ID          string   `json:"id"`
	Condition   string   `json:"condition"`
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Tasks       []string `json:"tasks,omitempty"`
	TriggeredAt string   `json:"triggered_at"`
}

type boardHealthOutput struct {
	Findings []findingOutput `json:"findings"`
	Count    int             `json:"count"`
}

type metricsOutput struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksReopened  int            `json:"tasks_reopened"`
	TasksBySector  map[string]int `json:"tasks_by_sector"`
	EventsByType   map[string]int `json:"events_by_type"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Create a task on the board. The task starts locked if any required task is not done, ready otherwise. Set parent to create a subtask instead.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_task",
		Description: "Start working on a ready task, moving it to in_progress. Locked tasks cannot be started.",
	}, s.handleStartTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Complete a ready or in_progress task. Dependents whose requirements are now all met unlock and are returned in affected.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "reopen_task",
		Description: "Reopen a done task, returning it to the available pool and relocking dependents that were ready.",
	}, s.handleReopenTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "move_task",
		Description: "Move a task to another sector. Status and history are preserved.",
	}, s.handleMoveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_dependency",
		Description: "Record that a task requires another task to be done first. Cycles are tolerated and surfaced by board_health.",
	}, s.handleAddDependency)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "remove_dependency",
		Description: "Remove a requirement from a task. Works for requirements naming tasks no longer on the board.",
	}, s.handleRemoveDependency)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get task details by ID, including status, dependencies, and timestamps.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with optional sector and status filters. Returns tasks in board order.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "suggest_task",
		Description: "Suggest the next task to work on: the highest-priority ready task, with alternatives of the same or adjacent priority.",
	}, s.handleSuggestTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "board_diagram",
		Description: "Compute the dependency diagram layout: tasks placed in columns by dependency depth, with all dependency edges.",
	}, s.handleBoardDiagram)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "board_health",
		Description: "Evaluate board health findings: dependency cycles, dangling requirements, stale locks, stale in-progress tasks, and overflowing ready queues.",
	}, s.handleBoardHealth)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log, including task counts and events by type.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.Title == "" {
		return errorResult("title is required"), mutationOutput{}, nil
	}
	if input.Parent == "" && input.Sector == "" {
		return errorResult("sector is required unless parent is set"), mutationOutput{}, nil
	}

	opts := core.AddTaskOpts{
		Description: input.Description,
		Priority:    models.Priority(input.Priority),
		Requires:    input.Requires,
		Agent:       input.Agent,
		Actor:       input.Actor,
	}

	var res *core.Result
	var err error
	if input.Parent != "" {
		res, err = s.svc.AddSubtask(input.Parent, input.Title, opts)
	} else {
		res, err = s.svc.AddTask(input.Sector, input.Title, opts)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), mutationOutput{}, nil
	}

	out := mutationOutput{
		Task:     taskToOutput(res.Task),
		Affected: tasksToOutputs(res.Affected),
		Message:  fmt.Sprintf("task %s created with status %s", res.Task.ID, res.Task.Status),
	}
	return nil, out, nil
}

func (s *Server) handleStartTask(_ context.Context, _ *gomcp.CallToolRequest, input taskActionInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), mutationOutput{}, nil
	}

	res, err := s.svc.StartTask(input.TaskID, input.Actor)
	if err != nil {
		return errorResult(fmt.Sprintf("starting task %s: %s", input.TaskID, err)), mutationOutput{}, nil
	}

	out := mutationOutput{
		Task:    taskToOutput(res.Task),
		Message: fmt.Sprintf("task %s started", res.Task.ID),
	}
	return nil, out, nil
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskActionInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), mutationOutput{}, nil
	}

	res, err := s.svc.CompleteTask(input.TaskID, input.Actor)
	if err != nil {
		return errorResult(fmt.Sprintf("completing task %s: %s", input.TaskID, err)), mutationOutput{}, nil
	}

	msg := fmt.Sprintf("task %s completed", res.Task.ID)
	if len(res.Affected) > 0 {
		msg += "; unlocked " + strings.Join(idsOf(res.Affected), ", ")
	}
	out := mutationOutput{
		Task:     taskToOutput(res.Task),
		Affected: tasksToOutputs(res.Affected),
		Message:  msg,
	}
	return nil, out, nil
}

func (s *Server) handleReopenTask(_ context.Context, _ *gomcp.CallToolRequest, input taskActionInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), mutationOutput{}, nil
	}

	res, err := s.svc.ReopenTask(input.TaskID, input.Actor)
	if err != nil {
		return errorResult(fmt.Sprintf("reopening task %s: %s", input.TaskID, err)), mutationOutput{}, nil
	}

	msg := fmt.Sprintf("task %s reopened (iteration %d)", res.Task.ID, res.Task.Iteration)
	if len(res.Affected) > 0 {
		msg += "; relocked " + strings.Join(idsOf(res.Affected), ", ")
	}
	out := mutationOutput{
		Task:     taskToOutput(res.Task),
		Affected: tasksToOutputs(res.Affected),
		Message:  msg,
	}
	return nil, out, nil
}

func (s *Server) handleMoveTask(_ context.Context, _ *gomcp.CallToolRequest, input moveTaskInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), mutationOutput{}, nil
	}
	if input.Sector == "" {
		return errorResult("sector is required"), mutationOutput{}, nil
	}

	res, err := s.svc.MoveTask(input.TaskID, input.Sector, input.Actor)
	if err != nil {
		return errorResult(fmt.Sprintf("moving task %s: %s", input.TaskID, err)), mutationOutput{}, nil
	}

	out := mutationOutput{
		Task:    taskToOutput(res.Task),
		Message: fmt.Sprintf("task %s moved to %s", res.Task.ID, input.Sector),
	}
	return nil, out, nil
}

func (s *Server) handleAddDependency(_ context.Context, _ *gomcp.CallToolRequest, input dependencyInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.TaskID == "" || input.Requires == "" {
		return errorResult("task_id and requires are required"), mutationOutput{}, nil
	}

	res, err := s.svc.AddDependency(input.TaskID, input.Requires, input.Actor)
	if err != nil {
		return errorResult(fmt.Sprintf("adding dependency: %s", err)), mutationOutput{}, nil
	}

	out := mutationOutput{
		Task:    taskToOutput(res.Task),
		Message: fmt.Sprintf("task %s now requires %s (status %s)", res.Task.ID, input.Requires, res.Task.Status),
	}
	return nil, out, nil
}

func (s *Server) handleRemoveDependency(_ context.Context, _ *gomcp.CallToolRequest, input dependencyInput) (*gomcp.CallToolResult, mutationOutput, error) {
	if input.TaskID == "" || input.Requires == "" {
		return errorResult("task_id and requires are required"), mutationOutput{}, nil
	}

	res, err := s.svc.RemoveDependency(input.TaskID, input.Requires, input.Actor)
	if err != nil {
		return errorResult(fmt.Sprintf("removing dependency: %s", err)), mutationOutput{}, nil
	}

	out := mutationOutput{
		Task:    taskToOutput(res.Task),
		Message: fmt.Sprintf("task %s no longer requires %s (status %s)", res.Task.ID, input.Requires, res.Task.Status),
	}
	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.svc.Task(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}

	return nil, taskToOutput(task), nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	if input.Status != "" && !models.TaskStatus(input.Status).Valid() {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of locked, ready, in_progress, done", input.Status)), listTasksOutput{}, nil
	}

	var tasks []*models.Task
	var err error
	if input.Sector != "" {
		tasks, err = s.svc.TasksBySector(input.Sector)
	} else {
		tasks, err = s.svc.Tasks()
	}
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}

	out := listTasksOutput{Tasks: []taskOutput{}}
	for _, t := range tasks {
		if input.Status != "" && string(t.Status) != input.Status {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(t))
	}
	out.Count = len(out.Tasks)

	return nil, out, nil
}

func (s *Server) handleSuggestTask(_ context.Context, _ *gomcp.CallToolRequest, input suggestTaskInput) (*gomcp.CallToolResult, suggestTaskOutput, error) {
	alternatives := input.Alternatives
	if alternatives <= 0 {
		alternatives = s.cfg.Alternatives
	}

	suggestion, err := s.svc.Suggest(alternatives)
	if err != nil {
		return errorResult(fmt.Sprintf("suggesting task: %s", err)), suggestTaskOutput{}, nil
	}

	out := suggestTaskOutput{
		Task:         taskToOutput(suggestion.Task),
		Alternatives: tasksToOutputs(suggestion.Alternatives),
	}
	return nil, out, nil
}

func (s *Server) handleBoardDiagram(_ context.Context, _ *gomcp.CallToolRequest, _ boardDiagramInput) (*gomcp.CallToolResult, boardDiagramOutput, error) {
	tasks, err := s.svc.Tasks()
	if err != nil {
		return errorResult(fmt.Sprintf("computing diagram: %s", err)), boardDiagramOutput{}, nil
	}

	diagram := layout.Compute(tasks, s.cfg.Layout)

	out := boardDiagramOutput{
		Nodes:  make([]diagramNodeOutput, len(diagram.Nodes)),
		Edges:  make([]diagramEdgeOutput, len(diagram.Edges)),
		Levels: diagram.Levels,
	}
	for i, n := range diagram.Nodes {
		out.Nodes[i] = diagramNodeOutput{
			TaskID: n.TaskID,
			Level:  n.Level,
			Index:  n.Index,
			X:      n.X,
			Y:      n.Y,
		}
	}
	for i, e := range diagram.Edges {
		out.Edges[i] = diagramEdgeOutput{From: e.From, To: e.To}
	}

	return nil, out, nil
}

func (s *Server) handleBoardHealth(_ context.Context, _ *gomcp.CallToolRequest, _ boardHealthInput) (*gomcp.CallToolResult, boardHealthOutput, error) {
	if s.health == nil {
		return errorResult("health engine not available (observability may be disabled)"), boardHealthOutput{}, nil
	}

	snap, err := s.svc.Snapshot()
	if err != nil {
		return errorResult(fmt.Sprintf("reading board: %s", err)), boardHealthOutput{}, nil
	}

	findings, err := s.health.Evaluate(snap)
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating board health: %s", err)), boardHealthOutput{}, nil
	}

	out := boardHealthOutput{
		Findings: make([]findingOutput, len(findings)),
		Count:    len(findings),
	}
	for i, f := range findings {
		out.Findings[i] = findingOutput{
			ID:          f.ID,
			Condition:   f.Condition,
			Severity:    string(f.Severity),
			Message:     f.Message,
			Tasks:       f.Tasks,
			TriggeredAt: f.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksCompleted: metrics.TasksCompleted,
		TasksReopened:  metrics.TasksReopened,
		TasksBySector:  metrics.TasksBySector,
		EventsByType:   metrics.EventsByType,
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t *models.Task) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Sector:      t.Sector,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Requires:    t.Requires,
		Parent:      t.ParentID,
		Agent:       t.Agent,
		Iteration:   t.Iteration,
		Created:     t.Created.Format(time.RFC3339),
	}
	if t.StartedAt != nil {
		out.StartedAt = t.StartedAt.Format(time.RFC3339)
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func tasksToOutputs(tasks []*models.Task) []taskOutput {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]taskOutput, len(tasks))
	for i, t := range tasks {
		out[i] = taskToOutput(t)
	}
	return out
}

func idsOf(tasks []*models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		TasksBySector: make(map[string]int),
		EventsByType:  make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
