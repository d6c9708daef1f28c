package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/internal/core"
	"github.com/gb2b/prodboard/internal/observability"
	"github.com/gb2b/prodboard/pkg/models"
)

// Board panel indices.
const (
	panelQueues = iota
	panelSuggestion
	panelHealth
	panelCount
)

type boardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	queues     []sectorQueue
	suggestion *core.Suggestion
	findings   []observability.Finding

	// State.
	loading bool
	err     error
}

// sectorQueue is one sector's ready queue plus its status counts.
type sectorQueue struct {
	sector models.Sector
	ready  []*models.Task
	counts map[models.TaskStatus]int
}

// boardDataMsg carries loaded data back to the model.
type boardDataMsg struct {
	queues     []sectorQueue
	suggestion *core.Suggestion
	findings   []observability.Finding
	err        error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusReadyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusLockedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDoneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBoardModel() boardModel {
	return boardModel{
		activePanel: panelQueues,
		loading:     true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return loadBoardData
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadBoardData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardDataMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.queues = msg.queues
		m.suggestion = msg.suggestion
		m.findings = msg.findings
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Production Board ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading board...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	queuesPanel := m.renderQueuesPanel()
	suggestionPanel := m.renderSuggestionPanel()
	healthPanel := m.renderHealthPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		queuesPanel = m.applyPanelStyle(panelQueues, queuesPanel, colWidth-4)
		suggestionPanel = m.applyPanelStyle(panelSuggestion, suggestionPanel, colWidth-4)
		healthPanel = m.applyPanelStyle(panelHealth, healthPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, queuesPanel, suggestionPanel, healthPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		queuesPanel = m.applyPanelStyle(panelQueues, queuesPanel, panelWidth)
		suggestionPanel = m.applyPanelStyle(panelSuggestion, suggestionPanel, panelWidth)
		healthPanel = m.applyPanelStyle(panelHealth, healthPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, queuesPanel, suggestionPanel, healthPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m boardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m boardModel) renderQueuesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Ready Queues"))
	b.WriteString("\n")

	if len(m.queues) == 0 {
		b.WriteString("  No sectors on the board.")
		return b.String()
	}

	for _, queue := range m.queues {
		b.WriteString(fmt.Sprintf("  %s %s", queue.sector.Icon, queue.sector.Name))
		b.WriteString(m.renderCounts(queue.counts))
		b.WriteString("\n")
		if len(queue.ready) == 0 {
			b.WriteString(statusLockedStyle.Render("    (queue empty)"))
			b.WriteString("\n")
			continue
		}
		for _, task := range queue.ready {
			line := fmt.Sprintf("    %-12s [%s] %s", task.ID, task.Priority, task.Title)
			b.WriteString(statusReadyStyle.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderCounts summarizes a sector's status counts inline, e.g. " (2 ready, 1 locked)".
func (m boardModel) renderCounts(counts map[models.TaskStatus]int) string {
	if len(counts) == 0 {
		return ""
	}
	order := []models.TaskStatus{
		models.StatusInProgress,
		models.StatusReady,
		models.StatusLocked,
		models.StatusDone,
	}
	var parts []string
	for _, status := range order {
		if c := counts[status]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, status))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func (m boardModel) renderSuggestionPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Next Up"))
	b.WriteString("\n")

	if m.suggestion == nil {
		b.WriteString("  No ready tasks to suggest.")
		return b.String()
	}

	task := m.suggestion.Task
	b.WriteString(statusReadyStyle.Render(fmt.Sprintf("  %s [%s]", task.ID, task.Priority)))
	b.WriteString(fmt.Sprintf("\n  %s\n", task.Title))
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("  %s\n", task.Description))
	}

	if len(m.suggestion.Alternatives) > 0 {
		b.WriteString("\n  Alternatives:\n")
		for _, alt := range m.suggestion.Alternatives {
			b.WriteString(fmt.Sprintf("    %-12s [%s] %s\n", alt.ID, alt.Priority, alt.Title))
		}
	}

	return b.String()
}

func (m boardModel) renderHealthPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Health"))
	b.WriteString("\n")

	if len(m.findings) == 0 {
		b.WriteString("  Board looks healthy.")
		return b.String()
	}

	for _, finding := range m.findings {
		sev := styleForSeverity(finding.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(finding.Severity))))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, finding.Message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d finding(s)", len(m.findings)))

	return b.String()
}

func styleForSeverity(severity observability.FindingSeverity) lipgloss.Style {
	switch severity {
	case observability.SeverityHigh:
		return severityHigh
	case observability.SeverityMedium:
		return severityMedium
	case observability.SeverityLow:
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadBoardData() tea.Msg {
	var result boardDataMsg

	if Svc == nil {
		result.err = fmt.Errorf("board service not initialized")
		return result
	}

	sectors, err := Svc.Sectors()
	if err != nil {
		result.err = fmt.Errorf("loading sectors: %w", err)
		return result
	}

	for _, sector := range sectors {
		queue, err := Svc.ReadyQueue(sector.ID)
		if err != nil {
			result.err = fmt.Errorf("loading ready queue: %w", err)
			return result
		}
		tasks, err := Svc.TasksBySector(sector.ID)
		if err != nil {
			result.err = fmt.Errorf("loading tasks: %w", err)
			return result
		}
		counts := make(map[models.TaskStatus]int)
		for _, task := range tasks {
			counts[task.Status]++
		}
		result.queues = append(result.queues, sectorQueue{
			sector: sector,
			ready:  queue,
			counts: counts,
		})
	}

	alternatives := 3
	if Config != nil {
		alternatives = Config.Alternatives
	}
	suggestion, err := Svc.Suggest(alternatives)
	switch {
	case err == nil:
		result.suggestion = suggestion
	case errors.Is(err, core.ErrNotFound):
		// Nothing ready; the panel shows its empty state.
	default:
		result.err = fmt.Errorf("loading suggestion: %w", err)
		return result
	}

	if Health != nil {
		snapshot, err := Svc.Snapshot()
		if err != nil {
			result.err = fmt.Errorf("loading snapshot: %w", err)
			return result
		}
		findings, err := Health.Evaluate(snapshot)
		if err != nil {
			result.err = fmt.Errorf("evaluating board health: %w", err)
			return result
		}

		// Sort findings by severity: high first, then medium, then low.
		sort.SliceStable(findings, func(i, j int) bool {
			return severityRank(findings[i].Severity) < severityRank(findings[j].Severity)
		})
		result.findings = findings
	}

	return result
}

func severityRank(s observability.FindingSeverity) int {
	switch s {
	case observability.SeverityHigh:
		return 0
	case observability.SeverityMedium:
		return 1
	case observability.SeverityLow:
		return 2
	default:
		return 3
	}
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive TUI view of the board",
	Long: `Launch an interactive terminal view of the board showing each
sector's ready queue, the suggested next task, and board health.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}
		p := tea.NewProgram(newBoardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
