package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gb2b/prodboard/internal/layout"
	"github.com/gb2b/prodboard/pkg/models"
)

var diagramEdges bool

// Node box styles per status.
var (
	nodeReadyStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("46"))

	nodeLockedStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	nodeInProgressStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("226"))

	nodeDoneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("240"))

	nodeIDStyle = lipgloss.NewStyle().Bold(true)
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Render the dependency diagram",
	Long: `Render the board's dependency diagram.

Tasks are placed in columns by dependency depth: a task sits one column
to the right of the deepest task it requires. Tasks on a dependency
cycle are drawn in the leftmost column. Subtasks are not drawn.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("board service not initialized")
		}

		tasks, err := Svc.Tasks()
		if err != nil {
			return err
		}

		diagram := layout.Compute(tasks, layoutOptions())
		if len(diagram.Nodes) == 0 {
			fmt.Println("No tasks to draw.")
			return nil
		}

		byID := make(map[string]*models.Task, len(tasks))
		for _, task := range tasks {
			byID[task.ID] = task
		}

		fmt.Println(renderDiagram(diagram, byID))

		if diagramEdges && len(diagram.Edges) > 0 {
			fmt.Println("Edges:")
			for _, edge := range diagram.Edges {
				fmt.Printf("  %s -> %s\n", edge.From, edge.To)
			}
		}
		return nil
	},
}

// layoutOptions builds layout options from the loaded config.
func layoutOptions() layout.Options {
	if Config == nil {
		return layout.Options{}
	}
	return layout.Options{
		NodeWidth:  Config.Layout.NodeWidth,
		NodeHeight: Config.Layout.NodeHeight,
		GapX:       Config.Layout.GapX,
		GapY:       Config.Layout.GapY,
	}
}

// renderDiagram draws the leveled node grid, one column per level.
func renderDiagram(diagram *layout.Diagram, byID map[string]*models.Task) string {
	columns := make([][]layout.Node, diagram.Levels)
	for _, node := range diagram.Nodes {
		columns[node.Level] = append(columns[node.Level], node)
	}

	gapX := 2
	innerWidth := 20
	if opts := layoutOptions(); opts.NodeWidth > 2 {
		innerWidth = opts.NodeWidth - 2
	}

	rendered := make([]string, 0, len(columns))
	for _, column := range columns {
		boxes := make([]string, 0, len(column)*2)
		for _, node := range column {
			boxes = append(boxes, renderNodeBox(node, byID, innerWidth))
		}
		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left, boxes...))
	}

	joined := make([]string, 0, len(rendered)*2-1)
	for i, column := range rendered {
		if i > 0 {
			joined = append(joined, strings.Repeat(" ", gapX))
		}
		joined = append(joined, column)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joined...)
}

// renderNodeBox draws a single task box: ID, truncated title, status.
func renderNodeBox(node layout.Node, byID map[string]*models.Task, innerWidth int) string {
	task := byID[node.TaskID]
	if task == nil {
		return ""
	}

	content := fmt.Sprintf("%s\n%s\n%s",
		nodeIDStyle.Render(truncate(task.ID, innerWidth-2)),
		truncate(task.Title, innerWidth-2),
		truncate(string(task.Status), innerWidth-2))

	return nodeStyle(task.Status).Width(innerWidth).Render(content)
}

// nodeStyle picks the border style for a task status.
func nodeStyle(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusReady:
		return nodeReadyStyle
	case models.StatusInProgress:
		return nodeInProgressStyle
	case models.StatusDone:
		return nodeDoneStyle
	default:
		return nodeLockedStyle
	}
}

// truncate shortens s to at most width runes, appending ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}

func init() {
	diagramCmd.Flags().BoolVar(&diagramEdges, "edges", true, "List dependency edges below the grid")
	rootCmd.AddCommand(diagramCmd)
}
