package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gb2b/prodboard/pkg/models"
)

// taskItem wraps a Task for the list display.
type taskItem struct {
	task *models.Task
}

func (i taskItem) Title() string       { return fmt.Sprintf("%s [%s]", i.task.ID, i.task.Priority) }
func (i taskItem) Description() string { return i.task.Sector + ": " + i.task.Title }
func (i taskItem) FilterValue() string { return i.task.ID + " " + i.task.Title }

type pickerModel struct {
	tasks  list.Model
	choice string
}

func newPickerModel(title string, tasks []*models.Task) pickerModel {
	items := make([]list.Item, len(tasks))
	for i, task := range tasks {
		items[i] = taskItem{task: task}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	taskList := list.New(items, delegate, 40, 14)
	taskList.Title = title
	taskList.SetShowStatusBar(false)
	taskList.SetFilteringEnabled(true)

	return pickerModel{tasks: taskList}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.tasks.SetSize(msg.Width-2, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if item, ok := m.tasks.SelectedItem().(taskItem); ok {
				m.choice = item.task.ID
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string { return "\n" + m.tasks.View() }

// pickReadyTask shows an interactive list of the ready queue across all
// sectors and returns the selected task ID. Returns an error when no
// tasks are ready or the user cancels.
func pickReadyTask(title string) (string, error) {
	if Svc == nil {
		return "", fmt.Errorf("board service not initialized")
	}

	sectors, err := Svc.Sectors()
	if err != nil {
		return "", err
	}

	var ready []*models.Task
	for _, sector := range sectors {
		queue, err := Svc.ReadyQueue(sector.ID)
		if err != nil {
			return "", err
		}
		ready = append(ready, queue...)
	}

	if len(ready) == 0 {
		return "", fmt.Errorf("no ready tasks on the board")
	}

	program := tea.NewProgram(newPickerModel(title, ready))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("running picker: %w", err)
	}

	model, ok := final.(pickerModel)
	if !ok || model.choice == "" {
		return "", fmt.Errorf("cancelled")
	}
	return model.choice, nil
}
