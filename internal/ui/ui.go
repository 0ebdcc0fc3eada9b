package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"todo/internal/app"
	"todo/internal/config"
	"todo/internal/storage"
	"todo/internal/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	frameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

type Model struct {
	machine *app.Machine
	spinner spinner.Model
	help    help.Model
	width   int
	log     *log.Logger
}

func NewModel(machine *app.Machine, cfg config.Config, logger *log.Logger) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: spinner.Dot.Frames, FPS: cfg.Tick()}),
		spinner.WithStyle(spinnerStyle),
	)
	return Model{
		machine: machine,
		spinner: sp,
		help:    help.New(),
		width:   80,
		log:     logger,
	}
}

// Run drives the task list until the user confirms quit.
func Run(store *storage.Store, cfg config.Config, logger *log.Logger) error {
	machine := app.New(store, app.NewKeyMap(cfg.Keys), cfg.ShowCompleted, logger)
	logger.Info("starting", "path", store.Path(), "backend", cfg.Backend, "tasks", store.Len())

	program := tea.NewProgram(NewModel(machine, cfg, logger), tea.WithAltScreen())
	_, err := program.Run()
	if err != nil {
		logger.Error("program exited", "err", err)
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.machine.HandleKey(msg)
		if m.machine.Quit() {
			m.log.Info("quit")
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.machine.Quit() {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(titleStyle.Render("Tasks"))
	if !m.machine.ShowCompleted() {
		b.WriteString(statusStyle.Render("(hiding done)"))
	}
	b.WriteString("\n")

	switch m.machine.Screen() {
	case app.ScreenHelp:
		b.WriteString(frameStyle.Render(m.help.FullHelpView(m.machine.Keys().FullHelp())))
		b.WriteString("\n")
		return b.String()
	default:
		b.WriteString(frameStyle.Render(m.renderTaskList()))
		b.WriteString("\n")
	}

	if m.machine.Screen() == app.ScreenEditing {
		b.WriteString(m.renderEditor())
		b.WriteString("\n")
	}
	if s := m.machine.Status(); s != "" {
		b.WriteString(statusStyle.Render(s))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTaskList() string {
	tasks := m.machine.VisibleTasks()
	if len(tasks) == 0 {
		return "No tasks. Press '" + m.machine.Keys().New.Help().Key + "' to add one."
	}
	sel, hasSel := m.machine.Selected()
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		row := fmt.Sprintf("%s %s", task.Checkbox(t.Completed), t.Description)
		if t.Body != "" {
			row += " · " + t.Body
		}
		if t.Completed {
			row = doneStyle.Render(row)
		}
		if hasSel && i == sel {
			lines = append(lines, ">> "+selectedStyle.Render(row))
			continue
		}
		lines = append(lines, "   "+row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEditor() string {
	label := "Description: "
	if m.machine.Field() == app.FieldBody {
		label = "Body: "
	}
	if t, ok := m.machine.EditingTask(); ok {
		label = fmt.Sprintf("#%d %s", t.ID, label)
	}
	avail := m.width - runewidth.StringWidth(label) - 1
	return labelStyle.Render(label) + renderBuffer(m.machine.Buffer(), m.machine.Cursor(), m.machine.CursorColumn(), avail)
}

// renderBuffer draws the buffer with a block cursor. When the cursor column
// would fall outside width cells, leading runes are dropped until it fits.
func renderBuffer(buf string, cursor, column, width int) string {
	runes := []rune(buf)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	start := 0
	for width > 0 && column >= width && start < cursor {
		column -= runewidth.RuneWidth(runes[start])
		start++
	}
	at := " "
	after := ""
	if cursor < len(runes) {
		at = string(runes[cursor])
		after = string(runes[cursor+1:])
	}
	return string(runes[start:cursor]) + cursorStyle.Render(at) + after
}

func (m Model) renderFooter() string {
	keys := m.machine.Keys()
	switch m.machine.Screen() {
	case app.ScreenEditing:
		return m.help.ShortHelpView(keys.EditHelp())
	case app.ScreenDeleting, app.ScreenExiting:
		return m.help.ShortHelpView(keys.ConfirmHelp())
	default:
		return m.help.ShortHelpView(keys.ShortHelp())
	}
}
