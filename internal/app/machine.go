// Package app interprets key input for the task list.
//
// Machine is a finite-state machine over five screens. Each screen has one
// handler in the transitions table; keys a screen does not bind are ignored.
// The renderer only reads Machine state; all mutation happens in HandleKey.
package app

import (
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"todo/internal/editor"
	"todo/internal/navigator"
	"todo/internal/storage"
	"todo/internal/task"
)

// NewTaskPlaceholder is stored as the description of a freshly created task
// until the user commits one.
const NewTaskPlaceholder = "New task"

type Screen int

const (
	ScreenMain Screen = iota
	ScreenEditing
	ScreenDeleting
	ScreenHelp
	ScreenExiting
)

func (s Screen) String() string {
	switch s {
	case ScreenMain:
		return "main"
	case ScreenEditing:
		return "editing"
	case ScreenDeleting:
		return "deleting"
	case ScreenHelp:
		return "help"
	case ScreenExiting:
		return "exiting"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Field is the task field loaded into the editor.
type Field int

const (
	FieldDescription Field = iota
	FieldBody
)

func (f Field) String() string {
	if f == FieldBody {
		return "body"
	}
	return "description"
}

func (f Field) other() Field {
	if f == FieldBody {
		return FieldDescription
	}
	return FieldBody
}

var transitions = map[Screen]func(*Machine, tea.KeyMsg){
	ScreenMain:     (*Machine).updateMain,
	ScreenEditing:  (*Machine).updateEditing,
	ScreenDeleting: (*Machine).updateDeleting,
	ScreenHelp:     (*Machine).updateHelp,
	ScreenExiting:  (*Machine).updateExiting,
}

type Machine struct {
	store  *storage.Store
	editor *editor.Editor
	nav    navigator.Navigator
	keys   KeyMap
	log    *log.Logger

	screen        Screen
	field         Field
	editing       int
	showCompleted bool
	quit          bool
	status        string
}

func New(store *storage.Store, keys KeyMap, showCompleted bool, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Machine{
		store:         store,
		editor:        editor.New(),
		keys:          keys,
		log:           logger,
		screen:        ScreenMain,
		showCompleted: showCompleted,
	}
	if len(m.visible()) > 0 {
		m.nav.Select(0)
	}
	return m
}

// HandleKey feeds one key event through the current screen's handler.
func (m *Machine) HandleKey(msg tea.KeyMsg) {
	handle, ok := transitions[m.screen]
	if !ok {
		return
	}
	from := m.screen
	handle(m, msg)
	if m.screen != from {
		m.log.Debug("screen change", "from", from, "to", m.screen, "key", msg.String())
	}
}

func (m *Machine) updateMain(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Quit, m.keys.ForceQuit):
		m.screen = ScreenExiting
		m.status = "Quit? y/n"
	case key.Matches(msg, m.keys.Up):
		m.nav.Previous(len(m.visible()))
	case key.Matches(msg, m.keys.Down):
		m.nav.Next(len(m.visible()))
	case key.Matches(msg, m.keys.Edit):
		m.startEdit()
	case key.Matches(msg, m.keys.New):
		m.newTask()
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
	case key.Matches(msg, m.keys.Delete):
		idx, ok := m.selected()
		if !ok {
			m.status = "No task selected"
			return
		}
		t, _ := m.store.Task(idx)
		m.screen = ScreenDeleting
		m.status = fmt.Sprintf("Delete %q? y/n", t.Description)
	case key.Matches(msg, m.keys.Filter):
		idx, had := m.selected()
		m.showCompleted = !m.showCompleted
		m.reselect(idx, had)
		if m.showCompleted {
			m.status = "Showing completed tasks"
		} else {
			m.status = "Hiding completed tasks"
		}
	case key.Matches(msg, m.keys.Help):
		m.screen = ScreenHelp
	}
}

func (m *Machine) updateEditing(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.editor.Clear()
		m.screen = ScreenExiting
		m.status = "Edit discarded. Quit? y/n"
	case key.Matches(msg, m.keys.Commit):
		if m.commit() {
			m.editor.Clear()
			m.screen = ScreenMain
		}
	case key.Matches(msg, m.keys.Cancel):
		m.editor.Clear()
		m.screen = ScreenMain
		m.status = "Edit discarded"
	case key.Matches(msg, m.keys.SwitchField):
		if !m.commit() {
			return
		}
		t, err := m.store.Task(m.editing)
		if err != nil {
			m.abortEdit(err)
			return
		}
		m.field = m.field.other()
		m.editor.SetText(fieldValue(t, m.field))
	case key.Matches(msg, m.keys.Backspace):
		m.editor.DeleteBeforeCursor()
	case key.Matches(msg, m.keys.DeleteChar):
		m.editor.DeleteAtCursor()
	case key.Matches(msg, m.keys.Left):
		m.editor.MoveLeft()
	case key.Matches(msg, m.keys.Right):
		m.editor.MoveRight()
	case key.Matches(msg, m.keys.Home):
		m.editor.Home()
	case key.Matches(msg, m.keys.End):
		m.editor.End()
	case key.Matches(msg, m.keys.ClearLine):
		m.editor.Clear()
	case msg.Type == tea.KeySpace:
		m.editor.Insert(' ')
	case msg.Type == tea.KeyRunes:
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				continue
			}
			m.editor.Insert(r)
		}
	}
}

func (m *Machine) updateHelp(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.screen = ScreenExiting
		m.status = "Quit? y/n"
	case key.Matches(msg, m.keys.Quit, m.keys.Cancel, m.keys.Help):
		m.screen = ScreenMain
	}
}

func (m *Machine) updateDeleting(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.screen = ScreenMain
		idx, ok := m.selected()
		if !ok {
			m.status = "Nothing to delete"
			return
		}
		err := m.store.Remove(idx)
		m.nav.Clamp(len(m.visible()))
		if err != nil {
			m.report("delete", err)
			return
		}
		m.status = "Deleted task"
	case key.Matches(msg, m.keys.Deny, m.keys.Cancel):
		m.screen = ScreenMain
		m.status = "Delete cancelled"
	}
}

func (m *Machine) updateExiting(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.quit = true
	case key.Matches(msg, m.keys.Deny, m.keys.Cancel):
		m.screen = ScreenMain
		m.status = ""
	}
}

func (m *Machine) startEdit() {
	idx, ok := m.selected()
	if !ok {
		m.status = "No task selected"
		return
	}
	t, err := m.store.Task(idx)
	if err != nil {
		m.report("edit", err)
		return
	}
	m.editing = idx
	m.field = FieldDescription
	m.editor.SetText(t.Description)
	m.screen = ScreenEditing
	m.status = "Editing: enter to save, tab to switch field, esc to discard"
}

func (m *Machine) newTask() {
	t, err := task.New(0, NewTaskPlaceholder, "")
	if err != nil {
		m.report("new task", err)
		return
	}
	idx, err := m.store.Add(t)
	if idx < 0 {
		m.report("new task", err)
		return
	}
	m.reselect(idx, true)
	m.editing = idx
	m.field = FieldDescription
	m.editor.Clear()
	m.screen = ScreenEditing
	m.status = "New task: type a description, enter to save"
	if err != nil {
		m.report("save", err)
	}
}

// reselect moves the selection to the row now showing store index idx. When
// that task is hidden the row number is clamped instead.
func (m *Machine) reselect(idx int, had bool) {
	vis := m.visible()
	if had {
		for pos, i := range vis {
			if i == idx {
				m.nav.Select(pos)
				return
			}
		}
	}
	m.nav.Clamp(len(vis))
	if _, ok := m.nav.Selected(); !ok && len(vis) > 0 {
		m.nav.Select(0)
	}
}

func (m *Machine) toggleSelected() {
	idx, ok := m.selected()
	if !ok {
		m.status = "No task selected"
		return
	}
	err := m.store.ToggleCompleted(idx)
	m.nav.Clamp(len(m.visible()))
	if err != nil {
		m.report("toggle", err)
		return
	}
	m.status = "Toggled task"
}

// commit writes the buffer into the active field. It returns false when the
// edit must stay open or has been aborted.
func (m *Machine) commit() bool {
	text := m.editor.Text()
	var err error
	switch m.field {
	case FieldDescription:
		err = m.store.SetDescription(m.editing, text)
	case FieldBody:
		err = m.store.SetBody(m.editing, text)
	}
	switch {
	case err == nil:
		m.status = "Saved"
		return true
	case errors.Is(err, task.ErrEmptyDescription):
		m.status = "Description cannot be empty"
		return false
	case errors.Is(err, storage.ErrUnencodable) && !isPersistence(err):
		m.status = fmt.Sprintf("Cannot save %s: %v", m.field, err)
		return false
	case errors.Is(err, storage.ErrIndexOutOfRange):
		m.abortEdit(err)
		return false
	default:
		m.report("save", err)
		return true
	}
}

func (m *Machine) abortEdit(err error) {
	m.editor.Clear()
	m.screen = ScreenMain
	m.report("edit", err)
}

func (m *Machine) report(op string, err error) {
	if isPersistence(err) {
		m.status = fmt.Sprintf("%s failed, changes kept in memory only: %v", op, err)
	} else {
		m.status = fmt.Sprintf("%s failed: %v", op, err)
	}
	m.log.Error(op, "err", err)
}

func isPersistence(err error) bool {
	var perr *storage.PersistenceError
	return errors.As(err, &perr)
}

// visible maps visible rows to store indices.
func (m *Machine) visible() []int {
	return m.store.Visible(m.showCompleted)
}

// selected resolves the navigator selection to a store index.
func (m *Machine) selected() (int, bool) {
	pos, ok := m.nav.Selected()
	if !ok {
		return 0, false
	}
	vis := m.visible()
	if pos < 0 || pos >= len(vis) {
		return 0, false
	}
	return vis[pos], true
}

func fieldValue(t task.Task, f Field) string {
	if f == FieldBody {
		return t.Body
	}
	return t.Description
}

func (m *Machine) Screen() Screen { return m.screen }

func (m *Machine) Field() Field { return m.field }

func (m *Machine) Status() string { return m.status }

func (m *Machine) ShowCompleted() bool { return m.showCompleted }

// Quit reports whether the user confirmed exit.
func (m *Machine) Quit() bool { return m.quit }

func (m *Machine) Keys() KeyMap { return m.keys }

func (m *Machine) Buffer() string { return m.editor.Text() }

func (m *Machine) Cursor() int { return m.editor.Cursor() }

// CursorColumn is the cursor's terminal column inside the buffer.
func (m *Machine) CursorColumn() int { return m.editor.Column() }

// Selected is the selected row of VisibleTasks.
func (m *Machine) Selected() (int, bool) {
	pos, ok := m.nav.Selected()
	if !ok || pos >= len(m.visible()) {
		return 0, false
	}
	return pos, true
}

// VisibleTasks is the filtered list in display order.
func (m *Machine) VisibleTasks() []task.Task {
	vis := m.visible()
	out := make([]task.Task, 0, len(vis))
	for _, i := range vis {
		t, err := m.store.Task(i)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// EditingTask is the task whose field is in the editor.
func (m *Machine) EditingTask() (task.Task, bool) {
	if m.screen != ScreenEditing {
		return task.Task{}, false
	}
	t, err := m.store.Task(m.editing)
	return t, err == nil
}
