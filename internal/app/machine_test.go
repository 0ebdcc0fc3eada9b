package app

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/config"
	"todo/internal/storage"
	"todo/internal/task"
)

var defaultKeys = config.Keymap{
	Quit:    "q",
	Up:      "k",
	Down:    "j",
	Edit:    "enter",
	New:     "n",
	Toggle:  " ",
	Delete:  "d",
	Filter:  "f",
	Help:    "?",
	Confirm: "y",
	Deny:    "n",
	Cancel:  "esc",
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func send(m *Machine, keys ...string) {
	for _, k := range keys {
		m.HandleKey(keyMsg(k))
	}
}

func typeText(m *Machine, text string) {
	for _, r := range text {
		m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func newMachine(t *testing.T, descriptions ...string) (*Machine, *storage.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	store, err := storage.Open(storage.NewJSONFile(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range descriptions {
		tk, err := task.New(0, d, "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.Add(tk); err != nil {
			t.Fatal(err)
		}
	}
	return New(store, NewKeyMap(defaultKeys), false, nil), store, path
}

func wantScreen(t *testing.T, m *Machine, want Screen) {
	t.Helper()
	if got := m.Screen(); got != want {
		t.Fatalf("screen = %v, want %v (status %q)", got, want, m.Status())
	}
}

func wantSelected(t *testing.T, m *Machine, want int) {
	t.Helper()
	got, ok := m.Selected()
	if !ok || got != want {
		t.Fatalf("selected = (%d,%v), want (%d,true)", got, ok, want)
	}
}

func TestInitialState(t *testing.T) {
	m, _, _ := newMachine(t, "a", "b")
	wantScreen(t, m, ScreenMain)
	wantSelected(t, m, 0)
	if m.Quit() {
		t.Fatal("quit flag set at start")
	}
}

func TestMainNavigationWraps(t *testing.T) {
	m, _, _ := newMachine(t, "a", "b", "c")
	send(m, "j", "j")
	wantSelected(t, m, 2)
	send(m, "down")
	wantSelected(t, m, 0)
	send(m, "up")
	wantSelected(t, m, 2)
	send(m, "k")
	wantSelected(t, m, 1)
	wantScreen(t, m, ScreenMain)
}

func TestQuitFlow(t *testing.T) {
	m, _, _ := newMachine(t)
	send(m, "q")
	wantScreen(t, m, ScreenExiting)
	send(m, "n")
	wantScreen(t, m, ScreenMain)
	send(m, "q", "esc")
	wantScreen(t, m, ScreenMain)
	send(m, "q", "x")
	wantScreen(t, m, ScreenExiting)
	if m.Quit() {
		t.Fatal("unbound key confirmed quit")
	}
	send(m, "y")
	if !m.Quit() {
		t.Fatal("quit flag not set after confirm")
	}
}

func TestEditDescriptionCommits(t *testing.T) {
	m, store, path := newMachine(t, "Buy milk")
	send(m, "enter")
	wantScreen(t, m, ScreenEditing)
	if m.Buffer() != "Buy milk" || m.Cursor() != 8 {
		t.Fatalf("buffer %q cursor %d", m.Buffer(), m.Cursor())
	}
	typeText(m, " ñ")
	send(m, "enter")
	wantScreen(t, m, ScreenMain)
	if m.Buffer() != "" {
		t.Fatalf("buffer not cleared: %q", m.Buffer())
	}
	tk, _ := store.Task(0)
	if tk.Description != "Buy milk ñ" {
		t.Fatalf("description = %q", tk.Description)
	}

	reloaded, err := storage.Open(storage.NewJSONFile(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := reloaded.Task(0); got.Description != "Buy milk ñ" {
		t.Fatalf("persisted description = %q", got.Description)
	}
}

func TestEditEscDiscards(t *testing.T) {
	m, store, _ := newMachine(t, "original")
	send(m, "enter", "backspace", "backspace")
	typeText(m, "XY")
	send(m, "esc")
	wantScreen(t, m, ScreenMain)
	if tk, _ := store.Task(0); tk.Description != "original" {
		t.Fatalf("description = %q", tk.Description)
	}
	if m.Buffer() != "" {
		t.Fatalf("buffer not cleared: %q", m.Buffer())
	}
}

func TestEditRejectsEmptyDescription(t *testing.T) {
	m, store, _ := newMachine(t, "keep")
	send(m, "enter", "ctrl+u", "enter")
	wantScreen(t, m, ScreenEditing)
	if tk, _ := store.Task(0); tk.Description != "keep" {
		t.Fatalf("description = %q", tk.Description)
	}
	send(m, "tab")
	wantScreen(t, m, ScreenEditing)
	if m.Field() != FieldDescription {
		t.Fatal("tab switched field after rejected commit")
	}
}

func TestTabSwitchesField(t *testing.T) {
	m, store, _ := newMachine(t, "title")
	send(m, "enter")
	typeText(m, "!")
	send(m, "tab")
	wantScreen(t, m, ScreenEditing)
	if m.Field() != FieldBody {
		t.Fatalf("field = %v, want body", m.Field())
	}
	if m.Buffer() != "" || m.Cursor() != 0 {
		t.Fatalf("body buffer %q cursor %d", m.Buffer(), m.Cursor())
	}
	typeText(m, "details")
	send(m, "tab")
	if m.Field() != FieldDescription || m.Buffer() != "title!" || m.Cursor() != 6 {
		t.Fatalf("field %v buffer %q cursor %d", m.Field(), m.Buffer(), m.Cursor())
	}
	send(m, "esc")
	tk, _ := store.Task(0)
	if tk.Description != "title!" || tk.Body != "details" {
		t.Fatalf("task = %+v", tk)
	}
}

func TestEditingTreatsBoundKeysAsText(t *testing.T) {
	m, store, _ := newMachine(t, "x")
	send(m, "enter", "ctrl+u")
	typeText(m, "qjkdn?f")
	send(m, " ")
	send(m, "enter")
	wantScreen(t, m, ScreenMain)
	if tk, _ := store.Task(0); tk.Description != "qjkdn?f " {
		t.Fatalf("description = %q", tk.Description)
	}
}

func TestEditingCursorKeys(t *testing.T) {
	m, _, _ := newMachine(t, "日本")
	send(m, "enter", "left")
	typeText(m, "x")
	if m.Buffer() != "日x本" || m.Cursor() != 2 {
		t.Fatalf("buffer %q cursor %d", m.Buffer(), m.Cursor())
	}
	send(m, "delete")
	if m.Buffer() != "日x" {
		t.Fatalf("buffer %q", m.Buffer())
	}
	send(m, "right", "right", "backspace", "backspace", "backspace", "backspace")
	if m.Buffer() != "" || m.Cursor() != 0 {
		t.Fatalf("buffer %q cursor %d", m.Buffer(), m.Cursor())
	}
}

func TestEditingQuitComboDiscards(t *testing.T) {
	m, store, _ := newMachine(t, "stay")
	send(m, "enter")
	typeText(m, "changed")
	send(m, "ctrl+c")
	wantScreen(t, m, ScreenExiting)
	if m.Buffer() != "" {
		t.Fatalf("buffer = %q", m.Buffer())
	}
	if tk, _ := store.Task(0); tk.Description != "stay" {
		t.Fatalf("description = %q", tk.Description)
	}
}

func TestNewTask(t *testing.T) {
	m, store, _ := newMachine(t, "first")
	send(m, "n")
	wantScreen(t, m, ScreenEditing)
	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2", store.Len())
	}
	wantSelected(t, m, 1)
	if tk, _ := store.Task(1); tk.Description != NewTaskPlaceholder {
		t.Fatalf("placeholder = %q", tk.Description)
	}
	typeText(m, "Buy milk")
	send(m, "enter")
	wantScreen(t, m, ScreenMain)
	if got := store.TasksIntoString(); got != "first [] \nBuy milk [] \n" {
		t.Fatalf("tasks = %q", got)
	}
}

func TestNewTaskOnEmptyStore(t *testing.T) {
	m, store, _ := newMachine(t)
	if _, ok := m.Selected(); ok {
		t.Fatal("selection on empty list")
	}
	send(m, "n")
	wantSelected(t, m, 0)
	typeText(m, "Buy milk")
	send(m, "enter")
	if got := store.TasksIntoString(); got != "Buy milk [] \n" {
		t.Fatalf("tasks = %q", got)
	}
}

func TestEmptyListGuards(t *testing.T) {
	m, _, _ := newMachine(t)
	for _, k := range []string{"enter", " ", "d", "j", "k"} {
		send(m, k)
		wantScreen(t, m, ScreenMain)
	}
}

func TestToggleAndFilter(t *testing.T) {
	m, store, _ := newMachine(t, "done", "pending")
	send(m, " ")
	if tk, _ := store.Task(0); !tk.Completed {
		t.Fatal("task not toggled")
	}
	visible := m.VisibleTasks()
	if len(visible) != 1 || visible[0].Description != "pending" {
		t.Fatalf("visible = %+v", visible)
	}
	wantSelected(t, m, 0)

	send(m, "f")
	if !m.ShowCompleted() || len(m.VisibleTasks()) != 2 {
		t.Fatalf("filter did not show completed: %+v", m.VisibleTasks())
	}
	send(m, "f")
	if m.ShowCompleted() || len(m.VisibleTasks()) != 1 {
		t.Fatalf("filter did not hide completed: %+v", m.VisibleTasks())
	}
}

func TestActionsFollowFilteredSelection(t *testing.T) {
	m, store, _ := newMachine(t, "a", "b", "c")
	store.ToggleCompleted(1)
	// visible: a, c
	send(m, "j")
	wantSelected(t, m, 1)
	send(m, "enter")
	if m.Buffer() != "c" {
		t.Fatalf("editing %q, want c", m.Buffer())
	}
	send(m, "esc", "d", "y")
	if got := store.TasksIntoString(); got != "a [] \nb [x] \n" {
		t.Fatalf("tasks = %q", got)
	}
	wantSelected(t, m, 0)
}

func TestDeleteFlow(t *testing.T) {
	m, store, path := newMachine(t, "only")
	send(m, "d")
	wantScreen(t, m, ScreenDeleting)
	send(m, "j")
	wantScreen(t, m, ScreenDeleting)
	send(m, "n")
	wantScreen(t, m, ScreenMain)
	if store.Len() != 1 {
		t.Fatal("deny removed the task")
	}
	send(m, "d", "y")
	wantScreen(t, m, ScreenMain)
	if store.Len() != 0 {
		t.Fatal("confirm did not remove the task")
	}
	if _, ok := m.Selected(); ok {
		t.Fatal("selection survived on empty list")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestHelpScreen(t *testing.T) {
	m, _, _ := newMachine(t, "a")
	send(m, "?")
	wantScreen(t, m, ScreenHelp)
	send(m, "j", "d")
	wantScreen(t, m, ScreenHelp)
	send(m, "q")
	wantScreen(t, m, ScreenMain)
	send(m, "?", "esc")
	wantScreen(t, m, ScreenMain)
	send(m, "?", "ctrl+c")
	wantScreen(t, m, ScreenExiting)
}

func TestPersistenceFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	store, err := storage.Open(storage.NewJSONFile(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	m := New(store, NewKeyMap(defaultKeys), false, nil)

	// Replace the data file with a directory so the next write fails.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	send(m, "n")
	wantScreen(t, m, ScreenEditing)
	if store.Len() != 1 {
		t.Fatalf("task not kept in memory: len %d", store.Len())
	}
	if m.Status() == "" {
		t.Fatal("expected a status message for the failed save")
	}
}

func TestCommitRejectsUnencodableBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data")
	store, err := storage.Open(storage.NewLineFile(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"a", "b"} {
		tk, _ := task.New(0, d, "")
		if _, err := store.Add(tk); err != nil {
			t.Fatal(err)
		}
	}
	m := New(store, NewKeyMap(defaultKeys), false, nil)

	send(m, "enter", "tab")
	typeText(m, "milk, eggs")
	send(m, "enter")
	wantScreen(t, m, ScreenEditing)
	if m.Buffer() != "milk, eggs" {
		t.Fatalf("buffer = %q", m.Buffer())
	}
	if m.Status() == "" {
		t.Fatal("expected a status message for the rejected body")
	}
	if tk, _ := store.Task(0); tk.Body != "" {
		t.Fatalf("body = %q, want unchanged", tk.Body)
	}

	send(m, "ctrl+u")
	typeText(m, "milk and eggs")
	send(m, "enter")
	wantScreen(t, m, ScreenMain)
	send(m, "j", " ")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "0,a,false,milk and eggs\n1,b,true,\n"; string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
}

func TestFilterKeepsSelectedTask(t *testing.T) {
	m, store, _ := newMachine(t, "a", "b", "c")
	store.ToggleCompleted(0)
	m = New(store, NewKeyMap(defaultKeys), false, nil)
	// visible: b, c
	send(m, "j")
	wantSelected(t, m, 1)

	send(m, "f")
	// visible: a, b, c
	wantSelected(t, m, 2)
	send(m, "enter")
	if m.Buffer() != "c" {
		t.Fatalf("editing %q, want c", m.Buffer())
	}
	send(m, "esc", "f")
	wantSelected(t, m, 1)

	send(m, "f", "k", "k")
	// a is selected and hidden by the next toggle
	wantSelected(t, m, 0)
	send(m, "f")
	wantSelected(t, m, 0)
}
