package app

import (
	"github.com/charmbracelet/bubbles/key"

	"todo/internal/config"
)

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Edit      key.Binding
	New       key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Filter    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	Confirm key.Binding
	Deny    key.Binding
	Cancel  key.Binding

	Commit      key.Binding
	SwitchField key.Binding
	Backspace   key.Binding
	DeleteChar  key.Binding
	Left        key.Binding
	Right       key.Binding
	Home        key.Binding
	End         key.Binding
	ClearLine   key.Binding
}

// NewKeyMap builds bindings from the configured key names. Arrow keys always
// work for movement alongside the configured ones.
func NewKeyMap(k config.Keymap) KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys(k.Up, "up"), key.WithHelp("↑/"+k.Up, "up")),
		Down:      key.NewBinding(key.WithKeys(k.Down, "down"), key.WithHelp("↓/"+k.Down, "down")),
		Edit:      key.NewBinding(key.WithKeys(k.Edit), key.WithHelp(k.Edit, "edit")),
		New:       key.NewBinding(key.WithKeys(k.New), key.WithHelp(k.New, "new")),
		Toggle:    key.NewBinding(key.WithKeys(k.Toggle), key.WithHelp(displayName(k.Toggle), "done")),
		Delete:    key.NewBinding(key.WithKeys(k.Delete), key.WithHelp(k.Delete, "delete")),
		Filter:    key.NewBinding(key.WithKeys(k.Filter), key.WithHelp(k.Filter, "show/hide done")),
		Help:      key.NewBinding(key.WithKeys(k.Help), key.WithHelp(k.Help, "help")),
		Quit:      key.NewBinding(key.WithKeys(k.Quit), key.WithHelp(k.Quit, "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Confirm: key.NewBinding(key.WithKeys(k.Confirm, upper(k.Confirm)), key.WithHelp(k.Confirm, "yes")),
		Deny:    key.NewBinding(key.WithKeys(k.Deny, upper(k.Deny)), key.WithHelp(k.Deny, "no")),
		Cancel:  key.NewBinding(key.WithKeys(k.Cancel), key.WithHelp(k.Cancel, "cancel")),

		Commit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		SwitchField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "title/body")),
		Backspace:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete left")),
		DeleteChar:  key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete right")),
		Left:        key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right:       key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Home:        key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "start")),
		End:         key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "end")),
		ClearLine:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
	}
}

// ShortHelp is the one-line hint shown under the list.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.New, k.Toggle, k.Delete, k.Filter, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Filter},
		{k.Edit, k.New, k.Toggle, k.Delete},
		{k.Commit, k.SwitchField, k.Cancel, k.ClearLine},
		{k.Help, k.Quit, k.ForceQuit},
	}
}

// EditHelp lists the bindings active while a field is edited.
func (k KeyMap) EditHelp() []key.Binding {
	return []key.Binding{k.Commit, k.SwitchField, k.Cancel, k.Left, k.Right, k.ClearLine}
}

func (k KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Deny}
}

func displayName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func upper(k string) string {
	if len(k) == 1 && k[0] >= 'a' && k[0] <= 'z' {
		return string(k[0] - 'a' + 'A')
	}
	return k
}
