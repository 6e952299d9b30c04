package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// bindings is a flat help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding {
	return b
}

func (b bindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{b}
}

type globalKeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Refresh key.Binding
	Dismiss key.Binding
}

var globalKeys = globalKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "refresh"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "dismiss"),
	),
}

var (
	submitKey = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	)
	nextFieldKey = key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	)
	prevFieldKey = key.NewBinding(
		key.WithKeys("shift+tab", "up"),
	)
	upKey = key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑/↓", "move"),
	)
	downKey = key.NewBinding(
		key.WithKeys("down"),
	)
	openKey = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	)
	nextTabKey = key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	)
	registerKey = key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "create account"),
	)
	recoveryKey = key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "forgot password"),
	)
	requestCodeKey = key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "send code"),
	)
	sendKey = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	)
	recordKey = key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "record"),
	)
	settingsKey = key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "settings"),
	)
	logoutKey = key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "log out"),
	)
	avatarKey = key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "choose avatar"),
	)
	saveKey = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	)
)
