package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Select  key.Binding
	Menu    key.Binding
	Back    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Close   key.Binding
	Pin     key.Binding
	Action  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Menu:    key.NewBinding(key.WithKeys("m", " "), key.WithHelp("m", "node menu")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		Close:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close widget")),
		Pin:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin/unpin")),
		Action:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "widget action")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Select, k.Menu, k.Close, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus, k.Select},
		{k.Menu, k.Back, k.Confirm, k.Cancel},
		{k.Close, k.Pin, k.Action, k.Refresh, k.Quit},
	}
}
